package users

import (
	"context"

	"github.com/dmitrijs2005/aitooling/internal/security/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt. A taken username
	// yields an error matching common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByUsername returns common.ErrorNotFound for unknown names.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
