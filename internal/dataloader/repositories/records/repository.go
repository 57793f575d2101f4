package records

import (
	"context"

	"github.com/dmitrijs2005/aitooling/internal/dataloader/models"
)

type Repository interface {
	// AddMany persists records and fills in their IDs.
	AddMany(ctx context.Context, records []*models.DataRecord) error
	GetAll(ctx context.Context) ([]*models.DataRecord, error)
	GetByID(ctx context.Context, id int64) (*models.DataRecord, error)
}
