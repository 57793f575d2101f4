// Package services contains the security business logic. AuthService handles
// registration and password login, issuing a signed JWT on success.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/aitooling/internal/auth"
	"github.com/dmitrijs2005/aitooling/internal/common"
	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/dmitrijs2005/aitooling/internal/security/models"
	"github.com/dmitrijs2005/aitooling/internal/security/repositories/repomanager"
)

// fallbackDummyHash is a well-formed Argon2id hash of an unknown password,
// used when the dummy hash cannot be computed.
const fallbackDummyHash = "$argon2id$v=19$m=65536,t=3,p=2$9iJIBIEnjZbQse5AoJg8FQ$LscMeClEm0B5yRrPdrEy8JF4N3XQdAqyx71V6oys7Mg"

// TokenIssuer mints a signed token for an authenticated user.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.Hasher
	issuer      TokenIssuer
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, hasher auth.Hasher, issuer TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: rm,
		hasher:      hasher,
		issuer:      issuer,
		logger:      logger.With("module", "auth"),
	}
}

// Register hashes password and stores a new user. An empty role becomes
// common.DefaultRole. A taken username surfaces as an error wrapping
// common.ErrorAlreadyExists.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	if role == "" {
		role = common.DefaultRole
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: hash, Role: role}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login returns a token and ok == true on valid credentials. Unknown users
// and wrong passwords both yield ("", false, nil); err is reserved for
// lookup or signing failures.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, bool, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep the unknown-user branch as slow as a real comparison
			s.hasher.Verify(password, s.dummy())
			return "", false, nil
		}
		return "", false, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", false, nil
	}

	token, err := s.issuer.Issue(user.Username, user.Role)
	if err != nil {
		return "", false, fmt.Errorf("error issuing token: %w", err)
	}
	return token, true, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-for-absent-users")
		if err != nil {
			s.logger.Warn(context.Background(), "unable to prepare dummy hash", "error", err)
			s.dummyHash = fallbackDummyHash
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
