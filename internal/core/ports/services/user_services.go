package services

import (
	"context"
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
)

// UserSvcFacade defines read operations for staff users and authentication.
type UserSvcFacade interface {
	// AuthenticateUser verifies local credentials and returns the user.
	AuthenticateUser(ctx context.Context, username string, password string) (*domain.User, error)

	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
