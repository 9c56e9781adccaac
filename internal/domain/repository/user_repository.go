package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

// RefreshTokenRepository defines the interface for refresh token persistence
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	Update(ctx context.Context, token *entity.RefreshToken) error
	// Rotate revokes old and stores its replacement in one transaction
	Rotate(ctx context.Context, old *entity.RefreshToken, replacement *entity.RefreshToken) error
	// DeleteInactiveForUser removes the user's revoked or expired tokens created before cutoff
	DeleteInactiveForUser(ctx context.Context, userID uuid.UUID, now, cutoff time.Time) (int64, error)
	// DeleteExpired removes every token that expired before cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
