package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email string, fullName *string, passwordHash, passwordSalt []byte) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
