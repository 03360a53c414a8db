package user

import (
	"context"

	"market-api/internal/domain"
)

type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// UpdateUserInput carries optional fields; nil means "leave unchanged".
type UpdateUserInput struct {
	Username  *string
	Email     *string
	Role      *string
	AvatarURL *string
}

type Repository interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
