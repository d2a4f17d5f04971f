package repository

import (
	"context"

	"blog-platform/internal/domain"
)

// UserRepository exposes persistence operations for user accounts.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id int64) error
}
