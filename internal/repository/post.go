package repository

import (
	"context"

	"blog-platform/internal/domain"
)

// PostRepository exposes persistence operations for posts. Author summaries are
// joined best effort: a dangling author reference yields a nil Author, never an
// error.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit int) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error)
	IDsByAuthor(ctx context.Context, authorID int64) ([]int64, error)
	DeleteByAuthor(ctx context.Context, authorID int64) error
}
