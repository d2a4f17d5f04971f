package repository

import (
	"context"

	"blog-platform/internal/domain"
)

// CommentRepository exposes persistence operations for comments.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
	ListAll(ctx context.Context) ([]domain.Comment, error)
	CountByPost(ctx context.Context, postID int64) (int, error)
	DeleteByPost(ctx context.Context, postID int64) error
	DeleteByAuthor(ctx context.Context, authorID int64) error
	DeleteByPosts(ctx context.Context, postIDs []int64) error
}
