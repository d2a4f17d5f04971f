package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"blog-platform/internal/auth"
	"blog-platform/internal/domain"
	"blog-platform/internal/repository"
	"blog-platform/internal/storage"
)

// defaultListLimit caps the public post listing, as the original front page does.
const defaultListLimit = 20

// CreatePostInput carries a new post. Description and ImageURL are optional on
// create; updates require the description as well.
type CreatePostInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=200"`
	Content     string `validate:"required"`
	ImageURL    string
}

// UpdatePostInput carries a full post edit.
type UpdatePostInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"required,max=200"`
	Content     string `validate:"required"`
	ImageURL    string
}

// DeletePostResult reports the two-step post removal: the database rows go in
// one transaction, the stored image afterwards, best effort.
type DeletePostResult struct {
	PostDeleted  bool `json:"postDeleted"`
	ImageDeleted bool `json:"imageDeleted"`
}

// PostService coordinates post operations backed by repositories and the blob store.
type PostService interface {
	CreatePost(ctx context.Context, authorID int64, input CreatePostInput) (*domain.Post, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	ListAllPosts(ctx context.Context) ([]domain.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error)
	UpdatePost(ctx context.Context, actor auth.Principal, id int64, input UpdatePostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, actor auth.Principal, id int64) (DeletePostResult, error)
}

type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	uow      repository.UnitOfWork
	storage  storage.Service
	bucket   string
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	uow repository.UnitOfWork,
	store storage.Service,
	bucket string,
	logger *logrus.Logger,
) PostService {
	return &postService{
		posts:    posts,
		comments: comments,
		uow:      uow,
		storage:  store,
		bucket:   bucket,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *postService) CreatePost(ctx context.Context, authorID int64, input CreatePostInput) (*domain.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		ImageURL:    input.ImageURL,
		AuthorID:    authorID,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.GetPost(ctx, post.ID)
}

func (s *postService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	fillPostFallbacks(post)
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx, defaultListLimit)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		fillPostFallbacks(&posts[i])
	}
	return posts, nil
}

func (s *postService) ListAllPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		fillPostFallbacks(&posts[i])
	}
	return posts, nil
}

func (s *postService) ListPostsByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		fillPostFallbacks(&posts[i])
	}
	return posts, nil
}

func (s *postService) UpdatePost(ctx context.Context, actor auth.Principal, id int64, input UpdatePostInput) (*domain.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if decision := auth.RequireOwner(&actor, post.AuthorID); !decision.Allowed {
		return nil, ErrForbidden
	}

	post.Title = input.Title
	post.Description = input.Description
	post.Content = input.Content
	post.ImageURL = input.ImageURL

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.GetPost(ctx, id)
}

// DeletePost removes the post and its comments in one transaction, then deletes
// the stored image best effort. A failed image delete is logged and reported in
// the result, never surfaced as an error.
func (s *postService) DeletePost(ctx context.Context, actor auth.Principal, id int64) (DeletePostResult, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DeletePostResult{}, ErrNotFound
		}
		return DeletePostResult{}, err
	}

	if decision := auth.RequireOwner(&actor, post.AuthorID); !decision.Allowed {
		return DeletePostResult{}, ErrForbidden
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return DeletePostResult{}, fmt.Errorf("begin post delete: %w", err)
	}

	var committed bool
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.WithError(rbErr).Error("rollback post delete")
			}
		}
	}()

	if err := tx.Comments().DeleteByPost(ctx, id); err != nil {
		return DeletePostResult{}, fmt.Errorf("delete post comments: %w", err)
	}
	if err := tx.Posts().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DeletePostResult{}, ErrNotFound
		}
		return DeletePostResult{}, fmt.Errorf("delete post row: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return DeletePostResult{}, fmt.Errorf("commit post delete: %w", err)
	}
	committed = true

	result := DeletePostResult{PostDeleted: true}
	result.ImageDeleted = s.deleteStoredImage(ctx, post.ImageURL)
	return result, nil
}

func (s *postService) deleteStoredImage(ctx context.Context, imageURL string) bool {
	if imageURL == "" || s.storage == nil || s.bucket == "" {
		return false
	}

	key, ok := s.storage.KeyFromURL(imageURL, s.bucket)
	if !ok {
		s.logger.WithField("image_url", imageURL).Warn("stored image url does not match bucket, skipping delete")
		return false
	}
	if err := s.storage.DeleteObject(ctx, s.bucket, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("delete stored image")
		return false
	}
	return true
}

func fillPostFallbacks(post *domain.Post) {
	if post.Author == nil {
		post.Author = domain.FallbackAuthor()
	}
}
