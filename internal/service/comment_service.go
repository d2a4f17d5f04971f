package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"blog-platform/internal/auth"
	"blog-platform/internal/domain"
	"blog-platform/internal/repository"
)

// CreateCommentInput carries a new comment.
type CreateCommentInput struct {
	PostID  int64  `validate:"required"`
	Content string `validate:"required,max=500"`
}

// CommentService coordinates comment operations.
type CommentService interface {
	CreateComment(ctx context.Context, authorID int64, input CreateCommentInput) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
	ListAll(ctx context.Context) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, actor auth.Principal, id int64) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	logger *logrus.Logger,
) CommentService {
	return &commentService{
		comments: comments,
		posts:    posts,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateComment requires the referenced post to exist at creation time. The
// reference is not enforced afterwards; reads degrade to placeholders instead.
func (s *commentService) CreateComment(ctx context.Context, authorID int64, input CreateCommentInput) (*domain.Comment, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	if _, err := s.posts.Get(ctx, input.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	comment := &domain.Comment{
		PostID:   input.PostID,
		AuthorID: authorID,
		Content:  input.Content,
	}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.comments.Get(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	fillCommentFallbacks(created)
	return created, nil
}

func (s *commentService) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		fillCommentFallbacks(&comments[i])
	}
	return comments, nil
}

func (s *commentService) ListAll(ctx context.Context) ([]domain.Comment, error) {
	comments, err := s.comments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		fillCommentFallbacks(&comments[i])
	}
	return comments, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor auth.Principal, id int64) error {
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if decision := auth.RequireOwner(&actor, comment.AuthorID); !decision.Allowed {
		return ErrForbidden
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.logger.WithField("comment_id", id).Info("comment deleted")
	return nil
}

func fillCommentFallbacks(comment *domain.Comment) {
	if comment.Author == nil {
		comment.Author = domain.FallbackAuthor()
	}
	if comment.Post == nil {
		comment.Post = domain.FallbackPost()
	}
}
