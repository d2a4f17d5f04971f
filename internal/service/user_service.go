package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"blog-platform/internal/domain"
	"blog-platform/internal/repository"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// UserService describes account lifecycle operations, including the
// admin-driven cascading delete.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	uow      repository.UnitOfWork
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	uow repository.UnitOfWork,
	logger *logrus.Logger,
) UserService {
	return &userService{
		users:    users,
		posts:    posts,
		comments: comments,
		uow:      uow,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// DeleteUser removes a user together with all their posts, all comments they
// authored and all comments on their posts, in one transaction. Admin accounts
// are never deletable through this path.
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.Role == domain.RoleAdmin {
		return ErrAdminProtected
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin user delete: %w", err)
	}

	var committed bool
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.WithError(rbErr).Error("rollback user delete")
			}
		}
	}()

	if err := tx.Comments().DeleteByAuthor(ctx, id); err != nil {
		return fmt.Errorf("delete user comments: %w", err)
	}

	postIDs, err := tx.Posts().IDsByAuthor(ctx, id)
	if err != nil {
		return fmt.Errorf("collect user posts: %w", err)
	}
	if err := tx.Comments().DeleteByPosts(ctx, postIDs); err != nil {
		return fmt.Errorf("delete comments on user posts: %w", err)
	}
	if err := tx.Posts().DeleteByAuthor(ctx, id); err != nil {
		return fmt.Errorf("delete user posts: %w", err)
	}
	if err := tx.Users().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit user delete: %w", err)
	}
	committed = true

	s.logger.WithFields(logrus.Fields{
		"user_id": id,
		"posts":   len(postIDs),
	}).Info("user deleted with owned content")
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
