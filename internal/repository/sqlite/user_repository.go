package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-platform/internal/domain"
	"blog-platform/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'user',
	created_at DATETIME NOT NULL
);
`

type UserRepository struct {
	q querier
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.q.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	res, err := r.q.ExecContext(ctx, `
INSERT INTO users (name, email, password_hash, image, role, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Image,
		string(user.Role),
		user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, repository.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, image, role, created_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, image, role, created_at
FROM users
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, `
SELECT id, name, email, password_hash, image, role, created_at
FROM users
ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		var role string
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Image,
			&role,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Role = domain.Role(role)
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var role string
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Image,
		&role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
