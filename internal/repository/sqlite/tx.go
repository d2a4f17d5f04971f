package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"blog-platform/internal/repository"
)

// UnitOfWork hands out transactions whose repositories share one *sql.Tx.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) repository.UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Begin(ctx context.Context) (repository.Transaction, error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &transaction{tx: tx}, nil
}

type transaction struct {
	tx *sql.Tx
}

func (t *transaction) Users() repository.UserRepository {
	return &UserRepository{q: t.tx}
}

func (t *transaction) Posts() repository.PostRepository {
	return &PostRepository{q: t.tx}
}

func (t *transaction) Comments() repository.CommentRepository {
	return &CommentRepository{q: t.tx}
}

func (t *transaction) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *transaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}
