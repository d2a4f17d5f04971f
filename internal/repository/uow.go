package repository

import "context"

// UnitOfWork starts transactions that span the three collections. It exists
// for the delete-user cascade, which must remove comments, posts and the user
// atomically.
type UnitOfWork interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction exposes the repositories bound to one database transaction.
type Transaction interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
