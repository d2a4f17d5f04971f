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

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id INTEGER NOT NULL,
	author_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

const selectComment = `
SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
	u.id, u.name, u.image,
	p.id, p.title
FROM comments c
LEFT JOIN users u ON u.id = c.author_id
LEFT JOIN posts p ON p.id = c.post_id
`

type CommentRepository struct {
	q querier
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{q: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.q.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	res, err := r.q.ExecContext(ctx, `
INSERT INTO comments (post_id, author_id, content, created_at)
VALUES (?, ?, ?, ?)`,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	row := r.q.QueryRowContext(ctx, selectComment+`WHERE c.id = ?`, id)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	rows, err := r.q.QueryContext(ctx, selectComment+`WHERE c.post_id = ? ORDER BY c.created_at DESC, c.id DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments by post: %w", err)
	}
	defer rows.Close()
	return collectComments(rows)
}

func (r *CommentRepository) ListAll(ctx context.Context) ([]domain.Comment, error) {
	rows, err := r.q.QueryContext(ctx, selectComment+`ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()
	return collectComments(rows)
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID int64) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count comments by post: %w", err)
	}
	return count, nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("delete comments by post: %w", err)
	}
	return nil
}

func (r *CommentRepository) DeleteByAuthor(ctx context.Context, authorID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE author_id = ?`, authorID); err != nil {
		return fmt.Errorf("delete comments by author: %w", err)
	}
	return nil
}

func (r *CommentRepository) DeleteByPosts(ctx context.Context, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(postIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(postIDs))
	for i, id := range postIDs {
		args[i] = id
	}

	query := fmt.Sprintf(`DELETE FROM comments WHERE post_id IN (%s)`, placeholders)
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete comments by posts: %w", err)
	}
	return nil
}

func collectComments(rows *sql.Rows) ([]domain.Comment, error) {
	var comments []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func scanComment(row interface {
	Scan(dest ...any) error
}) (*domain.Comment, error) {
	var comment domain.Comment
	var authorID sql.NullInt64
	var authorName, authorImage sql.NullString
	var postID sql.NullInt64
	var postTitle sql.NullString
	if err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&authorID,
		&authorName,
		&authorImage,
		&postID,
		&postTitle,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	if authorID.Valid {
		comment.Author = &domain.UserSummary{
			ID:    authorID.Int64,
			Name:  authorName.String,
			Image: authorImage.String,
		}
	}
	if postID.Valid {
		comment.Post = &domain.PostSummary{
			ID:    postID.Int64,
			Title: postTitle.String,
		}
	}
	return &comment, nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
