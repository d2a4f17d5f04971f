package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blog-platform/internal/domain"
	"blog-platform/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	author_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
`

// posts reference users by bare id: no foreign key, dangling authors are
// resolved to NULL by the join and papered over upstream.
const selectPost = `
SELECT p.id, p.title, p.description, p.content, p.image_url, p.author_id, p.created_at,
	u.id, u.name, u.image,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
`

type PostRepository struct {
	q querier
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{q: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.q.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	res, err := r.q.ExecContext(ctx, `
INSERT INTO posts (title, description, content, image_url, author_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		post.Title,
		post.Description,
		post.Content,
		post.ImageURL,
		post.AuthorID,
		post.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.q.QueryRowContext(ctx, selectPost+`WHERE p.id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	res, err := r.q.ExecContext(ctx, `
UPDATE posts SET title = ?, description = ?, content = ?, image_url = ?
WHERE id = ?`,
		post.Title,
		post.Description,
		post.Content,
		post.ImageURL,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, limit int) ([]domain.Post, error) {
	query := selectPost + `ORDER BY p.created_at DESC, p.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error) {
	rows, err := r.q.QueryContext(ctx, selectPost+`WHERE p.author_id = ? ORDER BY p.created_at DESC, p.id DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) IDsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id FROM posts WHERE author_id = ?`, authorID)
	if err != nil {
		return nil, fmt.Errorf("post ids by author: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostRepository) DeleteByAuthor(ctx context.Context, authorID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE author_id = ?`, authorID); err != nil {
		return fmt.Errorf("delete posts by author: %w", err)
	}
	return nil
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var post domain.Post
	var authorID sql.NullInt64
	var authorName, authorImage sql.NullString
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Description,
		&post.Content,
		&post.ImageURL,
		&post.AuthorID,
		&post.CreatedAt,
		&authorID,
		&authorName,
		&authorImage,
		&post.CommentCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	if authorID.Valid {
		post.Author = &domain.UserSummary{
			ID:    authorID.Int64,
			Name:  authorName.String,
			Image: authorImage.String,
		}
	}
	return &post, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
