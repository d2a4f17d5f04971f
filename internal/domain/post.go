package domain

import "time"

const (
	// MaxPostTitleLen caps post titles.
	MaxPostTitleLen = 100
	// MaxPostDescriptionLen caps the short description shown in listings.
	MaxPostDescriptionLen = 200
)

// Post is an article authored by a user. Content is stored as markup and
// rendered by the client without escaping.
type Post struct {
	ID          int64
	Title       string
	Description string
	Content     string
	ImageURL    string
	AuthorID    int64
	CreatedAt   time.Time

	// Author is populated on reads; nil when the owning user was deleted.
	Author *UserSummary
	// CommentCount is filled by read paths that join comments.
	CommentCount int
}

// PostSummary is the slice of a post embedded in comment listings.
type PostSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// DeletedPostLabel replaces the post title when the referenced post no longer exists.
const DeletedPostLabel = "Post eliminado"

// FallbackPost builds the placeholder summary used when a post reference dangles.
func FallbackPost() *PostSummary {
	return &PostSummary{Title: DeletedPostLabel}
}
