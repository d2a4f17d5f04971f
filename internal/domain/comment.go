package domain

import "time"

// MaxCommentLen caps comment bodies.
const MaxCommentLen = 500

// Comment is a reply attached to a post. Post and author references are plain
// ids with no enforcement after creation; reads tolerate dangling references.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Content   string
	CreatedAt time.Time

	// Author and Post are populated on reads; nil when the reference dangles.
	Author *UserSummary
	Post   *PostSummary
}
