package domain

import "time"

// Role classifies a user's privilege level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Image        string
	Role         Role
	CreatedAt    time.Time
}

// UserSummary is the slice of a user that gets embedded in posts and comments.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// UnknownUserLabel replaces the author name when the referenced user no longer exists.
const UnknownUserLabel = "Usuario desconocido"

// FallbackAuthor builds the placeholder summary used when an author reference dangles.
func FallbackAuthor() *UserSummary {
	return &UserSummary{Name: UnknownUserLabel}
}
