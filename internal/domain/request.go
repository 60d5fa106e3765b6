package domain

import "time"

// Request represents a user's wish for an account with a given game
type Request struct {
	ID        string    `json:"id,omitempty" db:"id"`
	User      string    `json:"user" db:"user_name"`
	UserID    int64     `json:"userId" db:"user_id"`
	Text      string    `json:"request" db:"body"`
	CreatedAt time.Time `json:"createdAt,omitempty" db:"created_at"`
}
