package model

import "time"

// Thing is a single recorded quote: what was said, who said it, and
// optional context. Every Thing belongs to exactly one user and is
// never reassigned.
type Thing struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Thing     string    `json:"thing"`
	Who       string    `json:"who"`
	Why       *string   `json:"why,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
