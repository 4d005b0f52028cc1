package model

import "time"

// User is the public account projection returned to clients. The
// password hash lives in the same table but is only reachable through
// the store's dedicated credential lookups, so it can never be
// serialized by accident.
//
// JSON field names match the wire contract the bundled web clients
// were built against.
type User struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
