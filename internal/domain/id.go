package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for application-owned records. UUIDv7 is
// time-ordered, so run and quarantine IDs sort in creation order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
