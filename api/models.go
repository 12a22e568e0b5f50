package api

import "time"

// Roles of the author of a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// A Message represents a persisted conversation message.
type Message struct {
	ID        string
	Name      string
	Role      string
	CreatedAt time.Time
}
