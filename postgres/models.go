package postgres

import (
	"time"

	"github.com/ai-chat-agent/conversation/api"
)

// A message represents a conversation message in the database.
type message struct {
	ID        string    `bun:",pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	Role      string    `bun:",notnull,default:'user'"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (m message) APIMessage() api.Message {
	return api.Message{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}
