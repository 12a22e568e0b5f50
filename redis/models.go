package redis

import (
	"time"

	"github.com/ai-chat-agent/conversation/api"
)

// A message represents a cached conversation message.
type message struct {
	ID        string    `redis:"id"`
	Name      string    `redis:"name"`
	Role      string    `redis:"role"`
	CreatedAt time.Time `redis:"created_at"`
}

func fromAPIMessage(msg api.Message) message {
	return message{
		ID:        msg.ID,
		Name:      msg.Name,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt,
	}
}

func (m message) APIMessage() api.Message {
	return api.Message{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}
