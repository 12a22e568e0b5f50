// Package conversation holds the client-side state of a conversation and the
// load/append cycle against the remote conversation API.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrFetch is returned when the conversation could not be read.
	ErrFetch = errors.New("fetch conversation")
	// ErrSubmit is returned when a new message could not be written.
	ErrSubmit = errors.New("submit message")
)

// A Remote provides read and append access to the conversation API.
type Remote interface {
	FetchConversation(ctx context.Context) ([]Message, error)
	PostMessage(ctx context.Context, name string) error
}

// List owns the conversation currently known to the client. The stored
// conversation is always the last snapshot that was fetched successfully.
//
// Overlapping loads are not sequenced: whichever fetch resolves last wins,
// regardless of the order the requests were issued in.
type List struct {
	Logger *slog.Logger
	Remote Remote

	mu           sync.RWMutex
	conversation []Message
}

// New returns an empty List backed by remote.
func New(remote Remote, logger *slog.Logger) *List {
	return &List{
		Logger:       logger,
		Remote:       remote,
		conversation: []Message{},
	}
}

// Messages returns a copy of the current conversation.
func (l *List) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.conversation))
	copy(out, l.conversation)
	return out
}

// Load fetches the full conversation and replaces the local one with it. On
// failure the local conversation is left untouched.
func (l *List) Load(ctx context.Context) error {
	msgs, err := l.Remote.FetchConversation(ctx)
	if err != nil {
		l.Logger.Error("Error fetching conversation", "error", err.Error())
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if msgs == nil {
		msgs = []Message{}
	}

	l.mu.Lock()
	l.conversation = msgs
	l.mu.Unlock()

	l.Logger.Debug("Loaded conversation", "count", len(msgs))
	return nil
}

// Append sends text as a new message and reloads the conversation. When the
// message cannot be sent, no reload happens.
func (l *List) Append(ctx context.Context, text string) error {
	if err := l.Remote.PostMessage(ctx, text); err != nil {
		l.Logger.Error("Error adding message", "error", err.Error())
		return fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	return l.Load(ctx)
}
