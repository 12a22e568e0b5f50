// Package assistant generates assistant replies for a conversation using an
// OpenAI-compatible chat completion API, such as Groq's.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ai-chat-agent/conversation/api"
	"github.com/sashabaranov/go-openai"
)

// DefaultRole is the system prompt sent ahead of every conversation.
const DefaultRole = `You are a helpful assistant. Once the conversation grows past a certain length,
its older half is replaced by a summary you wrote yourself, placed right after this message.
Do not mention that the earlier conversation was summarized unless asked.`

// SummarizePrompt asks the model to condense the older part of a conversation.
const SummarizePrompt = `Summarize the conversation so far in one paragraph.
The summary replaces this part of the conversation history, so give newer messages more weight than older ones.
If the conversation starts with an earlier summary, carry its content forward.
Keep it under 300 words and information dense.`

var errNoChoices = errors.New("no choices in completion")

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// Role is the system prompt. Empty means DefaultRole.
	Role string
	// HistoryLimit is the number of messages sent as-is. Longer histories have
	// their older half summarized first. Zero disables the limit.
	HistoryLimit int
	// Timeout bounds a whole Reply, summary included. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client answers conversations through a chat completion API.
type Client struct {
	client       *openai.Client
	model        string
	role         string
	historyLimit int
	timeout      time.Duration
	logger       *slog.Logger
}

func New(opts Options) *Client {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	role := opts.Role
	if role == "" {
		role = DefaultRole
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		client:       openai.NewClientWithConfig(config),
		model:        opts.Model,
		role:         role,
		historyLimit: opts.HistoryLimit,
		timeout:      opts.Timeout,
		logger:       logger,
	}
}

// Reply returns the assistant's answer to history. When history is longer
// than the limit, its older half is first summarized and sent in its place.
// If summarizing fails, only the most recent messages are sent.
func (c *Client) Reply(ctx context.Context, history []api.Message) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msgs := c.messages("", history)
	if c.historyLimit > 0 && len(history) > c.historyLimit {
		half := len(history) / 2
		summary, err := c.summarize(ctx, history[:half])
		if err != nil {
			c.logger.Error("Could not summarize conversation, trimming instead", "error", err.Error())
			msgs = c.messages("", history[len(history)-c.historyLimit:])
		} else {
			msgs = c.messages(summary, history[half:])
		}
	}

	return c.complete(ctx, msgs)
}

// summarize condenses older into a single paragraph.
func (c *Client) summarize(ctx context.Context, older []api.Message) (string, error) {
	msgs := c.messages("", older)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: SummarizePrompt,
	})
	summary, err := c.complete(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if summary == "" {
		return "", errors.New("summarize: empty summary")
	}
	return summary, nil
}

func (c *Client) complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// messages builds the request messages: the system prompt, the summary of
// earlier messages if there is one, then history.
func (c *Client) messages(summary string, history []api.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.role,
	})
	if summary != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: summary,
		})
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == api.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Name})
	}
	return out
}
