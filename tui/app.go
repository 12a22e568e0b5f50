// Package tui renders a conversation in the terminal: the message list, and
// below it a form for adding a message.
package tui

import (
	"context"
	"strings"

	"github.com/ai-chat-agent/conversation/conversation"
	tea "github.com/charmbracelet/bubbletea"
)

// conversationMsg reports that a load or append finished and the list may
// have changed.
type conversationMsg struct{}

// Model is the bubbletea model for the conversation screen.
type Model struct {
	ctx      context.Context
	list     *conversation.List
	form     inputForm
	width    int
	height   int
	quitting bool
}

// NewModel returns a Model showing list, with the input form focused.
func NewModel(ctx context.Context, list *conversation.List) Model {
	m := Model{
		ctx:    ctx,
		list:   list,
		width:  80,
		height: 24,
	}
	m.form = newInputForm(m.appendMessage)
	return m
}

// Init loads the conversation once, when the program starts, and starts the
// cursor blinking.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load, m.form.Init())
}

// load and appendMessage run off the update loop. Failures are logged by the
// list and otherwise ignored, the view just keeps the previous snapshot.
func (m Model) load() tea.Msg {
	_ = m.list.Load(m.ctx)
	return conversationMsg{}
}

func (m Model) appendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		_ = m.list.Append(m.ctx, text)
		return conversationMsg{}
	}
}

// Update applies msg to the model, passing anything it does not handle
// itself on to the input form.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case conversationMsg:
		// redraw
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// View renders the list above the input form.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversation List"))
	b.WriteString("\n\n")

	msgs := m.list.Messages()
	if len(msgs) == 0 {
		b.WriteString(itemStyle.Render(dimStyle.Render("No messages yet.")))
		b.WriteString("\n")
	}
	for i := range msgs {
		b.WriteString(itemStyle.Render(bulletStyle.Render("•") + " " + msgs[i].Name))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.form.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: add message  Esc: quit"))
	return b.String()
}
