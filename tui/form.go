package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// AppendFunc receives the submitted draft. The returned command, if any, is
// the pending operation started by the submission.
type AppendFunc func(text string) tea.Cmd

// inputForm is a single editable field plus a submit trigger. It has no
// network access of its own.
type inputForm struct {
	draft  textinput.Model
	append AppendFunc
}

func newInputForm(onAppend AppendFunc) inputForm {
	di := textinput.New()
	di.Placeholder = "Enter message"
	di.Prompt = "> "
	di.Focus()

	return inputForm{
		draft:  di,
		append: onAppend,
	}
}

// Init starts the cursor blinking.
func (f inputForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update submits on Enter and passes everything else, cursor blinks
// included, to the field.
func (f inputForm) Update(msg tea.Msg) (inputForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		return f.submit()
	}
	var cmd tea.Cmd
	f.draft, cmd = f.draft.Update(msg)
	return f, cmd
}

// submit hands a non-empty draft to the append callback exactly once and
// clears the field. Whitespace-only drafts are not empty.
func (f inputForm) submit() (inputForm, tea.Cmd) {
	text := f.draft.Value()
	if text == "" {
		return f, nil
	}
	cmd := f.append(text)
	f.draft.SetValue("")
	return f, cmd
}

func (f inputForm) Value() string {
	return f.draft.Value()
}

func (f inputForm) View() string {
	return inputStyle.Render(f.draft.View())
}
