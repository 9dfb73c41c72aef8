package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veloera/velo/internal/playground"
)

// updateChat handles key events in the chat view.
func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.state = viewPricing
		m.err = ""
		return m, nil
	case "ctrl+l":
		m.session.Reset()
		m.chatView.SetContent(m.renderTranscript())
		return m, nil
	case "enter":
		text := m.chatInput.Value()
		m.chatInput.Reset()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		if err := m.session.Send(context.Background(), text); err != nil {
			if errors.Is(err, playground.ErrCustomBody) {
				m.err = err.Error()
				return m, nil
			}
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.streaming = true
		m.chatView.SetContent(m.renderTranscript())
		m.chatView.GotoBottom()
		return m, nil
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// renderChat renders the transcript viewport and the input box.
func (m Model) renderChat() string {
	var b strings.Builder
	model := m.session.Params().Model
	if model == "" {
		model = "(no model set)"
	}
	b.WriteString(headerStyle.Render("Chat · " + model))
	if m.streaming {
		b.WriteString(dimStyle.Render("  streaming..."))
	}
	b.WriteString("\n\n")
	b.WriteString(m.chatView.View())
	b.WriteString("\n")
	b.WriteString(inputBorderStyle.Width(m.chatView.Width).Render(m.chatInput.View()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter send · ctrl+l clear · tab switch view"))
	return b.String()
}

// renderTranscript formats the session transcript for the viewport.
func (m Model) renderTranscript() string {
	msgs := m.session.Messages()
	if len(msgs) == 0 {
		return dimStyle.Render("Start a conversation.")
	}

	var b strings.Builder
	for _, msg := range msgs {
		switch msg.Role {
		case playground.RoleUser:
			b.WriteString(userMsgStyle.Render("you"))
		default:
			b.WriteString(accentStyle.Render("assistant"))
		}
		switch msg.Status {
		case playground.StatusLoading:
			b.WriteString(dimStyle.Render(" · thinking..."))
		case playground.StatusIncomplete:
			b.WriteString(dimStyle.Render(" · streaming"))
		case playground.StatusError:
			b.WriteString(errorStyle.Render(" · failed"))
		}
		b.WriteString("\n")
		if msg.Content != "" {
			b.WriteString(assistantMsgStyle.Render(msg.Content))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
