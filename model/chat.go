// Package model holds the reusable bubbletea components: the transcript
// viewport and the input bar. It renders the session store's read model and
// never talks to the network itself.
package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/splash-tui/markdown"
	"github.com/miosa/splash-tui/session"
	"github.com/miosa/splash-tui/style"
)

// ChatModel is a scrollable viewport displaying the current session's
// transcript plus transient notices (errors, command output).
type ChatModel struct {
	vp      viewport.Model
	sess    session.Session
	hasSess bool
	notices []string
	width   int
	height  int
}

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int) ChatModel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	return ChatModel{
		vp:     vp,
		width:  width,
		height: height,
	}
}

// SetSession replaces the displayed transcript and drops stale notices.
func (m *ChatModel) SetSession(sess session.Session) {
	m.sess = sess
	m.hasSess = true
	m.notices = nil
	m.refresh()
}

// ClearSession empties the viewport, e.g. after logout.
func (m *ChatModel) ClearSession() {
	m.sess = session.Session{}
	m.hasSess = false
	m.notices = nil
	m.refresh()
}

// AddNotice appends a dimmed line under the transcript. Notices survive
// until the next SetSession.
func (m *ChatModel) AddNotice(text string) {
	m.notices = append(m.notices, text)
	m.refresh()
}

// SetSize resizes the underlying viewport.
func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh()
}

// Init satisfies tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update forwards keyboard and mouse events to the viewport.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View returns the rendered viewport content.
func (m ChatModel) View() string {
	return m.vp.View()
}

func (m *ChatModel) refresh() {
	m.vp.SetContent(m.renderAll())
	m.vp.GotoBottom()
}

func (m *ChatModel) renderAll() string {
	var sb strings.Builder
	if !m.hasSess || len(m.sess.Messages) == 0 {
		sb.WriteString(style.Faint.Render("  No conversation yet. Type below to get started."))
	} else {
		for i, msg := range m.sess.Messages {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(m.renderMessage(msg))
			sb.WriteString("\n")
		}
	}
	for _, n := range m.notices {
		sb.WriteString("\n")
		sb.WriteString(style.SystemText.Render(n))
	}
	return sb.String()
}

func (m *ChatModel) renderMessage(msg session.Message) string {
	switch msg.Role {
	case session.RoleUser:
		label := style.UserLabel.Render("❯ You")
		switch msg.State {
		case session.StatePending:
			label += style.Pending.Render("  ⋯ sending")
		case session.StateFailed:
			label += style.Failed.Render("  ✗ not delivered")
		}
		body := msg.Content
		if msg.File != nil {
			body += "\n" + renderAttachment(msg.File)
		}
		return label + "\n" + body

	case session.RoleAssistant:
		out := style.BotLabel.Render("◈ SPLASHBot") + "\n" + markdown.Render(msg.Content, m.width)
		if len(msg.References) > 0 {
			out += "\n" + renderReferences(msg.References)
		}
		return out

	case session.RoleSystem:
		return style.SystemText.Render(msg.Content)

	default:
		return msg.Content
	}
}

func renderAttachment(f *session.FileAttachment) string {
	if f.Kind == session.AttachmentRef || f.Name == "" {
		return style.Attachment.Render(fmt.Sprintf("📎 attachment %s", f.ID))
	}
	return style.Attachment.Render(fmt.Sprintf("📎 %s (%s)", f.Name, humanSize(f.Size)))
}

func renderReferences(refs []string) string {
	var sb strings.Builder
	for i, r := range refs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(style.Reference.Render("  › " + r))
	}
	return sb.String()
}

// humanSize formats a byte count for the attachment chip.
func humanSize(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
