// Package replay is the terminal viewer for recorded sessions. It paginates
// one interaction at a time with n/p navigation and a timeline window.
package replay

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dlightman/minitelctl/internal/session"
)

const timelineWindow = 10

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Width(16)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	requestStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	responseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// Model paginates one recorded session.
type Model struct {
	sess session.Session
	step int
}

func NewModel(sess session.Session) Model {
	return Model{sess: sess}
}

// Step reports the current zero-based position.
func (m Model) Step() int {
	return m.step
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "n", "right", "down":
		if m.step < len(m.sess.Interactions)-1 {
			m.step++
		}
	case "p", "left", "up":
		if m.step > 0 {
			m.step--
		}
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerPanel())
	b.WriteString("\n")
	b.WriteString(m.interactionPanel())
	b.WriteString("\n")
	b.WriteString(m.timelinePanel())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("n/→ next  p/← previous  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) headerPanel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MINITEL-LITE SESSION REPLAY"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s%s\n", labelStyle.Render("Session ID"), m.sess.SessionID))
	b.WriteString(fmt.Sprintf("%s%s\n", labelStyle.Render("Start Time"),
		m.sess.StartTime.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("%s%.2fs\n", labelStyle.Render("Duration"), m.sess.Duration))
	b.WriteString(fmt.Sprintf("%s%d", labelStyle.Render("Interactions"), m.sess.TotalInteractions))
	return panelStyle.Render(b.String())
}

func (m Model) interactionPanel() string {
	if len(m.sess.Interactions) == 0 {
		return panelStyle.Render("no interactions")
	}
	it := m.sess.Interactions[m.step]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Step %d of %d\n\n", m.step+1, len(m.sess.Interactions)))
	b.WriteString(row("Time", it.Timestamp.Format("15:04:05.000")))
	b.WriteString(row("Offset", fmt.Sprintf("%.3fs", it.RelativeTime)))
	b.WriteString(row("Type", styleFor(it).Render(it.Type)))

	switch it.Type {
	case "request", "response":
		b.WriteString(row("Direction", it.Direction))
		b.WriteString(row("Command", fmt.Sprintf("%s (%s)", it.Command, it.CommandCode)))
		b.WriteString(row("Nonce", fmt.Sprintf("%d", it.Nonce)))
		b.WriteString(row("Payload Len", fmt.Sprintf("%d", it.PayloadLength)))
		if it.Payload != "" {
			b.WriteString(row("Payload", truncate(it.Payload, 100)))
		}
		b.WriteString(row("Frame Len", fmt.Sprintf("%d", it.FrameLength)))
	case "event":
		b.WriteString(row("Event", it.EventType))
		if len(it.Details) > 0 {
			pairs := make([]string, 0, len(it.Details))
			for k, v := range it.Details {
				pairs = append(pairs, k+": "+v)
			}
			b.WriteString(row("Details", truncate(strings.Join(pairs, ", "), 100)))
		}
	}
	if it.Description != "" {
		b.WriteString(row("Description", it.Description))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) timelinePanel() string {
	start := m.step - timelineWindow/2
	if start < 0 {
		start = 0
	}
	end := start + timelineWindow
	if end > len(m.sess.Interactions) {
		end = len(m.sess.Interactions)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		it := m.sess.Interactions[i]
		line := fmt.Sprintf("%7.3fs  %-8s  %s", it.RelativeTime, it.Type, timelineLabel(it))
		if i == m.step {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(dimStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func timelineLabel(it session.Interaction) string {
	if it.Type == "event" {
		return it.EventType
	}
	return fmt.Sprintf("%s nonce=%d", it.Command, it.Nonce)
}

func styleFor(it session.Interaction) lipgloss.Style {
	switch {
	case it.Type == "request":
		return requestStyle
	case it.Type == "response":
		return responseStyle
	case it.Type == "event" && strings.Contains(strings.ToLower(it.EventType), "error"):
		return errorStyle
	default:
		return dimStyle
	}
}

func row(label, value string) string {
	return fmt.Sprintf("%s%s\n", labelStyle.Render(label), value)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// Run opens the viewer over one recorded session file.
func Run(path string) error {
	sess, err := session.Load(path)
	if err != nil {
		return err
	}
	if len(sess.Interactions) == 0 {
		return errors.New("replay: session has no interactions")
	}
	_, err = tea.NewProgram(NewModel(sess), tea.WithAltScreen()).Run()
	return err
}
