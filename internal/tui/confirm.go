package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"nano-agent/internal/app"
)

const (
	choiceRun = iota
	choiceEdit
	choiceDecline
)

const (
	modeSelect = iota
	modeEdit
	modeComment
)

// ConfirmModel is the interactive approval step for one pending action:
// run it, edit it first, decline with a comment, or interrupt the run.
type ConfirmModel struct {
	action    app.Action
	argv      []string
	theme     Theme
	choice    int
	mode      int
	input     textinput.Model
	statusMsg string
	width     int

	decision app.Decision
	decided  bool
}

func NewConfirm(action app.Action) *ConfirmModel {
	argv, _ := app.ArgvPreview(action.Command)
	m := &ConfirmModel{
		action: action,
		argv:   argv,
		theme:  NewTheme(),
		input:  textinput.New(),
		width:  80,
	}
	m.input.CharLimit = 0
	return m
}

func (m *ConfirmModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.decide(app.Decision{Verdict: app.VerdictInterrupt})
			return m, tea.Quit

		case "esc":
			if m.mode != modeSelect {
				m.mode = modeSelect
				m.statusMsg = ""
				return m, nil
			}
			m.decide(app.Decision{Verdict: app.VerdictInterrupt})
			return m, tea.Quit

		case "enter":
			switch m.mode {
			case modeSelect:
				switch m.choice {
				case choiceRun:
					m.decide(app.Decision{Verdict: app.VerdictAccept, Command: m.action.Command})
					return m, tea.Quit
				case choiceEdit:
					m.mode = modeEdit
					m.input.SetValue(m.action.Command)
					m.input.Placeholder = ""
					m.input.Focus()
				case choiceDecline:
					m.mode = modeComment
					m.input.SetValue("")
					m.input.Placeholder = "why not? (optional)"
					m.input.Focus()
				}
			case modeEdit:
				edited := strings.TrimSpace(m.input.Value())
				if edited == "" {
					m.statusMsg = "command is empty"
					return m, nil
				}
				if _, err := app.ArgvPreview(edited); err != nil {
					m.statusMsg = fmt.Sprintf("cannot parse: %v", err)
					return m, nil
				}
				m.decide(app.Decision{Verdict: app.VerdictAccept, Command: edited})
				return m, tea.Quit
			case modeComment:
				m.decide(app.Decision{Verdict: app.VerdictDecline, Comment: strings.TrimSpace(m.input.Value())})
				return m, tea.Quit
			}

		case "up", "k":
			if m.mode == modeSelect && m.choice > 0 {
				m.choice--
			}
		case "down", "j":
			if m.mode == modeSelect && m.choice < choiceDecline {
				m.choice++
			}
		case "1", "2", "3":
			if m.mode == modeSelect {
				m.choice = int(msg.String()[0] - '1')
			}

		default:
			if m.mode != modeSelect {
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	if m.mode != modeSelect {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *ConfirmModel) View() string {
	if m.decided {
		return ""
	}

	width := m.width - 4
	if width < 30 {
		width = 30
	}

	row := func(idx int, text string) string {
		prefix := "  "
		style := m.theme.Row
		if idx == m.choice {
			prefix = "› "
			style = m.theme.Active
		}
		return style.Render(prefix + text)
	}

	command := truncate.StringWithTail(m.action.Command, uint(width), "…")

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Command approval"))
	b.WriteString("\n")
	b.WriteString(m.theme.Command.Render(command))
	b.WriteString("\n")
	b.WriteString(m.theme.Meta.Render("in " + m.action.WorkingDirectory))
	if len(m.argv) > 0 {
		b.WriteString("\n")
		b.WriteString(m.theme.Meta.Render("argv: " + truncate.StringWithTail(strings.Join(m.argv, " | "), uint(width), "…")))
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeSelect:
		b.WriteString(row(choiceRun, "1. Run this command"))
		b.WriteString("\n")
		b.WriteString(row(choiceEdit, "2. Edit, then run"))
		b.WriteString("\n")
		b.WriteString(row(choiceDecline, "3. Don't run (agent continues)"))
		b.WriteString("\n")
		b.WriteString(m.theme.Hint.Render("↑/↓ choose  •  enter confirm  •  esc abort run"))
	case modeEdit:
		b.WriteString(m.theme.Meta.Render("Edit command:"))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.statusMsg != "" {
			b.WriteString(m.theme.Warn.Render(m.statusMsg))
			b.WriteString("\n")
		}
		b.WriteString(m.theme.Hint.Render("enter run  •  esc back"))
	case modeComment:
		b.WriteString(m.theme.Meta.Render("Decline reason (sent to the model):"))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.theme.Hint.Render("enter decline  •  esc back"))
	}

	return m.theme.Box.Width(width).Render(b.String())
}

func (m *ConfirmModel) decide(d app.Decision) {
	m.decision = d
	m.decided = true
}

// Confirmer runs one bubbletea program per pending action. It satisfies
// app.Confirmer.
type Confirmer struct{}

var _ app.Confirmer = Confirmer{}

func (Confirmer) Confirm(ctx context.Context, action app.Action) (app.Decision, error) {
	model := NewConfirm(action)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		// A killed program (ctx cancelled, terminal gone) reads as an
		// operator interrupt, not a gate failure.
		return app.Decision{Verdict: app.VerdictInterrupt}, nil
	}
	m, ok := final.(*ConfirmModel)
	if !ok || !m.decided {
		return app.Decision{Verdict: app.VerdictInterrupt}, nil
	}
	return m.decision, nil
}
