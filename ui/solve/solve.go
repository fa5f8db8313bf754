// Package solve is the terminal editor for a challenge: write code, switch
// language, run the sample tests and submit.
package solve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/coderun"
	"github.com/programme-lv/arena/countdown"
	"github.com/programme-lv/arena/pages"
	"github.com/programme-lv/arena/planglist"
	"github.com/programme-lv/arena/ui"
)

type phase int

const (
	phaseEditing phase = iota
	phaseRunning
	phaseSubmitting
	phaseTimeUp
)

type runDoneMsg struct {
	report coderun.Report
	err    error
}

type submitDoneMsg struct {
	report coderun.Report
	sub    apiclient.Submission
	err    error
}

// TickMsg advances the contest countdown.
type TickMsg time.Time

type Model struct {
	ctx  context.Context
	page *pages.ChallengeSolve

	phase   phase
	editor  textarea.Model
	spinner spinner.Model

	deadline time.Time // zero outside contests
	left     time.Duration
	now      func() time.Time

	report *coderun.Report
	sub    *apiclient.Submission
	err    error
}

// New builds the editor over a loaded solve page. A non-zero deadline
// shows a countdown and blocks submissions once it passes.
func New(ctx context.Context, page *pages.ChallengeSolve, deadline time.Time) Model {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.SetWidth(100)
	ta.SetHeight(18)
	ta.SetValue(page.Code())
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.Value

	m := Model{
		ctx:      ctx,
		page:     page,
		editor:   ta,
		spinner:  s,
		deadline: deadline,
		now:      time.Now,
	}
	if !deadline.IsZero() {
		m.left = countdown.Remaining(m.now(), deadline)
	}
	return m
}

// WithClock replaces time.Now for the countdown.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	if !m.deadline.IsZero() {
		m.left = countdown.Remaining(now(), m.deadline)
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if !m.deadline.IsZero() {
		cmds = append(cmds, tick())
	}
	return tea.Batch(cmds...)
}

// timeUp reads the clock; the phase alone can be stale after a run.
func (m Model) timeUp() bool {
	return !m.deadline.IsZero() && countdown.Remaining(m.now(), m.deadline) == 0
}

// settle leaves the busy phase once a run or submit finished.
func (m *Model) settle() {
	m.phase = phaseEditing
	if m.timeUp() {
		m.left = 0
		m.phase = phaseTimeUp
	}
}

func (m Model) busy() bool {
	return m.phase == phaseRunning || m.phase == phaseSubmitting
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.left = countdown.Remaining(m.now(), m.deadline)
		if m.left == 0 {
			if !m.busy() {
				m.phase = phaseTimeUp
			}
			return m, nil
		}
		return m, tick()

	case runDoneMsg:
		m.settle()
		m.err = msg.err
		if msg.err == nil {
			m.report = &msg.report
		}
		return m, nil

	case submitDoneMsg:
		m.settle()
		m.err = msg.err
		if msg.err == nil {
			m.report = &msg.report
			m.sub = &msg.sub
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.busy() {
			return m, nil
		}
		switch msg.String() {
		case "tab":
			m.page.SetCode(m.editor.Value())
			_ = m.page.SetLanguage(planglist.Next(m.page.Language()))
			m.editor.SetValue(m.page.Code())
			return m, nil
		case "ctrl+l":
			m.page.ResetCode()
			m.editor.SetValue(m.page.Code())
			return m, nil
		case "ctrl+r":
			m.page.SetCode(m.editor.Value())
			m.phase = phaseRunning
			m.err = nil
			return m, tea.Batch(m.runCmd(), m.spinner.Tick)
		case "ctrl+s":
			if m.phase == phaseTimeUp || m.timeUp() {
				m.left = 0
				m.phase = phaseTimeUp
				return m, nil
			}
			m.page.SetCode(m.editor.Value())
			m.phase = phaseSubmitting
			m.err = nil
			return m, tea.Batch(m.submitCmd(), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) runCmd() tea.Cmd {
	ctx, page := m.ctx, m.page
	return func() tea.Msg {
		report, err := page.Run(ctx)
		return runDoneMsg{report: report, err: err}
	}
}

func (m Model) submitCmd() tea.Cmd {
	ctx, page := m.ctx, m.page
	return func() tea.Msg {
		report, sub, err := page.Submit(ctx)
		return submitDoneMsg{report: report, sub: sub, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	data := m.page.Data()

	header := ui.Title.Render(data.Challenge.Title) + " " + ui.DifficultyBadge(data.Challenge.Difficulty)
	if !m.deadline.IsZero() {
		clock := ui.Value
		if m.left < 5*time.Minute {
			clock = ui.Error
		}
		header += "  " + clock.Render(countdown.Format(m.left))
	}
	b.WriteString(header + "\n")

	langs := planglist.IDs()
	selected := 0
	for i, l := range langs {
		if l == m.page.Language() {
			selected = i
		}
	}
	b.WriteString(ui.Select("language", langs, selected) + "\n\n")
	b.WriteString(m.editor.View() + "\n")
	buttons := []string{ui.Button("run", m.phase == phaseRunning)}
	if m.phase != phaseTimeUp {
		buttons = append(buttons, ui.Button("submit", m.phase == phaseSubmitting))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, buttons...) + "\n\n")

	switch m.phase {
	case phaseRunning:
		b.WriteString(m.spinner.View() + " running tests...\n")
	case phaseSubmitting:
		b.WriteString(m.spinner.View() + " submitting...\n")
	case phaseTimeUp:
		b.WriteString(ui.Error.Render("time is up, submissions are closed") + "\n")
	}
	if m.err != nil {
		b.WriteString(ui.Error.Render(m.err.Error()) + "\n")
	}
	if m.report != nil {
		b.WriteString(ui.ReportView(*m.report) + "\n")
	}
	if m.sub != nil {
		b.WriteString(ui.Value.Render(fmt.Sprintf("submitted, score %.0f", m.sub.Score)) + "\n")
	}

	b.WriteString("\n" + ui.Muted.Render("tab language • ctrl+r run • ctrl+s submit • ctrl+l reset • esc quit"))
	return b.String()
}

// Report is the latest run or submit result, nil before any.
func (m Model) Report() *coderun.Report {
	return m.report
}

func (m Model) Submission() *apiclient.Submission {
	return m.sub
}

func (m Model) Err() error {
	return m.err
}

func (m Model) Left() time.Duration {
	return m.left
}
