package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/programme-lv/arena/ui"
)

var errPromptCancelled = errors.New("cancelled")

type field struct {
	label  string
	value  string
	secret bool
}

// promptModel asks for the fields left empty on the command line, one
// input per field; enter moves on, the last enter submits.
type promptModel struct {
	title     string
	labels    []string
	inputs    []textinput.Model
	focus     int
	done      bool
	cancelled bool
}

func newPromptModel(title string, fields []field) promptModel {
	m := promptModel{title: title}
	for _, f := range fields {
		ti := textinput.New()
		ti.SetValue(f.value)
		ti.CharLimit = 256
		ti.Width = 32
		if f.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.labels = append(m.labels, f.label)
		m.inputs = append(m.inputs, ti)
	}
	m.focusFirstEmpty()
	return m
}

func (m *promptModel) focusFirstEmpty() {
	m.focus = len(m.inputs) - 1
	for i, in := range m.inputs {
		if in.Value() == "" {
			m.focus = i
			break
		}
	}
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.inputs[m.focus].Focus()
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.focus == len(m.inputs)-1 {
				m.done = true
				return m, tea.Quit
			}
			m.inputs[m.focus].Blur()
			m.focus++
			m.inputs[m.focus].Focus()
			return m, textinput.Blink
		case tea.KeyShiftTab, tea.KeyUp:
			if m.focus > 0 {
				m.inputs[m.focus].Blur()
				m.focus--
				m.inputs[m.focus].Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(ui.Title.Render(m.title) + "\n\n")
	for i, in := range m.inputs {
		b.WriteString(fmt.Sprintf("%-10s %s\n", ui.Muted.Render(m.labels[i]), in.View()))
	}
	b.WriteString("\n" + ui.Muted.Render("enter next • esc cancel") + "\n")
	return b.String()
}

func (m promptModel) values() []string {
	res := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		res[i] = in.Value()
	}
	return res
}

// prompt fills in empty fields interactively. Fields that already have a
// value are returned untouched without starting the terminal UI.
func prompt(title string, fields ...field) ([]string, error) {
	missing := false
	for _, f := range fields {
		if f.value == "" {
			missing = true
		}
	}
	if !missing {
		res := make([]string, len(fields))
		for i, f := range fields {
			res[i] = f.value
		}
		return res, nil
	}

	final, err := tea.NewProgram(newPromptModel(title, fields)).Run()
	if err != nil {
		return nil, err
	}
	m := final.(promptModel)
	if m.cancelled {
		return nil, errPromptCancelled
	}
	return m.values(), nil
}
