// Package ui renders the presentational pieces shared by the terminal
// screens: badges, cards, buttons, selects and tables.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/coderun"
)

var (
	Blue   = lipgloss.Color("#3498db")
	Violet = lipgloss.Color("#9b59b6")
	Green  = lipgloss.Color("#2ecc71")
	Yellow = lipgloss.Color("#f1c40f")
	Red    = lipgloss.Color("#e74c3c")
	Grey   = lipgloss.Color("#95a5a6")
)

func Fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(Violet)
	Muted = Fg(Grey)
	Value = Fg(Blue)
	Error = Fg(Red)
)

func badge(text string, c lipgloss.Color) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(c).
		Padding(0, 1).
		Render(text)
}

func DifficultyBadge(d apiclient.Difficulty) string {
	switch d {
	case apiclient.DifficultyEasy:
		return badge("easy", Green)
	case apiclient.DifficultyMedium:
		return badge("medium", Yellow)
	case apiclient.DifficultyHard:
		return badge("hard", Red)
	default:
		return badge(string(d), Grey)
	}
}

func ContestBadge(s apiclient.ContestStatus) string {
	switch s {
	case apiclient.ContestActive:
		return badge("active", Green)
	case apiclient.ContestUpcoming:
		return badge("upcoming", Blue)
	default:
		return badge("ended", Grey)
	}
}

func ResultBadge(s coderun.Status) string {
	switch s {
	case coderun.StatusPassed:
		return badge("passed", Green)
	case coderun.StatusFailed:
		return badge("failed", Red)
	default:
		return badge("error", Yellow)
	}
}

// Card frames body under a bold title.
func Card(title, body string) string {
	content := Title.Render(title)
	if body != "" {
		content += "\n\n" + body
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Grey).
		Padding(0, 1).
		Render(content)
}

func Button(label string, focused bool) string {
	style := lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.NormalBorder())
	if focused {
		style = style.BorderForeground(Violet).Foreground(Violet).Bold(true)
	} else {
		style = style.BorderForeground(Grey)
	}
	return style.Render(label)
}

// Select renders options on one line with the selected one highlighted.
func Select(label string, options []string, selected int) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		if i == selected {
			parts[i] = Value.Bold(true).Render("[" + opt + "]")
		} else {
			parts[i] = Muted.Render(opt)
		}
	}
	return fmt.Sprintf("%s: %s", label, strings.Join(parts, " "))
}

func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Muted).
		Headers(headers...).
		Rows(rows...).
		// row 0 is the header
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

func LeaderboardTable(rows []apiclient.Participant) string {
	cells := make([][]string, len(rows))
	for i, p := range rows {
		cells[i] = []string{
			fmt.Sprintf("%d", p.Rank),
			p.Username,
			fmt.Sprintf("%.0f", p.Score),
			fmt.Sprintf("%d", p.Submissions),
			fmt.Sprintf("%.1f%%", p.Accuracy),
		}
	}
	return Table([]string{"#", "user", "score", "submissions", "accuracy"}, cells)
}

func ChallengeTable(chs []apiclient.Challenge) string {
	cells := make([][]string, len(chs))
	for i, ch := range chs {
		cells[i] = []string{
			ch.ID,
			ch.Title,
			string(ch.Difficulty),
			strings.Join(ch.Tags, ", "),
			fmt.Sprintf("%.0f%%", ch.SuccessRate),
		}
	}
	return Table([]string{"id", "title", "difficulty", "tags", "success"}, cells)
}

// ReportView lists every test result followed by the passed/total line.
func ReportView(r coderun.Report) string {
	var b strings.Builder
	for i, res := range r.Results {
		fmt.Fprintf(&b, "%s test %d", ResultBadge(res.Status), i+1)
		if res.Duration > 0 {
			fmt.Fprintf(&b, " %s", Muted.Render(res.Duration.Round(time.Millisecond).String()))
		}
		b.WriteString("\n")
		if res.Status == coderun.StatusPassed {
			continue
		}
		fmt.Fprintf(&b, "  input:    %s\n", oneLine(res.Input))
		fmt.Fprintf(&b, "  expected: %s\n", oneLine(res.Expected))
		fmt.Fprintf(&b, "  actual:   %s\n", oneLine(res.Actual))
		if res.Message != "" {
			fmt.Fprintf(&b, "  %s\n", Error.Render(res.Message))
		}
	}
	summary := fmt.Sprintf("%d/%d passed", r.Passed, r.Total)
	if r.HiddenCount > 0 {
		summary += Muted.Render(fmt.Sprintf(" (+%d hidden tests)", r.HiddenCount))
	}
	b.WriteString(summary)
	return b.String()
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", `\n`)
}
