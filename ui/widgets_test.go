package ui_test

import (
	"strings"
	"testing"
	"time"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/coderun"
	"github.com/programme-lv/arena/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadges(t *testing.T) {
	assert.Contains(t, ui.DifficultyBadge(apiclient.DifficultyHard), "hard")
	assert.Contains(t, ui.ContestBadge(apiclient.ContestUpcoming), "upcoming")
	assert.Contains(t, ui.ResultBadge(coderun.StatusError), "error")
}

func TestCardAndSelect(t *testing.T) {
	card := ui.Card("Two Sum", "Find two indices.")
	assert.Contains(t, card, "Two Sum")
	assert.Contains(t, card, "Find two indices.")

	sel := ui.Select("language", []string{"python", "cpp"}, 1)
	assert.Contains(t, sel, "[cpp]")
	assert.NotContains(t, sel, "[python]")

	assert.Contains(t, ui.Button("Run", true), "Run")
}

func TestLeaderboardTable(t *testing.T) {
	out := ui.LeaderboardTable([]apiclient.Participant{
		{Rank: 1, Username: "alice", Score: 300, Submissions: 4, Accuracy: 75},
	})
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "submissions")
}

func TestReportView(t *testing.T) {
	out := ui.ReportView(coderun.Report{
		Results: []coderun.Result{
			{Status: coderun.StatusPassed, Duration: 12 * time.Millisecond},
			{Status: coderun.StatusFailed, Input: "[3,3]\n6", Expected: "[0,1]", Actual: "[1,0]"},
		},
		Passed:      1,
		Total:       2,
		HiddenCount: 3,
	})
	assert.Contains(t, out, "1/2 passed")
	assert.Contains(t, out, `[3,3]\n6`)
	assert.Contains(t, out, "+3 hidden tests")
	assert.Contains(t, out, "12ms")
}

func TestTableHeaderComesFirst(t *testing.T) {
	out := ui.Table([]string{"id", "title"}, [][]string{{"7", "Two Sum"}})
	head := strings.Index(out, "title")
	row := strings.Index(out, "Two Sum")
	require.True(t, head >= 0 && row >= 0)
	assert.Less(t, head, row)
}
