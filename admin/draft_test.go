package admin_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/arena/admin"
	"github.com/programme-lv/arena/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const challengeToml = `
title = "Two Sum"
description = "Find two indices."
difficulty = "easy"
tags = ["arrays"]
time_limit_ms = 1000
memory_limit_mb = 256
tests_dir = "tests"

[[test_cases]]
input = "[2,7,11,15]\n9"
expected = "[0,1]"
points = 10

[[templates]]
language = "python"
function_name = "two_sum"
starter_file = "starter.py"
execution_file = "harness.py"
`

func TestLoadChallengeDraft(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "challenge.toml"), challengeToml)
	writeFile(t, filepath.Join(dir, "starter.py"), "def two_sum(nums, target):\n    pass\n")
	writeFile(t, filepath.Join(dir, "harness.py"), "{{USER_CODE}}\nprint(two_sum({{INPUT_1}}, {{INPUT_2}}))\n")
	writeFile(t, filepath.Join(dir, "tests", "sample1.in"), "[3,3]\n6")
	writeFile(t, filepath.Join(dir, "tests", "sample1.ans"), "[0,1]")
	writeFile(t, filepath.Join(dir, "tests", "big.in"), "[1,2]\n3")
	writeFile(t, filepath.Join(dir, "tests", "big.out"), "[0,1]")

	d, err := admin.LoadChallengeDraft(filepath.Join(dir, "challenge.toml"))
	require.NoError(t, err)

	assert.Equal(t, "Two Sum", d.Title)
	assert.Equal(t, apiclient.DifficultyEasy, d.Difficulty)
	require.Len(t, d.Templates, 1)
	assert.Contains(t, d.Templates[0].StarterCode, "def two_sum")
	assert.Contains(t, d.Templates[0].ExecutionTemplate, "{{USER_CODE}}")

	require.Len(t, d.TestCases, 3)
	assert.Equal(t, "[2,7,11,15]\n9", d.TestCases[0].Input)
	// directory tests are sorted by name
	assert.Equal(t, "[1,2]\n3", d.TestCases[1].Input)
	assert.True(t, d.TestCases[1].Hidden)
	assert.Equal(t, "[3,3]\n6", d.TestCases[2].Input)
	assert.False(t, d.TestCases[2].Hidden)

	require.NoError(t, admin.ValidateChallenge(d))
}

func TestLoadChallengeDraftErrors(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "unknown.toml"), "title = \"x\"\ncolour = \"red\"\n")
	_, err := admin.LoadChallengeDraft(filepath.Join(dir, "unknown.toml"))
	require.Error(t, err)

	writeFile(t, filepath.Join(dir, "missing.toml"), "title = \"x\"\n[[templates]]\nlanguage = \"python\"\nstarter_file = \"nope.py\"\n")
	_, err = admin.LoadChallengeDraft(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.py")

	writeFile(t, filepath.Join(dir, "unpaired", "c.toml"), "title = \"x\"\ntests_dir = \"tests\"\n")
	writeFile(t, filepath.Join(dir, "unpaired", "tests", "a.in"), "1")
	_, err = admin.LoadChallengeDraft(filepath.Join(dir, "unpaired", "c.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no answer file")
}

func TestLoadContestDraft(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "contest.toml"), `
title = "Spring Cup"
start_time = 2025-03-01T10:00:00Z
end_time = 2025-03-01T13:00:00Z
prizes = ["t-shirt"]

[[challenges]]
id = "ch1"
points = 100
`)
	d, err := admin.LoadContestDraft(filepath.Join(dir, "contest.toml"))
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup", d.Title)
	assert.Equal(t, 3*time.Hour, d.EndTime.Sub(d.StartTime))
	require.Len(t, d.Challenges, 1)
	assert.Equal(t, 100, d.Challenges[0].Points)
	require.NoError(t, admin.ValidateContest(d))
}

func TestDraftRoundTripsThroughToml(t *testing.T) {
	ch := apiclient.Challenge{Title: "Two Sum", Description: "d", Difficulty: apiclient.DifficultyEasy, TimeLimitMs: 1000, MemoryLimitMB: 64}
	tcs := []apiclient.TestCase{{Input: "1", ExpectedOutput: "1", IsHidden: true}}
	d := admin.DraftFromChallenge(ch, tcs, nil)

	content, err := admin.EncodeChallengeDraft(d)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "c.toml")
	writeFile(t, path, string(content))
	back, err := admin.LoadChallengeDraft(path)
	require.NoError(t, err)
	assert.Equal(t, d.Title, back.Title)
	require.Len(t, back.TestCases, 1)
	assert.True(t, back.TestCases[0].Hidden)
}
