package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/apitest"
	"github.com/programme-lv/arena/conf"
	"github.com/programme-lv/arena/pages"
	"github.com/programme-lv/arena/session"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, srv *apitest.Server) (*app, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	a := &app{
		cfg:  &conf.Config{ParallelRuns: 1},
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		sess: session.New(srv.Client(), session.NewMemStorage(), session.NewMemStorage()),
		nav:  &pages.History{},
		out:  out,
	}
	a.sess.SetLogger(a.log)
	return a, out
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

func seedTwoSum(srv *apitest.Server) {
	srv.AddChallenge(apiclient.Challenge{ID: "1", Title: "Two Sum", Description: "find two numbers", Difficulty: apiclient.DifficultyEasy, Tags: []string{"arrays"}})
	srv.AddTestCase(apiclient.TestCase{ChallengeID: "1", Input: "[2,7,11,15]\n9", ExpectedOutput: "[0,1]"})
	srv.AddTestCase(apiclient.TestCase{ChallengeID: "1", Input: "[3,3]\n6", ExpectedOutput: "[0,1]", IsHidden: true})
	srv.AddTemplate(apiclient.FunctionTemplate{
		ChallengeID:       "1",
		Language:          "python",
		StarterCode:       "def two_sum(nums, target):\n    pass\n",
		ExecutionTemplate: "{{USER_CODE}}\nprint(two_sum({{INPUT_1}}, {{INPUT_2}}))",
	})
	srv.SetExec(func(req apiclient.ExecuteRequest) (apiclient.ExecutionResult, error) {
		return apiclient.ExecutionResult{Output: "[0,1]"}, nil
	})
}

func TestSignedOutCommandNamesLoginRedirect(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	a, _ := newTestApp(t, srv)

	err := execute(t, challengesCmd(a), "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirected to /login")
	assert.Contains(t, err.Error(), "arena login")
	assert.Equal(t, 0, srv.Calls("GET /challenges"))
}

func TestAdminCommandNeedsAdminRole(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "x", apiclient.RoleUser)
	a, _ := newTestApp(t, srv)
	_, err := a.sess.Login(context.Background(), "bob", "x")
	require.NoError(t, err)

	err = execute(t, adminCmd(a), "challenge", "delete", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirected to /")
	assert.Contains(t, err.Error(), "admin role")
}

func TestLoginCommandFollowsStoredRedirect(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "x", apiclient.RoleUser)
	a, out := newTestApp(t, srv)

	require.Error(t, execute(t, contestsCmd(a), "show", "7"))

	err := execute(t, loginCmd(a), "-u", "bob", "-p", "x")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "signed in as")
	assert.Contains(t, out.String(), "/contests/7")
	assert.True(t, a.sess.IsAuthenticated())
}

func TestRunAndSubmitFromFile(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "x", apiclient.RoleUser)
	seedTwoSum(srv)
	a, out := newTestApp(t, srv)
	_, err := a.sess.Login(context.Background(), "bob", "x")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "two_sum.py")
	require.NoError(t, os.WriteFile(path, []byte("def two_sum(nums, target):\n    return [0, 1]\n"), 0o644))

	require.NoError(t, execute(t, challengesCmd(a), "run", "1", "-f", path))
	assert.Contains(t, out.String(), "1/1 passed")
	assert.Equal(t, 1, srv.Calls("POST /execute"), "hidden tests are not run")
	assert.Empty(t, srv.Submissions())

	out.Reset()
	require.NoError(t, execute(t, challengesCmd(a), "submit", "1", "-f", path))
	assert.Contains(t, out.String(), "submitted, score")
	subs := srv.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "python", subs[0].Language)
	assert.Equal(t, 100.0, subs[0].Score)
}

func TestRunRejectsUnknownExtension(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "x", apiclient.RoleUser)
	seedTwoSum(srv)
	a, _ := newTestApp(t, srv)
	_, err := a.sess.Login(context.Background(), "bob", "x")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "solution.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err = execute(t, challengesCmd(a), "run", "1", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--lang")
}

func TestAdminChallengeCreateRollsBack(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "pw", apiclient.RoleAdmin)
	a, out := newTestApp(t, srv)
	_, err := a.sess.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	draft := `
title = "Reverse"
description = "reverse a string"
difficulty = "easy"
time_limit_ms = 1000
memory_limit_mb = 256

[[test_cases]]
input = "abc"
expected = "cba"
`
	path := filepath.Join(t.TempDir(), "reverse.toml")
	require.NoError(t, os.WriteFile(path, []byte(draft), 0o644))

	require.NoError(t, execute(t, adminCmd(a), "challenge", "create", "-f", path))
	assert.Contains(t, out.String(), "created challenge")
	assert.Equal(t, 1, srv.ChallengeCount())

	srv.Fail("POST /challenges/{id}/test-cases", 500, "boom", "disk full")
	err = execute(t, adminCmd(a), "challenge", "create", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rolled back")
	assert.Equal(t, 1, srv.ChallengeCount())
}

func TestAdminContestUpdate(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "pw", apiclient.RoleAdmin)
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	c := srv.AddContest(apiclient.Contest{Title: "Cup", StartTime: start, EndTime: start.Add(time.Hour), DurationMinutes: 60})
	a, out := newTestApp(t, srv)
	_, err := a.sess.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	draft := fmt.Sprintf(`
title = "Cup (final)"
start_time = %s
end_time = %s
`, start.Format(time.RFC3339), start.Add(90*time.Minute).Format(time.RFC3339))
	path := filepath.Join(t.TempDir(), "cup.toml")
	require.NoError(t, os.WriteFile(path, []byte(draft), 0o644))

	require.NoError(t, execute(t, adminCmd(a), "contest", "update", c.ID, "-f", path))
	assert.Contains(t, out.String(), "updated contest")
	stored, ok := srv.Contest(c.ID)
	require.True(t, ok)
	assert.Equal(t, "Cup (final)", stored.Title)
	assert.Equal(t, 90, stored.DurationMinutes)

	err = execute(t, adminCmd(a), "contest", "update", c.ID)
	require.Error(t, err, "the draft file is required")
}

func TestPromptSkipsFilledFields(t *testing.T) {
	vals, err := prompt("Sign in", field{label: "username", value: "bob"}, field{label: "password", value: "x", secret: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "x"}, vals)
}

func TestPromptModelMovesThroughFields(t *testing.T) {
	m := newPromptModel("Sign in", []field{{label: "username", value: "bob"}, {label: "password", secret: true}})
	assert.Equal(t, 1, m.focus, "focus starts on the first empty field")

	typed, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pw")})
	assert.Contains(t, typed.View(), "bob")
	assert.NotContains(t, typed.View(), "pw", "passwords are not echoed")

	next, cmd := typed.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := next.(promptModel)
	assert.True(t, pm.done)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"bob", "pw"}, pm.values())

	next, _ = newPromptModel("x", []field{{label: "a"}}).Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(promptModel).cancelled)
}
