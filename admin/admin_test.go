package admin_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/programme-lv/arena/admin"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/apitest"
	"github.com/programme-lv/arena/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*apitest.Server, *apiclient.Client, *admin.Admin) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("root", "pw", apiclient.RoleAdmin)
	client := srv.Client()
	client.SetToken(srv.Token("root"))
	return srv, client, admin.New(client)
}

func twoSumDraft() admin.ChallengeDraft {
	return admin.ChallengeDraft{
		Title:         "Two Sum",
		Description:   "Find two indices whose values add up to the target.",
		Difficulty:    apiclient.DifficultyEasy,
		Tags:          []string{"Arrays", " hash-map ", "arrays"},
		TimeLimitMs:   1000,
		MemoryLimitMB: 256,
		Points:        100,
		TestCases: []admin.TestCaseDraft{
			{Input: "[2,7,11,15]\n9", Expected: "[0,1]", Points: 50},
			{Input: "[3,2,4]\n6", Expected: "[1,2]", Hidden: true, Points: 50},
		},
		Templates: []admin.TemplateDraft{{
			Language:          "python",
			FunctionName:      "two_sum",
			StarterCode:       "def two_sum(nums, target):\n    pass\n",
			ExecutionTemplate: "{{USER_CODE}}\nprint(two_sum({{INPUT_1}}, {{INPUT_2}}))",
		}},
	}
}

func TestCreateChallenge(t *testing.T) {
	srv, _, adm := setup(t)

	ch, err := adm.CreateChallenge(context.Background(), twoSumDraft())
	require.NoError(t, err)

	assert.Equal(t, "two-sum", ch.Slug)
	assert.Equal(t, []string{"arrays", "hash-map"}, ch.Tags)
	assert.True(t, srv.HasChallenge(ch.ID))

	tcs := srv.TestCasesOf(ch.ID)
	require.Len(t, tcs, 2)
	assert.Equal(t, "[0,1]", tcs[0].ExpectedOutput)
	assert.True(t, tcs[1].IsHidden)

	tmpls := srv.TemplatesOf(ch.ID)
	require.Len(t, tmpls, 1)
	assert.Equal(t, "two_sum", tmpls[0].FunctionName)
}

func TestCreateChallengeRollsBackWhenTestCaseFails(t *testing.T) {
	srv, _, adm := setup(t)
	srv.Fail("POST /challenges/{id}/test-cases", http.StatusInternalServerError, "internal_error", "could not store test case")

	_, err := adm.CreateChallenge(context.Background(), twoSumDraft())
	require.Error(t, err)

	sagaErr, ok := admin.AsSagaError(err)
	require.True(t, ok)
	assert.Equal(t, "create test case 1", sagaErr.Step)
	assert.True(t, sagaErr.RolledBack())
	assert.Equal(t, []string{"create challenge"}, sagaErr.Compensated)
	assert.True(t, srvcerror.HasCode(err, "internal_error"))

	assert.Equal(t, 1, srv.Calls("POST /challenges"))
	assert.Equal(t, 1, srv.Calls("DELETE /challenges/{id}"))
	assert.Equal(t, 0, srv.ChallengeCount())
}

func TestCreateChallengeReportsLeftoverWhenRollbackFails(t *testing.T) {
	srv, _, adm := setup(t)
	srv.Fail("POST /challenges/{id}/test-cases", http.StatusInternalServerError, "internal_error", "could not store test case")
	srv.Fail("DELETE /challenges/{id}", http.StatusServiceUnavailable, "unavailable", "try again later")

	_, err := adm.CreateChallenge(context.Background(), twoSumDraft())
	require.Error(t, err)

	sagaErr, ok := admin.AsSagaError(err)
	require.True(t, ok)
	assert.False(t, sagaErr.RolledBack())
	require.Len(t, sagaErr.Failed, 1)
	assert.Contains(t, err.Error(), `challenge "Two Sum"`)
	assert.Contains(t, err.Error(), "remains on the server")

	assert.Equal(t, 1, srv.ChallengeCount(), "the challenge exists remotely")
}

func TestCreateChallengeValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(d *admin.ChallengeDraft)
		msg    string
	}{
		{"blank title", func(d *admin.ChallengeDraft) { d.Title = " " }, "title is required"},
		{"bad difficulty", func(d *admin.ChallengeDraft) { d.Difficulty = "extreme" }, "difficulty must be one of: easy medium hard"},
		{"zero time limit", func(d *admin.ChallengeDraft) { d.TimeLimitMs = 0 }, "time_limit_ms must be at least 1"},
		{"missing expected output", func(d *admin.ChallengeDraft) { d.TestCases[1].Expected = "" }, "test case 2: expected output is required"},
		{"unknown language", func(d *admin.ChallengeDraft) { d.Templates[0].Language = "cobol" }, "templates: cobol: unsupported programming language"},
		{"duplicate language", func(d *admin.ChallengeDraft) {
			d.Templates = append(d.Templates, d.Templates[0])
		}, "templates: python is listed twice"},
		{"template without code slot", func(d *admin.ChallengeDraft) {
			d.Templates[0].ExecutionTemplate = "print(two_sum([1], 1))"
		}, "templates: python: execution template has no {{USER_CODE}} placeholder"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _, adm := setup(t)
			d := twoSumDraft()
			tc.mutate(&d)

			_, err := adm.CreateChallenge(context.Background(), d)
			require.Error(t, err)
			assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeValidation))
			assert.Equal(t, tc.msg, err.Error())
			assert.Equal(t, 0, srv.Calls("POST /challenges"))
		})
	}
}

func TestUpdateChallengeReplacesChildren(t *testing.T) {
	srv, _, adm := setup(t)
	ch := srv.AddChallenge(apiclient.Challenge{Title: "Old", Description: "old", Difficulty: apiclient.DifficultyHard})
	srv.AddTestCase(apiclient.TestCase{ChallengeID: ch.ID, Input: "old", ExpectedOutput: "old"})
	srv.AddTemplate(apiclient.FunctionTemplate{ChallengeID: ch.ID, Language: "cpp", StarterCode: "int f();"})

	updated, err := adm.UpdateChallenge(context.Background(), ch.ID, twoSumDraft())
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", updated.Title)

	tcs := srv.TestCasesOf(ch.ID)
	require.Len(t, tcs, 2)
	assert.Equal(t, "[2,7,11,15]\n9", tcs[0].Input)

	tmpls := srv.TemplatesOf(ch.ID)
	require.Len(t, tmpls, 1)
	assert.Equal(t, "python", tmpls[0].Language)
}

func TestUpdateChallengeFailureRestoresFields(t *testing.T) {
	srv, client, adm := setup(t)
	ch := srv.AddChallenge(apiclient.Challenge{Title: "Old", Description: "old", Difficulty: apiclient.DifficultyHard})
	srv.AddTestCase(apiclient.TestCase{ChallengeID: ch.ID, Input: "old", ExpectedOutput: "old"})
	srv.Fail("POST /challenges/{id}/templates", http.StatusInternalServerError, "internal_error", "boom")

	_, err := adm.UpdateChallenge(context.Background(), ch.ID, twoSumDraft())
	require.Error(t, err)

	sagaErr, ok := admin.AsSagaError(err)
	require.True(t, ok)
	assert.Equal(t, "create python template", sagaErr.Step)
	assert.False(t, sagaErr.RolledBack())
	assert.Contains(t, err.Error(), "earlier changes were kept")

	current, err := client.GetChallenge(context.Background(), ch.ID).Get()
	require.NoError(t, err)
	assert.Equal(t, "Old", current.Title)
}

func TestCreateContest(t *testing.T) {
	srv, client, adm := setup(t)
	ch := srv.AddChallenge(apiclient.Challenge{Title: "Two Sum", Description: "d"})
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	draft := admin.ContestDraft{
		Title:      "Spring Cup",
		StartTime:  start,
		EndTime:    start.Add(3 * time.Hour),
		Challenges: []admin.ContestChallengeDraft{{ID: ch.ID, Points: 100}},
	}
	contest, err := adm.CreateContest(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, 180, contest.DurationMinutes)

	linked, err := client.ContestChallenges(context.Background(), contest.ID).Get()
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, ch.ID, linked[0].ID)

	t.Run("unknown challenge rolls back", func(t *testing.T) {
		bad := draft
		bad.Title = "Broken Cup"
		bad.Challenges = []admin.ContestChallengeDraft{{ID: "missing"}}
		_, err := adm.CreateContest(context.Background(), bad)
		require.Error(t, err)
		assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))

		contests, err := client.ListContests(context.Background()).Get()
		require.NoError(t, err)
		require.Len(t, contests, 1)
		assert.Equal(t, "Spring Cup", contests[0].Title)
	})

	t.Run("schedule checks", func(t *testing.T) {
		bad := draft
		bad.EndTime = start
		_, err := adm.CreateContest(context.Background(), bad)
		require.Error(t, err)
		assert.Equal(t, "end_time must be after start_time", err.Error())

		bad = draft
		bad.RegistrationDeadline = draft.EndTime.Add(time.Minute)
		_, err = adm.CreateContest(context.Background(), bad)
		require.Error(t, err)
		assert.Equal(t, "registration_deadline must not be after end_time", err.Error())
	})
}

func TestDelete(t *testing.T) {
	srv, _, adm := setup(t)
	ch := srv.AddChallenge(apiclient.Challenge{Title: "x", Description: "y"})
	c := srv.AddContest(apiclient.Contest{Title: "c"})

	require.NoError(t, adm.DeleteChallenge(context.Background(), ch.ID))
	require.NoError(t, adm.DeleteContest(context.Background(), c.ID))
	assert.False(t, srv.HasChallenge(ch.ID))
	assert.False(t, srv.HasContest(c.ID))

	err := adm.DeleteChallenge(context.Background(), ch.ID)
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}

func TestUpdateContest(t *testing.T) {
	srv, _, adm := setup(t)
	first := srv.AddChallenge(apiclient.Challenge{Title: "Two Sum", Description: "d"})
	second := srv.AddChallenge(apiclient.Challenge{Title: "Reverse", Description: "d"})
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	existing := srv.AddContest(apiclient.Contest{
		Title:        "Spring Cup",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Participants: 12,
	})
	srv.LinkChallenge(existing.ID, apiclient.ContestChallenge{ChallengeID: first.ID, Points: 100, Order: 1})

	draft := admin.ContestDraft{
		Title:     "Spring Cup (extended)",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Challenges: []admin.ContestChallengeDraft{
			{ID: first.ID, Points: 100},
			{ID: second.ID, Points: 200},
		},
	}

	t.Run("updates fields and links new challenges once", func(t *testing.T) {
		updated, err := adm.UpdateContest(context.Background(), existing.ID, draft)
		require.NoError(t, err)
		assert.Equal(t, "Spring Cup (extended)", updated.Title)
		assert.Equal(t, 120, updated.DurationMinutes)
		assert.Equal(t, 12, updated.Participants)

		links := srv.LinksOf(existing.ID)
		require.Len(t, links, 2)
		assert.Equal(t, second.ID, links[1].ChallengeID)
		assert.Equal(t, 2, links[1].Order)
	})

	t.Run("failed link restores the fields", func(t *testing.T) {
		third := srv.AddChallenge(apiclient.Challenge{Title: "Knapsack", Description: "d"})
		bad := draft
		bad.Title = "Renamed"
		bad.Challenges = append(bad.Challenges, admin.ContestChallengeDraft{ID: third.ID})
		srv.Fail("POST /contests/{id}/challenges", http.StatusInternalServerError, "internal", "link failed")
		defer srv.Heal("POST /contests/{id}/challenges")

		_, err := adm.UpdateContest(context.Background(), existing.ID, bad)
		require.Error(t, err)
		se, ok := admin.AsSagaError(err)
		require.True(t, ok)
		assert.True(t, se.RolledBack())

		stored, ok := srv.Contest(existing.ID)
		require.True(t, ok)
		assert.Equal(t, "Spring Cup (extended)", stored.Title)
		assert.Len(t, srv.LinksOf(existing.ID), 2)
	})

	t.Run("unknown contest", func(t *testing.T) {
		_, err := adm.UpdateContest(context.Background(), "missing", draft)
		assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
	})
}
