package apiclient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestStatusDerivedFromSchedule(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Contest{StartTime: start, EndTime: start.Add(2 * time.Hour)}

	testCases := []struct {
		name string
		now  time.Time
		want ContestStatus
	}{
		{"before start", start.Add(-time.Minute), ContestUpcoming},
		{"at start", start, ContestActive},
		{"running", start.Add(time.Hour), ContestActive},
		{"at end", start.Add(2 * time.Hour), ContestEnded},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.StatusAt(tc.now))
		})
	}

	c.Status = ContestEnded
	assert.Equal(t, ContestEnded, c.StatusAt(start), "backend status wins")
}

func TestRegistrationOpen(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := start.Add(-time.Hour)
	c := Contest{
		StartTime:            start,
		EndTime:              start.Add(time.Hour),
		RegistrationDeadline: &deadline,
	}
	assert.True(t, c.RegistrationOpen(start.Add(-2*time.Hour)))
	assert.False(t, c.RegistrationOpen(start.Add(-30*time.Minute)))

	c.RegistrationDeadline = nil
	assert.True(t, c.RegistrationOpen(start.Add(30*time.Minute)))
	assert.False(t, c.RegistrationOpen(start.Add(2*time.Hour)))

	c.MaxParticipants = 10
	c.Participants = 10
	assert.False(t, c.RegistrationOpen(start.Add(-2*time.Hour)))
}

func TestResultGetReturnsNilInterfaceOnSuccess(t *testing.T) {
	v, err := Ok(42).Get()
	assert.Equal(t, 42, v)
	assert.Nil(t, err)
	assert.True(t, err == nil)
}

func TestContestWithoutDeadlineOmitsIt(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	encoded, err := json.Marshal(Contest{Title: "Cup", StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "registrationDeadline")

	var c Contest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Cup","registrationDeadline":"2026-03-01T09:00:00Z"}`), &c))
	require.NotNil(t, c.RegistrationDeadline)
	assert.True(t, start.Add(-time.Hour).Equal(*c.RegistrationDeadline))
}
