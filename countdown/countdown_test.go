package countdown_test

import (
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/arena/countdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	testCases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond, "23:59:59"},
		{50*time.Hour + 5*time.Second, "2d 02:00:05"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, countdown.Format(tc.d))
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, countdown.Remaining(now, now.Add(time.Hour)))
	assert.Equal(t, time.Duration(0), countdown.Remaining(now, now.Add(-time.Hour)))
}

func TestTimerStopsItselfAtZero(t *testing.T) {
	end := time.Now().Add(30 * time.Millisecond)

	var mu sync.Mutex
	var ticks []time.Duration
	timer := countdown.Start(end, 5*time.Millisecond, func(left time.Duration) {
		mu.Lock()
		ticks = append(ticks, left)
		mu.Unlock()
	})

	select {
	case <-timer.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	assert.Equal(t, time.Duration(0), ticks[len(ticks)-1])
	timer.Stop()
}

func TestTimerStop(t *testing.T) {
	var mu sync.Mutex
	count := 0
	timer := countdown.Start(time.Now().Add(time.Hour), time.Millisecond, func(time.Duration) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	time.Sleep(10 * time.Millisecond)
	timer.Stop()
	<-timer.Done()

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, count, after+1, "at most one in-flight tick after Stop")
	assert.Positive(t, after)
}

func TestTimerPastEnd(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	got := make(chan time.Duration, 4)
	timer := countdown.Start(now.Add(-time.Minute), time.Hour, func(left time.Duration) {
		got <- left
	}, countdown.WithClock(func() time.Time { return now }))
	<-timer.Done()
	assert.Equal(t, time.Duration(0), <-got)
}
