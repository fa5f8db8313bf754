// Package countdown formats and drives the contest timers.
package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Remaining is the time left until end, never negative.
func Remaining(now, end time.Time) time.Duration {
	d := end.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Format renders d as HH:MM:SS, with a day prefix past 24 hours.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	h := (total % 86400) / 3600
	m := (total % 3600) / 60
	s := total % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Timer calls onTick once per interval with the time left until end. The
// last tick reports zero and the timer stops itself.
type Timer struct {
	end    time.Time
	now    func() time.Time
	onTick func(left time.Duration)

	ticker   *time.Ticker
	stopOnce sync.Once
	done     chan struct{}
}

type Option func(*Timer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

func Start(end time.Time, interval time.Duration, onTick func(left time.Duration), opts ...Option) *Timer {
	t := &Timer{
		end:    end,
		now:    time.Now,
		onTick: onTick,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.ticker = time.NewTicker(interval)
	go t.loop()
	return t
}

func (t *Timer) loop() {
	defer t.ticker.Stop()
	if !t.tick() {
		t.Stop()
		return
	}
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			if !t.tick() {
				t.Stop()
				return
			}
		}
	}
}

func (t *Timer) tick() bool {
	left := Remaining(t.now(), t.end)
	select {
	case <-t.done:
		return false
	default:
	}
	t.onTick(left)
	return left > 0
}

// Stop ends the timer. It is safe to call more than once.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

// Done is closed once the timer has stopped.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}
