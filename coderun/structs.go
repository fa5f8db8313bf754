package coderun

import (
	"time"

	"github.com/programme-lv/arena/apiclient"
)

type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
)

type RunInput struct {
	ChallengeID string
	ContestID   string // empty outside contests
	Language    string
	Code        string
	Templates   []apiclient.FunctionTemplate
	TestCases   []apiclient.TestCase
}

// Result of one test case.
type Result struct {
	TestCaseID string
	Status     Status
	Input      string
	Expected   string
	Actual     string
	Message    string // execution or harness error
	Duration   time.Duration
	// Fallback is set when the user's code was sent without its harness.
	Fallback bool
}

type Report struct {
	Results     []Result
	Passed      int
	Total       int
	HiddenCount int // hidden test cases are counted, never run or shown
}

func (r Report) AllPassed() bool {
	return r.Total > 0 && r.Passed == r.Total
}

// Score is passed/total*100, or 0 without tests.
func (r Report) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total) * 100
}

// Visible splits test cases into the ones shown to users and the number
// of hidden ones.
func Visible(tcs []apiclient.TestCase) ([]apiclient.TestCase, int) {
	visible := make([]apiclient.TestCase, 0, len(tcs))
	hidden := 0
	for _, tc := range tcs {
		if tc.IsHidden {
			hidden++
			continue
		}
		visible = append(visible, tc)
	}
	return visible, hidden
}
