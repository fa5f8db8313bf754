package apiclient

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	Role        Role      `json:"role"`
	MemberSince time.Time `json:"memberSince"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

type ContestStatus string

const (
	ContestUpcoming ContestStatus = "upcoming"
	ContestActive   ContestStatus = "active"
	ContestEnded    ContestStatus = "ended"
)

type Contest struct {
	ID                   string        `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	StartTime            time.Time     `json:"startTime"`
	EndTime              time.Time     `json:"endTime"`
	RegistrationDeadline *time.Time    `json:"registrationDeadline,omitempty"`
	DurationMinutes      int           `json:"duration"`
	Participants         int           `json:"participants"`
	MaxParticipants      int           `json:"maxParticipants,omitempty"`
	Prizes               []string      `json:"prizes,omitempty"`
	Rules                string        `json:"rules,omitempty"`
	Status               ContestStatus `json:"status,omitempty"`
}

// StatusAt returns the backend-supplied status, or derives one from the
// schedule when the backend left it out.
func (c *Contest) StatusAt(now time.Time) ContestStatus {
	if c.Status != "" {
		return c.Status
	}
	switch {
	case now.Before(c.StartTime):
		return ContestUpcoming
	case now.Before(c.EndTime):
		return ContestActive
	default:
		return ContestEnded
	}
}

// RegistrationOpen reports whether a user may still join at now. Without a
// deadline registration stays open until the contest ends.
func (c *Contest) RegistrationOpen(now time.Time) bool {
	if c.StatusAt(now) == ContestEnded {
		return false
	}
	if c.MaxParticipants > 0 && c.Participants >= c.MaxParticipants {
		return false
	}
	if c.RegistrationDeadline == nil {
		return true
	}
	return now.Before(*c.RegistrationDeadline)
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Challenge struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug,omitempty"`
	Description   string     `json:"description"`
	Difficulty    Difficulty `json:"difficulty"`
	Tags          []string   `json:"tags"`
	TimeLimitMs   int        `json:"timeLimit"`
	MemoryLimitMB int        `json:"memoryLimit"`
	Submissions   int        `json:"submissionsCount"`
	SuccessRate   float64    `json:"successRate"`
	Points        int        `json:"points,omitempty"`
	Author        string     `json:"author,omitempty"`
}

type TestCase struct {
	ID             string `json:"id,omitempty"`
	ChallengeID    string `json:"challengeId,omitempty"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	IsHidden       bool   `json:"isHidden"`
	Points         int    `json:"points"`
}

// FunctionTemplate is the per-language scaffold of a challenge. The
// execution template is never shown to the user.
type FunctionTemplate struct {
	ID                string `json:"id,omitempty"`
	ChallengeID       string `json:"challengeId,omitempty"`
	Language          string `json:"language"`
	FunctionName      string `json:"functionName"`
	Signature         string `json:"signature,omitempty"`
	StarterCode       string `json:"starterCode"`
	ExecutionTemplate string `json:"executionTemplate"`
}

type Submission struct {
	ID          string    `json:"id,omitempty"`
	ChallengeID string    `json:"challengeId"`
	ContestID   string    `json:"contestId,omitempty"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	PassedTests int       `json:"passedTests"`
	TotalTests  int       `json:"totalTests"`
	Score       float64   `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Participant is a leaderboard row computed by the backend.
type Participant struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Score       float64 `json:"score"`
	Submissions int     `json:"submissions"`
	Accuracy    float64 `json:"accuracy"`
}

type ContestChallenge struct {
	ChallengeID string `json:"challengeId"`
	Points      int    `json:"points"`
	Order       int    `json:"order"`
}

type ExecuteRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Stdin    string `json:"input,omitempty"`
}

type ExecutionResult struct {
	Output          string  `json:"output"`
	Error           string  `json:"error,omitempty"`
	ExecutionTimeMs float64 `json:"executionTime,omitempty"`
}

type SubmissionFilter struct {
	ChallengeID string
	ContestID   string
}

// Empty is the payload type of endpoints that answer without data.
type Empty struct{}
