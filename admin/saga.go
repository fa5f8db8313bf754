package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Step is one remote write. Undo, when set, reverts Do. Leftover names
// what stays on the server if Undo fails, e.g. `challenge "abc"`.
type Step struct {
	Name     string
	Do       func(ctx context.Context) error
	Undo     func(ctx context.Context) error
	Leftover func() string
}

// Saga runs steps in order. The first failure stops it and the completed
// steps are compensated in reverse order.
type Saga struct {
	name   string
	steps  []Step
	logger *slog.Logger
}

func NewSaga(name string, logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saga{name: name, logger: logger.With("saga", name)}
}

func (s *Saga) Add(steps ...Step) *Saga {
	s.steps = append(s.steps, steps...)
	return s
}

func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		s.logger.Debug("running step", "step", step.Name)
		err := step.Do(ctx)
		if err == nil {
			continue
		}
		s.logger.Warn("step failed, compensating", "step", step.Name, "error", err)
		sagaErr := &SagaError{Saga: s.name, Step: step.Name, Err: err}
		s.compensate(context.WithoutCancel(ctx), s.steps[:i], sagaErr)
		return sagaErr
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []Step, sagaErr *SagaError) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			sagaErr.Kept = append(sagaErr.Kept, step.Name)
			continue
		}
		if err := step.Undo(ctx); err != nil {
			s.logger.Error("compensation failed", "step", step.Name, "error", err)
			leftover := step.Name
			if step.Leftover != nil {
				leftover = step.Leftover()
			}
			sagaErr.Failed = append(sagaErr.Failed, CompensationError{
				Step:     step.Name,
				Leftover: leftover,
				Err:      err,
			})
			continue
		}
		sagaErr.Compensated = append(sagaErr.Compensated, step.Name)
	}
}

type CompensationError struct {
	Step     string
	Leftover string
	Err      error
}

// SagaError reports the failed step and what happened to the steps that
// had already completed.
type SagaError struct {
	Saga        string
	Step        string
	Err         error
	Compensated []string
	// Kept lists completed steps that have no compensation.
	Kept   []string
	Failed []CompensationError
}

func (e *SagaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", e.Saga, e.Step, e.Err)
	for _, f := range e.Failed {
		fmt.Fprintf(&b, "; rollback of %s failed (%s), %s remains on the server", f.Step, f.Err, f.Leftover)
	}
	if len(e.Kept) > 0 {
		fmt.Fprintf(&b, "; earlier changes were kept: %s", strings.Join(e.Kept, ", "))
	}
	return b.String()
}

func (e *SagaError) Unwrap() error {
	return e.Err
}

// RolledBack reports whether every completed step was undone.
func (e *SagaError) RolledBack() bool {
	return len(e.Failed) == 0 && len(e.Kept) == 0
}

// AsSagaError unwraps err into a *SagaError.
func AsSagaError(err error) (*SagaError, bool) {
	var se *SagaError
	ok := errors.As(err, &se)
	return se, ok
}
