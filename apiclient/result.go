package apiclient

import "github.com/programme-lv/arena/srvcerror"

// Result is either a decoded value or the error the call ended with.
// Call sites switch on Ok() instead of probing optional envelope fields.
type Result[T any] struct {
	value T
	err   *srvcerror.Error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

func Fail[T any](err *srvcerror.Error) Result[T] {
	if err == nil {
		err = srvcerror.ErrInternal()
	}
	return Result[T]{err: err}
}

func (r Result[T]) Ok() bool {
	return r.err == nil
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() *srvcerror.Error {
	return r.err
}

// Get returns the usual Go pair. The error is a nil interface on success.
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		return r.value, r.err
	}
	return r.value, nil
}
