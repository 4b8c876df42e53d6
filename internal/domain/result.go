package domain

// Status discriminates the variants of Result.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is one emission of a repository stream: Loading, Success with Data,
// or Error with Err.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Loading returns a loading result.
func Loading[T any]() Result[T] {
	return Result[T]{Status: StatusLoading}
}

// Success returns a successful result carrying v.
func Success[T any](v T) Result[T] {
	return Result[T]{Status: StatusSuccess, Data: v}
}

// Failure returns an error result.
func Failure[T any](err error) Result[T] {
	return Result[T]{Status: StatusError, Err: err}
}

func (r Result[T]) IsLoading() bool { return r.Status == StatusLoading }
func (r Result[T]) IsSuccess() bool { return r.Status == StatusSuccess }
func (r Result[T]) IsError() bool   { return r.Status == StatusError }

// Value returns the data and true for a successful result.
func (r Result[T]) Value() (T, bool) {
	if r.Status != StatusSuccess {
		var zero T
		return zero, false
	}
	return r.Data, true
}
