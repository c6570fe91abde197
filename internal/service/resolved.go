package service

// Resolved is a soft-fail result. When a lookup fails the service substitutes
// a default, sets Fallback and keeps the cause in Err for logging; callers
// still get a usable Value.
type Resolved[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

func resolved[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v}
}

func fallback[T any](v T, err error) Resolved[T] {
	return Resolved[T]{Value: v, Fallback: true, Err: err}
}
