package lib

import "fmt"

type wrappedError struct {
	sentinel error
	cause    error
}

// WrapError attaches cause to a sentinel error so that errors.Is matches both
func WrapError(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &wrappedError{sentinel: sentinel, cause: cause}
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.sentinel, e.cause)
}

func (e *wrappedError) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}
