package sources

import "errors"

var ErrContentUnavailable = errors.New("content and map of this source are not available (only Size is supported)")

var ErrMissingUpdateHash = errors.New("a source-like object with a Map method must also provide an UpdateHash method")

// Misusing the API is a programming error, so it panics with a usageError.
// Package boundaries that report to users convert these back into errors
// with Catch.
type usageError struct {
	err error
}

func (e usageError) Error() string {
	return e.err.Error()
}

func (e usageError) Unwrap() error {
	return e.err
}

func panicWithUsageError(err error) {
	panic(usageError{err})
}

// Catch runs fn and returns the usage error it panicked with, if any. Any
// other panic is propagated.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if usage, ok := r.(usageError); ok {
				err = usage.err
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
