package host

import (
	"errors"
	"fmt"
)

// ErrMissingArgument is returned when a required input, such as the URL to
// classify, was not supplied.
var ErrMissingArgument = errors.New("missing argument")

// ErrCallerNotAllowed is returned when the launching extension is not in the
// allow-list.
var ErrCallerNotAllowed = errors.New("caller not allowed")

// SystemCallError is an operating system query that failed.
type SystemCallError struct {
	Op  string
	Err error
}

func (e *SystemCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SystemCallError) Unwrap() error { return e.Err }

// ClassificationError is a failure of the classification capability, or a
// result it returned that cannot be used.
type ClassificationError struct {
	URL string
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classifying %q: %v", e.URL, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }
