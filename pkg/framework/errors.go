package framework

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShutdown is returned by a task step to request an orderly stop
// of the whole loop.
var ErrShutdown = errors.New("shutdown requested")

// TaskError wraps the error raised by a task step.
type TaskError struct {
	Task string
	Err  error
}

// Error implements error.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

// Unwrap returns the underlying error.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError aggregates multiple errors.
type AggregatedError struct {
	Errors []error
}

// Error implements error
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	msg := make([]string, len(e.Errors)+1)
	msg[0] = "Multiple errors:"
	for n, err := range e.Errors {
		msg[n+1] = err.Error()
	}
	return strings.Join(msg, "\n")
}

// Add adds errors to be aggregated. nil will be skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns aggregated error if any error happened.
// A single error is returned as is.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}

// Unwrap exposes the aggregated errors to errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}
