package engine

import (
	"fmt"
	"strings"
)

// TaskError records one task's failure.
type TaskError struct {
	// Index is the task's submission position within its run.
	Index int
	// ID is the engine-assigned identifier, "task-N".
	ID string
	// Err is what the task returned, or the recovered panic.
	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// AggregateError bundles every failure of a run, in submission order.
type AggregateError struct {
	Failures []*TaskError
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	b.WriteString("one or more tasks failed:")
	for _, f := range e.Failures {
		b.WriteString("\n\t")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}
