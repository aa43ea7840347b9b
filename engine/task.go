package engine

import (
	"cmp"
	"context"
	"fmt"
)

// Priority orders queued tasks; lower values run first. The zero value
// is treated as PriorityHigh.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// String implements fmt.Stringer for log output.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// TaskFunc is one unit of work. The context carries cancellation and a
// task-tagged logger.
type TaskFunc[T any] func(ctx context.Context) (T, error)

// task pairs a function with its queue position. The submission index
// breaks priority ties and names the task's slot in the result slice.
type task[T any] struct {
	fn       TaskFunc[T]
	priority Priority
	index    int
	id       string
}

func (a *task[T]) Cmp(b *task[T]) int {
	if c := cmp.Compare(a.priority, b.priority); c != 0 {
		return c
	}
	return cmp.Compare(a.index, b.index)
}
