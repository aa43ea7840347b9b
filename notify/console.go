package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleProvider writes one line per event to a writer, standard output
// by default.
type ConsoleProvider struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleProvider writes events to standard output.
func NewConsoleProvider() *ConsoleProvider {
	return NewWriterProvider(os.Stdout)
}

// NewWriterProvider writes events to w.
func NewWriterProvider(w io.Writer) *ConsoleProvider {
	return &ConsoleProvider{out: w}
}

func (p *ConsoleProvider) write(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, msg)
}

// TaskCompleted prints "Task completed".
func (p *ConsoleProvider) TaskCompleted() {
	p.write(taskCompletedMsg)
}

// TaskFailed prints "Task failed".
func (p *ConsoleProvider) TaskFailed() {
	p.write(taskFailedMsg)
}

// AllTasksCompleted prints "All tasks completed".
func (p *ConsoleProvider) AllTasksCompleted() {
	p.write(allTasksCompletedMsg)
}
