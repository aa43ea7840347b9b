package notify

import (
	"fmt"
	"os"
	"sync"
)

// DefaultLogFile receives events when no path is configured.
const DefaultLogFile = "logs.txt"

// FileProvider appends one line per event to a log file.
type FileProvider struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileProvider opens (creating if needed) the log file in append
// mode. An empty path means DefaultLogFile.
func NewFileProvider(path string) (*FileProvider, error) {
	if path == "" {
		path = DefaultLogFile
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification log %s: %w", path, err)
	}
	return &FileProvider{file: f}, nil
}

func (p *FileProvider) write(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.file, msg)
}

// TaskCompleted appends "Task completed".
func (p *FileProvider) TaskCompleted() {
	p.write(taskCompletedMsg)
}

// TaskFailed appends "Task failed".
func (p *FileProvider) TaskFailed() {
	p.write(taskFailedMsg)
}

// AllTasksCompleted appends "All tasks completed".
func (p *FileProvider) AllTasksCompleted() {
	p.write(allTasksCompletedMsg)
}

// Close closes the log file.
func (p *FileProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.Close()
}
