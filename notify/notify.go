package notify

// Event lines shared by the console, file and email providers.
const (
	taskCompletedMsg     = "Task completed"
	taskFailedMsg        = "Task failed"
	allTasksCompletedMsg = "All tasks completed"
)

// Provider receives batch lifecycle events. Methods are called from
// worker goroutines and must be safe for concurrent use.
type Provider interface {
	// TaskCompleted fires after a task finishes successfully.
	TaskCompleted()
	// TaskFailed fires after a task returns an error or panics.
	TaskFailed()
	// AllTasksCompleted fires once when a batch finishes with no
	// failures, including batches that had nothing left to run.
	AllTasksCompleted()
}

// NoopProvider swallows every event. It is the default.
type NoopProvider struct{}

func (NoopProvider) TaskCompleted()     {}
func (NoopProvider) TaskFailed()        {}
func (NoopProvider) AllTasksCompleted() {}
