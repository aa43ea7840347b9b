// Package notify delivers batch lifecycle events to the outside world.
//
// The engine reports three events: a task completed, a task failed, and
// the whole batch completed. Providers turn those into console lines,
// file appends or emails. Implementations must tolerate concurrent
// calls; events for different tasks arrive from different workers.
package notify
