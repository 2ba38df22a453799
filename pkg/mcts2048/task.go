package mcts2048

import "sync/atomic"

// Task is a unit of speculative work handed to the worker pool: "keep
// expanding below futureRoot until it is fully expanded or its
// reservation buffer is full." Cancel is set when a newer task
// supersedes this one (e.g. the main thread consumed futureRoot's
// reservation and re-enqueued fresh work) so a worker that picks up a
// stale task from the queue can bail out immediately.
type Task struct {
	IsChance   bool
	FutureRoot node
	cancel     atomic.Bool
}

func newTask(futureRoot node, isChance bool) *Task {
	return &Task{IsChance: isChance, FutureRoot: futureRoot}
}

// Cancel marks t as superseded.
func (t *Task) Cancel() { t.cancel.Store(true) }

// Cancelled reports whether t has been superseded.
func (t *Task) Cancelled() bool { return t.cancel.Load() }
