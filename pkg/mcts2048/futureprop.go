package mcts2048

import (
	"sync"
	"sync/atomic"
)

// FutureProp tracks a node's role in the speculative-expansion
// pipeline. Every decision and chance node embeds one.
//
// Future is true while a node has been produced by a worker but not
// yet consumed by the main thread's traversal. Working is true while
// the node is (or could become) a "boundary" that workers are still
// pre-expanding below. CurReserve/MaxReserve bound how many
// speculative children a worker is allowed to stage in the NextStep
// list before backing off. WorkerProcessing/WorkerFinished are read
// on the main thread's hot selection path without taking Mu, so they
// are atomics. Mu guards CurReserve, NextStep and PendingTask, and is
// taken around every update of Stats. Future and Working are set at
// construction and afterwards changed only by the main thread, not
// always under Mu.
type FutureProp struct {
	Future  bool
	Working bool

	WorkerProcessing atomic.Bool
	WorkerFinished   atomic.Bool

	CurReserve int
	MaxReserve int

	Reward float64
	Stats  Stats

	NextStep    *DecisionNode
	PendingTask *Task

	Mu sync.Mutex
}

// NewFutureProp builds a FutureProp for a node with the given initial
// future/working flags and worker-reservation capacity.
func NewFutureProp(future, working bool, maxReserve int) FutureProp {
	return FutureProp{
		Future:     future,
		Working:    working,
		MaxReserve: maxReserve,
		Stats:      NewStats(0),
	}
}

// RemainWork reports whether a worker may still stage another
// speculative child below this node (CurReserve < MaxReserve).
func (f *FutureProp) RemainWork() bool {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return f.CurReserve < f.MaxReserve
}
