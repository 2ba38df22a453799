package mcts2048

import (
	"github.com/twozerofoureight/go-mcts2048/pkg/board"
	"github.com/twozerofoureight/go-mcts2048/pkg/ntuple"
)

// Action runs a full search from b using estimator as the leaf value
// function and cfg's tuning parameters (pass nil for DefaultConfig),
// and returns the most-visited root action. This is the package's
// single public entry point — the equivalent of driving an MCTS
// instance through cfg.iterations RunIteration calls and reading off
// BestAction, with worker-pool teardown handled for the caller.
func Action(b board.Board, estimator *ntuple.Estimator, cfg *Config) (board.Action, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := New(b, estimator, cfg)
	for i := 0; i < cfg.iterations; i++ {
		m.RunIteration()
	}
	// Stop every worker before reading the root's children: a worker
	// may still be mid-append to a node's Children slice, which is
	// only safe to read once that node is no longer Working.
	m.Close()
	return m.BestAction()
}
