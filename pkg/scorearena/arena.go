// Package scorearena runs many independent 2048 games concurrently
// under a set of MCTS configurations and compares their final-score
// statistics, one goroutine per trial.
package scorearena

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
	"github.com/twozerofoureight/go-mcts2048/pkg/env2048"
	"github.com/twozerofoureight/go-mcts2048/pkg/mcts2048"
	"github.com/twozerofoureight/go-mcts2048/pkg/ntuple"
)

// Variant names one {threads, iterations} MCTS configuration under
// trial. By convention the first Variant in Config.Variants is the
// single-worker (Threads: 1) baseline every other Variant is compared
// against.
type Variant struct {
	Name       string
	Threads    int
	Iterations int
}

// Config describes a full arena run: the common starting position and
// value estimator, the set of Variants to trial, how many independent
// games to play per Variant, and a base seed for reproducibility.
type Config struct {
	Start     board.Board
	Estimator *ntuple.Estimator
	Variants  []Variant
	NGames    uint
	Seed      int64
}

// Result holds one Variant's final-score statistics across every
// trial game played for it.
type Result struct {
	Variant Variant
	Trials  int
	Mean    float64
	StdDev  float64
	Scores  []int
}

// Degraded reports whether r's mean score falls more than tolerance
// below baseline's mean, the statistical check behind "more workers
// never meaningfully hurts playout quality."
func (r Result) Degraded(baseline Result, tolerance float64) bool {
	return r.Mean < baseline.Mean-tolerance
}

// Summary collects one Result per Config.Variants entry, in the same
// order. Results[0] is the baseline when Config.Variants follows the
// documented convention.
type Summary struct {
	Results []Result
}

// Baseline returns the first result, the conventional single-worker
// baseline every other Variant is compared against.
func (s Summary) Baseline() Result {
	return s.Results[0]
}

// Run plays cfg.NGames independent games to completion for every
// Variant in cfg.Variants — one goroutine per game — and reports each
// Variant's score statistics.
func Run(cfg Config) Summary {
	results := make([]Result, len(cfg.Variants))
	for i, v := range cfg.Variants {
		results[i] = runVariant(cfg, v, int64(i))
	}
	return Summary{Results: results}
}

// runVariant plays cfg.NGames games of v concurrently, one goroutine
// per game, accumulating sum and sum-of-squares atomically as each
// game finishes so the mean/stddev need no further synchronization
// once every goroutine has reported in.
func runVariant(cfg Config, v Variant, salt int64) Result {
	n := int(cfg.NGames)
	scores := make([]int64, n)
	var sum, sumSq int64

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			seed := cfg.Seed ^ (salt << 32) ^ int64(idx)
			score := int64(playOneGame(cfg.Start, cfg.Estimator, v, seed))
			scores[idx] = score
			atomic.AddInt64(&sum, score)
			atomic.AddInt64(&sumSq, score*score)
		}(i)
	}
	wg.Wait()

	mean := float64(sum) / float64(n)
	variance := float64(sumSq)/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	out := make([]int, n)
	for i, s := range scores {
		out[i] = int(s)
	}
	return Result{Variant: v, Trials: n, Mean: mean, StdDev: math.Sqrt(variance), Scores: out}
}

// playOneGame drives one full game from start to a terminal position
// using v's search configuration, returning the final score.
func playOneGame(start board.Board, estimator *ntuple.Estimator, v Variant, seed int64) int {
	env := env2048.New(rand.New(rand.NewSource(seed)))
	env.SetBoard(start)
	searchCfg := mcts2048.DefaultConfig().
		SetIterations(v.Iterations).
		SetThreads(v.Threads).
		SetSeed(seed)

	for !env.IsGameOver() {
		action, err := mcts2048.Action(env.GetBoard(), estimator, searchCfg)
		if err != nil {
			break
		}
		if _, err := env.Step(action); err != nil {
			break
		}
	}
	return env.GetScore()
}
