package scorearena

import (
	"math/rand"
	"testing"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
	"github.com/twozerofoureight/go-mcts2048/pkg/ntuple"
)

func fourTuplePattern() ntuple.Pattern {
	return ntuple.Pattern{{Y: 0, X: 0}, {Y: 0, X: 1}, {Y: 0, X: 2}, {Y: 0, X: 3}}
}

func freshEstimator() *ntuple.Estimator {
	return ntuple.New([]ntuple.Pattern{fourTuplePattern()}, 0.1, 1.0, 0)
}

func startingBoard(seed int64) board.Board {
	var b board.Board
	rng := rand.New(rand.NewSource(seed))
	board.SpawnRandom(&b, rng)
	board.SpawnRandom(&b, rng)
	return b
}

// Property #14's statistical comparison needs at least two Variants
// and a small but nonzero number of trials; this test keeps both
// cheap (low iteration counts, few trials) since it only checks the
// arena's own bookkeeping, not search quality.
func TestRunReportsOneResultPerVariantWithMatchingTrialCount(t *testing.T) {
	cfg := Config{
		Start:     startingBoard(1),
		Estimator: freshEstimator(),
		Variants: []Variant{
			{Name: "sequential", Threads: 1, Iterations: 5},
			{Name: "parallel", Threads: 4, Iterations: 5},
		},
		NGames: 3,
		Seed:   99,
	}

	summary := Run(cfg)
	if len(summary.Results) != len(cfg.Variants) {
		t.Fatalf("got %d results, want %d", len(summary.Results), len(cfg.Variants))
	}
	for i, r := range summary.Results {
		if r.Variant != cfg.Variants[i] {
			t.Errorf("result %d variant = %+v, want %+v", i, r.Variant, cfg.Variants[i])
		}
		if r.Trials != int(cfg.NGames) {
			t.Errorf("result %d trials = %d, want %d", i, r.Trials, cfg.NGames)
		}
		if len(r.Scores) != int(cfg.NGames) {
			t.Errorf("result %d has %d scores, want %d", i, len(r.Scores), cfg.NGames)
		}
		for _, s := range r.Scores {
			if s < 0 {
				t.Errorf("result %d has a negative score %d", i, s)
			}
		}
	}
	if summary.Baseline().Variant != summary.Results[0].Variant {
		t.Errorf("Baseline() did not return the first result")
	}
}

func TestResultDegraded(t *testing.T) {
	baseline := Result{Mean: 1000}
	better := Result{Mean: 1200}
	worse := Result{Mean: 700}
	borderline := Result{Mean: 900}

	if better.Degraded(baseline, 100) {
		t.Errorf("a higher mean should never be reported as degraded")
	}
	if !worse.Degraded(baseline, 100) {
		t.Errorf("a mean 300 below baseline should be degraded at tolerance 100")
	}
	if borderline.Degraded(baseline, 100) {
		t.Errorf("a mean exactly at the tolerance boundary should not be degraded")
	}
}
