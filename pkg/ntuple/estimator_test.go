package ntuple

import (
	"math"
	"strings"
	"testing"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
)

func rowPattern() Pattern {
	return Pattern{{Y: 0, X: 0}, {Y: 0, X: 1}, {Y: 0, X: 2}, {Y: 0, X: 3}}
}

// Property #6: Value must be invariant under any of the 8 dihedral
// symmetries applied to the board, since every symmetric variant of a
// pattern shares one table.
func TestValueSymmetryInvariance(t *testing.T) {
	e := New([]Pattern{rowPattern()}, 0.1, 1.0, 0)
	b := board.Board{
		{2, 4, 0, 0},
		{0, 8, 0, 0},
		{0, 0, 16, 0},
		{0, 0, 0, 2},
	}
	// Train a bit so the table is non-trivial.
	e.updateWeights(b, 1.0)

	base := e.Value(b)

	rotated := b
	board.Rotate90(&rotated)
	if got := e.Value(rotated); math.Abs(got-base) > 1e-9 {
		t.Errorf("Value not rotation invariant: base=%v rotated=%v", base, got)
	}

	reflected := reflectBoard(b)
	if got := e.Value(reflected); math.Abs(got-base) > 1e-9 {
		t.Errorf("Value not reflection invariant: base=%v reflected=%v", base, got)
	}
}

func reflectBoard(b board.Board) board.Board {
	var out board.Board
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			out[y][board.Size-1-x] = b[y][x]
		}
	}
	return out
}

// Property #7: a Learn call on a non-terminal experience with a
// positive target above the current estimate increases Value at the
// before-state.
func TestLearnMovesValueTowardTarget(t *testing.T) {
	e := New([]Pattern{rowPattern()}, 0.5, 1.0, 0)
	before := board.Board{{2, 2, 0, 0}}
	after := board.Board{{4, 0, 0, 0}}

	initial := e.Value(before)
	e.Learn(Experience{BeforeState: before, Reward: 10, AfterState: after, Done: false})
	updated := e.Value(before)

	if updated <= initial {
		t.Errorf("expected Value(before) to increase toward a positive target: initial=%v updated=%v", initial, updated)
	}
}

// Property #8: SaveWeights followed by LoadWeights into a fresh
// Estimator over the same patterns reproduces identical Values.
func TestSaveLoadRoundTrip(t *testing.T) {
	e := New([]Pattern{rowPattern()}, 0.1, 1.0, 0)
	boards := []board.Board{
		{{2, 4, 8, 16}},
		{{0, 0, 2, 2}},
	}
	for _, b := range boards {
		e.updateWeights(b, 3.0)
	}

	var buf strings.Builder
	if err := e.SaveWeights(&buf); err != nil {
		t.Fatalf("SaveWeights: %v", err)
	}

	loaded := New([]Pattern{rowPattern()}, 0.1, 1.0, 0)
	if err := loaded.LoadWeights(strings.NewReader(buf.String()), nil); err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}

	for _, b := range boards {
		want := e.Value(b)
		got := loaded.Value(b)
		if math.Abs(want-got) > 1e-9 {
			t.Errorf("round-trip mismatch for %v: want %v got %v", b, want, got)
		}
	}
}

// A single pattern-0 entry of all-zero
// feature with weight 1.5 and InitValue 0 values the empty board at
// 8 * 1.5, since every one of the pattern's 8 symmetric variants reads
// the same all-zero feature off an empty board.
func TestScenarioS5(t *testing.T) {
	e := New([]Pattern{rowPattern()}, 0.1, 1.0, 0)
	data := "Pattern 0:\n0 0 0 0 ; 1.5\n"
	if err := e.LoadWeights(strings.NewReader(data), nil); err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}

	var empty board.Board
	got := e.Value(empty)
	want := 8 * 1.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Value(empty) = %v, want %v", got, want)
	}
}

func TestLoadWeightsSkipsUnknownPatternIndex(t *testing.T) {
	e := New([]Pattern{rowPattern()}, 0.1, 1.0, 0)
	data := "Pattern 0:\n0 0 0 0 ; 2\n\nPattern 7:\n1 1 1 1 ; 99\n"
	var warnings strings.Builder
	if err := e.LoadWeights(strings.NewReader(data), &warnings); err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if warnings.Len() == 0 {
		t.Error("expected a warning for the unknown pattern index")
	}
	var empty board.Board
	if got, want := e.Value(empty), 8*2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Value(empty) = %v, want %v", got, want)
	}
}

func TestFeatureKeyOrderSensitive(t *testing.T) {
	a := Feature{1, 2, 3}
	b := Feature{3, 2, 1}
	if featureKey(a) == featureKey(b) {
		t.Error("featureKey must distinguish different orderings")
	}
}
