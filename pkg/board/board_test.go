package board

import (
	"math/rand"
	"testing"
)

func TestCompressIdempotent(t *testing.T) {
	rows := []Row{
		{2, 0, 2, 0},
		{0, 0, 0, 0},
		{4, 4, 4, 4},
		{0, 2, 0, 4},
	}
	for _, r := range rows {
		once := Compress(r)
		twice := Compress(once)
		if once != twice {
			t.Errorf("Compress not idempotent for %v: %v != %v", r, once, twice)
		}
	}
}

func TestMergeSingleMergePerTile(t *testing.T) {
	// A run of four equal tiles should only produce two merged pairs,
	// never a cascade within the same pass.
	row := Row{2, 2, 2, 2}
	merged, gained := Merge(row)
	want := Row{4, 0, 4, 0}
	if merged != want {
		t.Errorf("Merge(%v) = %v, want %v", row, merged, want)
	}
	if gained != 8 {
		t.Errorf("Merge(%v) gained = %d, want 8", row, gained)
	}
}

// Two equal tiles already adjacent after a left move merge once.
func TestScenarioS1(t *testing.T) {
	b := Board{
		{2, 2, 0, 0},
	}
	gained, moved := MoveLeft(&b)
	if !moved {
		t.Fatal("expected move to be valid")
	}
	want := Row{4, 0, 0, 0}
	if b[0] != want {
		t.Errorf("row 0 = %v, want %v", b[0], want)
	}
	if gained != 4 {
		t.Errorf("gained = %d, want 4", gained)
	}
}

// Three equal tiles in a row merge only the leading pair, left-to-right.
func TestScenarioS2(t *testing.T) {
	b := Board{
		{2, 2, 2, 0},
	}
	gained, moved := MoveLeft(&b)
	if !moved {
		t.Fatal("expected move to be valid")
	}
	want := Row{4, 2, 0, 0}
	if b[0] != want {
		t.Errorf("row 0 = %v, want %v", b[0], want)
	}
	if gained != 4 {
		t.Errorf("gained = %d, want 4", gained)
	}
}

// A vertical merge along a column, driven through the rotate-reduce-to-left path.
func TestScenarioS4(t *testing.T) {
	b := Board{
		{2, 2, 0, 0},
		{2, 2, 0, 0},
	}
	gained, moved := MoveUp(&b)
	if !moved {
		t.Fatal("expected move to be valid")
	}
	wantRow0 := Row{4, 4, 0, 0}
	wantRow1 := Row{0, 0, 0, 0}
	if b[0] != wantRow0 || b[1] != wantRow1 {
		t.Errorf("board after Up = %v, want rows %v / %v", b, wantRow0, wantRow1)
	}
	if gained != 8 {
		t.Errorf("gained = %d, want 8", gained)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	b := Board{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	rotated := b
	Rotate90(&rotated)
	Rotate90(&rotated)
	Rotate90(&rotated)
	Rotate90(&rotated)
	if rotated != b {
		t.Errorf("four Rotate90 calls did not round-trip: %v != %v", rotated, b)
	}

	oneEighty := b
	Rotate180(&oneEighty)
	ninetyTwice := b
	Rotate90(&ninetyTwice)
	Rotate90(&ninetyTwice)
	if oneEighty != ninetyTwice {
		t.Errorf("Rotate180 != Rotate90+Rotate90")
	}

	threeNineties := b
	Rotate90(&threeNineties)
	Rotate90(&threeNineties)
	Rotate90(&threeNineties)
	twoSeventy := b
	Rotate270(&twoSeventy)
	if threeNineties != twoSeventy {
		t.Errorf("Rotate90 three times != Rotate270")
	}
}

func TestIsGameOverMatchesFullNoMerge(t *testing.T) {
	// Fully filled board with no equal orthogonal neighbors: no legal move remains.
	b := Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
	if !IsGameOver(b) {
		t.Error("expected game over on fully packed checkerboard")
	}
}

func TestIsGameOverFalseWithEmptyCell(t *testing.T) {
	var b Board
	if IsGameOver(b) {
		t.Error("empty board must not be game over")
	}
}

func TestSpawnRandomFillsOneEmptyCell(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var b Board
	SpawnRandom(&b, rng)
	nonZero := 0
	for _, row := range b {
		for _, v := range row {
			if v != 0 {
				nonZero++
				if v != 2 && v != 4 {
					t.Errorf("spawned tile has invalid value %d", v)
				}
			}
		}
	}
	if nonZero != 1 {
		t.Errorf("expected exactly one non-zero tile, got %d", nonZero)
	}
}

func TestSpawnRandomNoOpOnFullBoard(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
	before := b
	SpawnRandom(&b, rng)
	if b != before {
		t.Error("SpawnRandom must be a no-op on a full board")
	}
}

func TestMoveInvalidAction(t *testing.T) {
	var b Board
	if _, _, err := Move(&b, Action(99)); err == nil {
		t.Error("expected ErrInvalidAction for out-of-range action")
	}
}
