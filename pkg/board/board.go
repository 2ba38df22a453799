// Package board implements the pure 2048 board primitives: row
// compression, row merging, the four directional moves (reduced to
// move-left via rotation), game-over detection, and random tile
// spawning.
package board

import "math/rand"

// Size is the fixed side length of a 2048 board.
const Size = 4

// Action identifies one of the four directional moves.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// Board is a 4x4 grid of non-negative integers; 0 marks an empty
// cell, any other value is a power of two.
type Board [Size][Size]int

// Row is a single row (or, after rotation, column) of a Board.
type Row [Size]int

// Compress removes the zeros from row, left-packing the remaining
// values and padding the tail with zeros. Compress is idempotent:
// Compress(Compress(r)) == Compress(r).
func Compress(row Row) Row {
	var out Row
	i := 0
	for _, v := range row {
		if v != 0 {
			out[i] = v
			i++
		}
	}
	return out
}

// Merge performs a single left-to-right merge pass over an
// already-compressed row, doubling each left tile that equals its
// right neighbor and zeroing the neighbor. A tile produced by a merge
// is never eligible for a second merge in the same call, since the
// scan only ever looks one step ahead of its current position.
// Merge returns the merged row and the score gained from merges.
func Merge(row Row) (Row, int) {
	out := row
	gained := 0
	for i := 0; i < Size-1; i++ {
		if out[i] != 0 && out[i] == out[i+1] {
			out[i] *= 2
			gained += out[i]
			out[i+1] = 0
		}
	}
	return out, gained
}

// MoveLeft applies compress-merge-compress to every row of b in
// place, returning the total score gained and whether any row
// changed.
func MoveLeft(b *Board) (gained int, moved bool) {
	for i := range b {
		original := Row(b[i])
		row := Compress(original)
		var g int
		row, g = Merge(row)
		row = Compress(row)
		gained += g
		if row != original {
			moved = true
			b[i] = row
		}
	}
	return gained, moved
}

// MoveRight reduces to MoveLeft via a 180-degree rotation.
func MoveRight(b *Board) (gained int, moved bool) {
	Rotate180(b)
	gained, moved = MoveLeft(b)
	Rotate180(b)
	return gained, moved
}

// MoveUp reduces to MoveLeft via a 270-degree rotation, undone by a
// 90-degree rotation.
func MoveUp(b *Board) (gained int, moved bool) {
	Rotate270(b)
	gained, moved = MoveLeft(b)
	Rotate90(b)
	return gained, moved
}

// MoveDown reduces to MoveLeft via a 90-degree rotation, undone by a
// 270-degree rotation.
func MoveDown(b *Board) (gained int, moved bool) {
	Rotate90(b)
	gained, moved = MoveLeft(b)
	Rotate270(b)
	return gained, moved
}

// Move applies the given action in place and reports the score
// gained and whether the board changed.
func Move(b *Board, a Action) (gained int, moved bool, err error) {
	switch a {
	case Up:
		gained, moved = MoveUp(b)
	case Down:
		gained, moved = MoveDown(b)
	case Left:
		gained, moved = MoveLeft(b)
	case Right:
		gained, moved = MoveRight(b)
	default:
		return 0, false, ErrInvalidAction
	}
	return gained, moved, nil
}

// Rotate90 rotates b 90 degrees clockwise in place: (y,x) -> (x, N-1-y).
func Rotate90(b *Board) {
	var out Board
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			out[x][Size-1-y] = b[y][x]
		}
	}
	*b = out
}

// Rotate180 rotates b 180 degrees in place.
func Rotate180(b *Board) {
	Rotate90(b)
	Rotate90(b)
}

// Rotate270 rotates b 270 degrees clockwise (90 counter-clockwise) in place.
func Rotate270(b *Board) {
	Rotate90(b)
	Rotate90(b)
	Rotate90(b)
}

// EmptyCells returns the coordinates of every zero-valued cell.
func EmptyCells(b Board) [][2]int {
	cells := make([][2]int, 0, Size*Size)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b[y][x] == 0 {
				cells = append(cells, [2]int{y, x})
			}
		}
	}
	return cells
}

// SpawnRandom places a single random tile (value 4 with probability
// 0.1, else 2) on a uniformly-chosen empty cell of b, using rng. It
// is a no-op on a full board.
func SpawnRandom(b *Board, rng *rand.Rand) {
	empty := EmptyCells(*b)
	if len(empty) == 0 {
		return
	}
	cell := empty[rng.Intn(len(empty))]
	value := 2
	if rng.Intn(10) == 0 {
		value = 4
	}
	b[cell[0]][cell[1]] = value
}

// IsGameOver reports whether b has no empty cell and no two
// orthogonally adjacent cells share a value.
func IsGameOver(b Board) bool {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b[y][x] == 0 {
				return false
			}
			if y < Size-1 && b[y][x] == b[y+1][x] {
				return false
			}
			if x < Size-1 && b[y][x] == b[y][x+1] {
				return false
			}
		}
	}
	return true
}
