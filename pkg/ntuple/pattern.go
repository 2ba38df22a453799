package ntuple

import "github.com/twozerofoureight/go-mcts2048/pkg/board"

// Coordinate is a single (row, col) board location.
type Coordinate struct {
	Y, X int
}

// Pattern is an ordered sequence of board coordinates; a pattern of
// length n defines an n-tuple feature.
type Pattern []Coordinate

// Feature is the sequence of tile-log indices read from a board at a
// pattern's coordinates: TileToIndex(0) == 0, otherwise log2(tile).
type Feature []int

// TileToIndex maps a board cell value to its feature index: 0 stays
// 0, any power of two maps to its base-2 logarithm.
func TileToIndex(tile int) int {
	if tile == 0 {
		return 0
	}
	idx := 0
	for v := tile; v > 1; v >>= 1 {
		idx++
	}
	return idx
}

// GetFeature reads pattern's feature out of b.
func GetFeature(b board.Board, pattern Pattern) Feature {
	f := make(Feature, len(pattern))
	for i, c := range pattern {
		f[i] = TileToIndex(b[c.Y][c.X])
	}
	return f
}

// RotatePattern90 maps each coordinate (y,x) -> (x, N-1-y), matching
// board.Rotate90's clockwise rotation.
func RotatePattern90(p Pattern, n int) Pattern {
	out := make(Pattern, len(p))
	for i, c := range p {
		out[i] = Coordinate{Y: c.X, X: n - 1 - c.Y}
	}
	return out
}

// ReflectPattern mirrors each coordinate horizontally: (y,x) -> (y, N-1-x).
func ReflectPattern(p Pattern, n int) Pattern {
	out := make(Pattern, len(p))
	for i, c := range p {
		out[i] = Coordinate{Y: c.Y, X: n - 1 - c.X}
	}
	return out
}

// GenerateSymmetricPatterns returns the 8-element dihedral orbit of
// pattern: 4 rotations, each paired with its horizontal reflection.
func GenerateSymmetricPatterns(pattern Pattern, n int) []Pattern {
	orbit := make([]Pattern, 0, 8)
	p := pattern
	for i := 0; i < 4; i++ {
		orbit = append(orbit, p, ReflectPattern(p, n))
		p = RotatePattern90(p, n)
	}
	return orbit
}
