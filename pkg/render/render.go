// Package render draws a board.Board to an ANSI true-color string for
// terminal display.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
)

// tileColor is the RGB foreground color each tile value is drawn in,
// carried over from the original terminal renderer's per-value table.
var tileColor = map[int]termenv.RGBColor{
	0:    "#808080",
	2:    "#eee4da",
	4:    "#ede0c8",
	8:    "#f2b179",
	16:   "#f59563",
	32:   "#f67c5f",
	64:   "#f65e3b",
	128:  "#edcf72",
	256:  "#edcc61",
	512:  "#edc850",
	1024: "#edc53f",
	2048: "#edc22e",
}

// largeTileColor is used for any tile past 2048, matching the
// original's catch-all "larger numbers" branch.
const largeTileColor = termenv.RGBColor("#3c3c3c")

const scoreColor = termenv.RGBColor("#ffffff")

func colorOf(tile int) termenv.RGBColor {
	if c, ok := tileColor[tile]; ok {
		return c
	}
	return largeTileColor
}

// RenderBoard draws b as a bold, tab-separated, true-color grid
// followed by a "Score: N" line.
func RenderBoard(b board.Board, score int) string {
	var sb strings.Builder
	for _, row := range b {
		for _, tile := range row {
			styled := termenv.String(strconv.Itoa(tile)).Foreground(colorOf(tile)).Bold()
			fmt.Fprintf(&sb, "%s\t", styled)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintln(&sb, termenv.String(fmt.Sprintf("Score: %d", score)).Foreground(scoreColor).Bold())
	return sb.String()
}
