// Package env2048 wraps the 2048 board primitives (pkg/board) into a
// small stateful environment: a board, a running score, and the
// validity of the last applied move. It is the leaf dependency
// stepped through by both the value estimator's training loop and the
// MCTS search.
package env2048

import (
	"math/rand"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
)

// StepResult is returned by Env.Step: the post-spawn board (named
// BeforeBoard for historical reasons — it is in fact the new
// authoritative board, already past the random spawn), the cumulative
// score, and whether the resulting position is terminal.
type StepResult struct {
	BeforeBoard board.Board
	Score       int
	GameOver    bool
}

// Env holds a 2048 board, the cumulative score, and whether the most
// recent Step produced a change to the board.
type Env struct {
	b             board.Board
	score         int
	lastMoveValid bool
	rng           *rand.Rand
}

// New creates an Env with its own random source and an empty,
// unstarted board. Call Reset before using it.
func New(rng *rand.Rand) *Env {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Env{rng: rng, lastMoveValid: true}
}

// Reset clears the board and score and spawns two random tiles.
func (e *Env) Reset() board.Board {
	e.b = board.Board{}
	e.score = 0
	e.lastMoveValid = true
	board.SpawnRandom(&e.b, e.rng)
	board.SpawnRandom(&e.b, e.rng)
	return e.b
}

// Step applies action a. If the move changes the board, a single
// random tile is spawned afterward. The returned board is the
// post-spawn board. Actions outside {Up, Down, Left, Right} are a
// caller error and are surfaced immediately via ErrInvalidAction.
func (e *Env) Step(a board.Action) (StepResult, error) {
	gained, moved, err := board.Move(&e.b, a)
	if err != nil {
		return StepResult{}, err
	}
	e.lastMoveValid = moved
	e.score += gained
	if moved {
		board.SpawnRandom(&e.b, e.rng)
	}
	return StepResult{
		BeforeBoard: e.b,
		Score:       e.score,
		GameOver:    board.IsGameOver(e.b),
	}, nil
}

// IsMoveLegal reports whether action a changes the board, WITHOUT
// leaving any observable side effect: the board and score are always
// restored before returning, regardless of whether the move was
// legal.
func (e *Env) IsMoveLegal(a board.Action) (bool, error) {
	savedBoard := e.b
	savedScore := e.score
	_, moved, err := board.Move(&e.b, a)
	e.b = savedBoard
	e.score = savedScore
	if err != nil {
		return false, err
	}
	return moved, nil
}

// LegalActions returns the subset of {Up, Down, Left, Right} that are
// currently legal.
func (e *Env) LegalActions() []board.Action {
	actions := []board.Action{board.Up, board.Down, board.Left, board.Right}
	legal := make([]board.Action, 0, len(actions))
	for _, a := range actions {
		ok, _ := e.IsMoveLegal(a)
		if ok {
			legal = append(legal, a)
		}
	}
	return legal
}

// IsGameOver reports whether no cell is empty and no two adjacent
// cells share a value. For any board holding at least one tile this is
// equivalent to LegalActions() being empty; the all-zero board is the
// exception (no legal action, yet not game over).
func (e *Env) IsGameOver() bool {
	return board.IsGameOver(e.b)
}

// GetBoard returns the current board.
func (e *Env) GetBoard() board.Board { return e.b }

// SetBoard installs a new board directly, used by search to restore a
// scratch environment to an arbitrary tree position.
func (e *Env) SetBoard(b board.Board) { e.b = b }

// GetScore returns the current cumulative score.
func (e *Env) GetScore() int { return e.score }

// SetScore installs a new cumulative score directly.
func (e *Env) SetScore(score int) { e.score = score }

// IsLastMoveValid reports whether the most recent Step changed the
// board.
func (e *Env) IsLastMoveValid() bool { return e.lastMoveValid }

// Rand returns the environment's private random source, so callers
// (e.g. a rollout loop) can drive further randomness deterministically.
func (e *Env) Rand() *rand.Rand { return e.rng }
