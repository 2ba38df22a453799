// Package ntuple implements the N-tuple state-value estimator: a sum
// of lookup-table features indexed by tile-log patterns and their 8
// dihedral symmetries, trained by TD(0) over afterstate transitions.
package ntuple

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
	"github.com/twozerofoureight/go-mcts2048/pkg/env2048"
)

// WeightTable maps a feature key to a learned weight. All 8 symmetric
// variants of a base pattern share one WeightTable: they are read and
// updated together, so a trained table is 8x more "experienced" per
// board seen than a naive per-symmetry table would be.
type WeightTable map[string]float64

func featureKey(f Feature) string {
	var sb strings.Builder
	for i, v := range f {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Experience records a single step of a trajectory for later replay:
// the pre-move board, the action taken, the immediate reward, the
// post-move-pre-spawn-irrelevant afterstate actually used by the
// value function (the post-spawn board observed next), and whether
// the episode ended on this step.
type Experience struct {
	BeforeState board.Board
	Action      board.Action
	Reward      int
	AfterState  board.Board
	Done        bool
}

// Estimator is the N-tuple value function: one WeightTable per base
// pattern, shared across that pattern's 8 symmetric variants.
type Estimator struct {
	patterns          []Pattern
	symmetricPatterns []Pattern // len == len(patterns)*8
	weights           []WeightTable
	learningRate      float64
	discountFactor    float64
	initValue         float64
}

// New builds an Estimator over the given base patterns. Patterns need
// not be disjoint or of uniform length.
func New(patterns []Pattern, learningRate, discountFactor, initValue float64) *Estimator {
	e := &Estimator{
		patterns:       append([]Pattern(nil), patterns...),
		learningRate:   learningRate,
		discountFactor: discountFactor,
		initValue:      initValue,
	}
	e.symmetricPatterns = make([]Pattern, 0, len(patterns)*8)
	for _, p := range e.patterns {
		e.symmetricPatterns = append(e.symmetricPatterns, GenerateSymmetricPatterns(p, board.Size)...)
	}
	e.weights = make([]WeightTable, len(e.patterns))
	for i := range e.weights {
		e.weights[i] = WeightTable{}
	}
	return e
}

// Value sums, over every symmetric pattern, the weight for its
// feature key on b (or InitValue if the key is unseen).
func (e *Estimator) Value(b board.Board) float64 {
	var total float64
	for i, pattern := range e.symmetricPatterns {
		base := i / 8
		key := featureKey(GetFeature(b, pattern))
		if w, ok := e.weights[base][key]; ok {
			total += w
		} else {
			total += e.initValue
		}
	}
	return total
}

func (e *Estimator) updateWeights(b board.Board, delta float64) {
	for i, pattern := range e.symmetricPatterns {
		base := i / 8
		key := featureKey(GetFeature(b, pattern))
		if w, ok := e.weights[base][key]; ok {
			e.weights[base][key] = w + e.learningRate*delta
		} else {
			e.weights[base][key] = e.initValue + e.learningRate*delta
		}
	}
}

// Learn performs one TD(0) update from a recorded Experience:
//
//	target := reward + (done ? 0 : discount * Value(afterstate))
//	delta  := target - Value(beforestate)
//
// and adds learningRate*delta to every weight contributing to
// Value(beforestate). Because the 8 symmetries of a pattern share its
// base table, a single board updates each key up to 8 times per call;
// this duplication is intentional and must not be deduplicated away.
func (e *Estimator) Learn(exp Experience) {
	current := e.Value(exp.BeforeState)
	target := float64(exp.Reward)
	if !exp.Done {
		target += e.discountFactor * e.Value(exp.AfterState)
	}
	delta := target - current
	e.updateWeights(exp.BeforeState, delta)
}

// ChooseAction picks, with probability epsilon, a uniformly random
// legal action, and otherwise the legal action maximizing immediate
// reward plus the discounted value of the resulting afterstate. It
// returns -1 if env currently has no legal action.
func (e *Estimator) ChooseAction(env *env2048.Env, epsilon float64, rng *rand.Rand) board.Action {
	legal := env.LegalActions()
	if len(legal) == 0 {
		return board.Action(-1)
	}
	if rng.Float64() < epsilon {
		return legal[rng.Intn(len(legal))]
	}

	best := board.Action(-1)
	bestValue := 0.0
	haveBest := false
	currentBoard := env.GetBoard()
	for _, a := range legal {
		v := e.simulateAction(currentBoard, a)
		if !haveBest || v > bestValue {
			bestValue = v
			best = a
			haveBest = true
		}
	}
	return best
}

// simulateAction evaluates reward + discount*Value(afterstate) for
// applying a to b, without disturbing any caller-visible state: it
// operates on a scratch Env.
func (e *Estimator) simulateAction(b board.Board, a board.Action) float64 {
	scratch := env2048.New(nil)
	scratch.SetBoard(b)
	scratch.SetScore(0)
	result, err := scratch.Step(a)
	if err != nil {
		return 0
	}
	return float64(result.Score) + e.discountFactor*e.Value(result.BeforeBoard)
}

// Train runs episodes full self-play episodes with an epsilon-greedy
// policy, learning in reverse trajectory order at the end of each
// episode, and returns the per-episode final score.
func (e *Estimator) Train(env *env2048.Env, episodes int, epsilonStart, epsilonEnd float64, decayEpisodes int, rng *rand.Rand) []int {
	scores := make([]int, 0, episodes)
	for episode := 0; episode < episodes; episode++ {
		epsilon := epsilonSchedule(epsilonStart, epsilonEnd, decayEpisodes, episode)

		env.Reset()
		beforeState := env.GetBoard()
		prevScore := 0
		var trajectory []Experience
		done := false

		for !done {
			action := e.ChooseAction(env, epsilon, rng)
			if action < 0 {
				break
			}
			result, err := env.Step(action)
			if err != nil {
				break
			}
			reward := result.Score - prevScore
			done = result.GameOver
			trajectory = append(trajectory, Experience{
				BeforeState: beforeState,
				Action:      action,
				Reward:      reward,
				AfterState:  result.BeforeBoard,
				Done:        done,
			})
			prevScore = result.Score
			beforeState = result.BeforeBoard
		}

		for i := len(trajectory) - 1; i >= 0; i-- {
			e.Learn(trajectory[i])
		}
		scores = append(scores, env.GetScore())
	}
	return scores
}

func epsilonSchedule(start, end float64, decayEpisodes, episode int) float64 {
	if decayEpisodes <= 0 || episode >= decayEpisodes {
		return end
	}
	frac := float64(episode) / float64(decayEpisodes)
	return start + frac*(end-start)
}
