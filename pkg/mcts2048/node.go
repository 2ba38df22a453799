package mcts2048

import (
	"math"
	"math/rand"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
)

// node is implemented by *DecisionNode and *ChanceNode. It lets the
// pipeline walk a mixed decision/chance chain (e.g. backpropagation,
// fully-expanded checks) without a type switch at every step.
type node interface {
	nodeParent() node
	fullyExpandedFuture() bool
	allChildNonFuture() bool
	futureProp() *FutureProp
	stats() *Stats
}

// DecisionNode represents a board position at which the agent is
// about to choose a move.
type DecisionNode struct {
	Board          board.Board
	GameOver       bool
	UntriedActions []board.Action
	Parent         *ChanceNode
	Children       []*ChanceNode

	// Stats is the authoritative visit/reward bundle, updated only by
	// the main thread once this node is off the speculative frontier.
	Stats Stats
	st    FutureProp
}

// ChanceNode represents the afterstate: the board immediately after
// the agent's move, before the environment inserts a random tile.
type ChanceNode struct {
	Board       board.Board
	Action      board.Action
	MaxChildren int
	Parent      *DecisionNode
	Children    []*DecisionNode

	// Stats is the authoritative visit/reward bundle, updated only by
	// the main thread once this node is off the speculative frontier.
	Stats Stats
	st    FutureProp
}

// legalActionsOf returns the subset of {Up, Down, Left, Right} that
// change b, computed directly against pkg/board rather than through a
// stateful Env — every caller here only needs the pure predicate, not
// an Env's score/lastMoveValid bookkeeping.
func legalActionsOf(b board.Board) []board.Action {
	candidates := [...]board.Action{board.Up, board.Down, board.Left, board.Right}
	legal := make([]board.Action, 0, len(candidates))
	for _, a := range candidates {
		scratch := b
		if _, moved, err := board.Move(&scratch, a); err == nil && moved {
			legal = append(legal, a)
		}
	}
	return legal
}

// newDecisionNode builds a DecisionNode for b. cumulateScore is the
// path's running score at this node. The speculative (FutureProp)
// stats bundle always starts at cumulate_score 0 — it only ever
// tracks visit counts and rewards within a speculative subtree, never
// the authoritative path score, which lives solely on Stats.
func newDecisionNode(parent *ChanceNode, b board.Board, cumulateScore int, future, working bool) *DecisionNode {
	legal := legalActionsOf(b)
	d := &DecisionNode{
		Board:          b,
		GameOver:       len(legal) == 0,
		UntriedActions: legal,
		Parent:         parent,
		Stats:          NewStats(cumulateScore),
	}
	d.st = NewFutureProp(future, working, len(legal))
	return d
}

// newChanceNode builds a ChanceNode for the afterstate b reached by
// action from parent. maxReserve is capped at the node's MaxChildren,
// since a chance node can never have more distinct post-spawn children
// than (empty cells) x 2.
func newChanceNode(parent *DecisionNode, b board.Board, action board.Action, cumulateScore int, future, working bool, maxReserve int) *ChanceNode {
	maxChildren := 0
	for _, row := range b {
		for _, v := range row {
			if v == 0 {
				maxChildren += 2
			}
		}
	}
	if maxReserve > maxChildren {
		maxReserve = maxChildren
	}
	c := &ChanceNode{
		Board:       b,
		Action:      action,
		MaxChildren: maxChildren,
		Parent:      parent,
		Stats:       NewStats(cumulateScore),
	}
	c.st = NewFutureProp(future, working, maxReserve)
	return c
}

func (d *DecisionNode) nodeParent() node {
	if d.Parent == nil {
		return nil
	}
	return d.Parent
}

func (c *ChanceNode) nodeParent() node {
	if c.Parent == nil {
		return nil
	}
	return c.Parent
}

func (d *DecisionNode) fullyExpandedFuture() bool { return len(d.UntriedActions) == 0 }
func (c *ChanceNode) fullyExpandedFuture() bool   { return len(c.Children) == c.MaxChildren }

func (d *DecisionNode) allChildNonFuture() bool {
	if d.st.Future {
		return false
	}
	for _, child := range d.Children {
		if child.st.Future {
			return false
		}
	}
	return true
}

func (c *ChanceNode) allChildNonFuture() bool {
	if c.st.Future {
		return false
	}
	for _, child := range c.Children {
		if child.st.Future {
			return false
		}
	}
	return true
}

func (d *DecisionNode) futureProp() *FutureProp { return &d.st }
func (c *ChanceNode) futureProp() *FutureProp   { return &c.st }
func (d *DecisionNode) stats() *Stats           { return &d.Stats }
func (c *ChanceNode) stats() *Stats             { return &c.Stats }

// uctValue scores c for selection from its parent decision node. When
// isWorker is true, the speculative (FutureProp) statistics bundle is
// used instead of the authoritative one, since a worker below a
// boundary node must never touch the main thread's stats.
func (c *ChanceNode) uctValue(exploreC float64, isWorker bool) float64 {
	var parentStats, selfStats *Stats
	if isWorker {
		parentStats = &c.Parent.st.Stats
		selfStats = &c.st.Stats
	} else {
		parentStats = &c.Parent.Stats
		selfStats = &c.Stats
	}
	return selfStats.AvgReward() +
		(parentStats.MaxAvg-parentStats.MinAvg)*exploreC*
			math.Sqrt(math.Log(float64(parentStats.VisitCount))/float64(selfStats.VisitCount))
}

// selectChild returns the child ChanceNode of d with the highest UCT
// value, or nil if d has no children.
func (d *DecisionNode) selectChild(exploreC float64, isWorker bool) *ChanceNode {
	bestUCT := math.Inf(-1)
	var best *ChanceNode
	for _, child := range d.Children {
		uct := child.uctValue(exploreC, isWorker)
		if uct > bestUCT {
			bestUCT = uct
			best = child
		}
	}
	return best
}

// selectChild spawns a random tile onto c's afterstate and returns the
// matching DecisionNode child, descending into an existing one if its
// post-spawn board matches. If no existing child matches, only a
// worker goroutine may create one (the main thread must always find
// every spawn it could reach already expanded).
func (c *ChanceNode) selectChild(rng *rand.Rand, isWorker bool) (child *DecisionNode, expanded bool) {
	spawned := c.Board
	board.SpawnRandom(&spawned, rng)
	for _, existing := range c.Children {
		if spawned == existing.Board {
			return existing, false
		}
	}
	if !isWorker {
		panic("mcts2048: ChanceNode.selectChild reached an unexpanded spawn on the main thread")
	}
	return c.appendSpawnedChild(spawned), true
}

// expandChildWorker picks an untried action of d uniformly at random
// via rng, removes it from UntriedActions, and appends + returns the
// resulting ChanceNode's sole, immediately-expanded DecisionNode
// child (spawning one random tile to produce it). Only ever called by
// a worker goroutine, or by the main thread's sequential fallback.
func (d *DecisionNode) expandChildWorker(rng *rand.Rand) *DecisionNode {
	idx := rng.Intn(len(d.UntriedActions))
	action := d.UntriedActions[idx]
	d.UntriedActions = append(d.UntriedActions[:idx], d.UntriedActions[idx+1:]...)

	afterState := d.Board
	gained, _, err := board.Move(&afterState, action)
	if err != nil {
		panic(err)
	}
	child := newChanceNode(d, afterState, action, gained+d.Stats.CumulateScore, true, false, 10)
	d.Children = append(d.Children, child)
	return child.expandChildWorker(rng)
}

// expandChildWorker creates c's newest DecisionNode child by spawning
// one random tile onto c's afterstate.
func (c *ChanceNode) expandChildWorker(rng *rand.Rand) *DecisionNode {
	spawned := c.Board
	board.SpawnRandom(&spawned, rng)
	return c.appendSpawnedChild(spawned)
}

func (c *ChanceNode) appendSpawnedChild(spawned board.Board) *DecisionNode {
	child := newDecisionNode(c, spawned, c.Stats.CumulateScore, true, false)
	c.Children = append(c.Children, child)
	return child
}
