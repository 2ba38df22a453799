package mcts2048

import (
	"math"
	"math/rand"
	"runtime"

	"github.com/twozerofoureight/go-mcts2048/pkg/board"
	"github.com/twozerofoureight/go-mcts2048/pkg/env2048"
	"github.com/twozerofoureight/go-mcts2048/pkg/ntuple"
)

// MCTS runs one search from a fixed root board. Create one with New,
// call RunIteration in a loop, then Close, then read off BestAction.
type MCTS struct {
	root      *DecisionNode
	estimator *ntuple.Estimator
	pool      *Pool
	cfg       *Config

	mainRng *rand.Rand
	mainEnv *env2048.Env
}

// New builds a fresh search tree rooted at b and starts cfg.threads
// worker goroutines pre-expanding below the root.
func New(b board.Board, estimator *ntuple.Estimator, cfg *Config) *MCTS {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &MCTS{
		estimator: estimator,
		cfg:       cfg,
		mainRng:   rand.New(rand.NewSource(cfg.seed)),
		mainEnv:   env2048.New(rand.New(rand.NewSource(cfg.seed))),
	}
	m.root = newDecisionNode(nil, b, 0, false, true)
	m.pool = newPool(cfg.threads, cfg.seed, m.runWorker)
	m.enqueueTaskMain(m.root, false)
	return m
}

// Close stops the worker pool. Callers must call this once they are
// done running iterations and before BestAction, which reads the
// root's children that a live worker may still be appending to.
func (m *MCTS) Close() {
	m.pool.Stop()
}

// RunIteration performs one select-expand-rollout-backpropagate cycle.
func (m *MCTS) RunIteration() {
	futureRoot, leaf := m.selectAndExpandMain()
	if leaf == nil {
		return
	}
	if !leaf.st.Future {
		leaf.st.Reward = m.rolloutWorker(leaf, m.mainRng, m.mainEnv)
		m.backpropagateWorker(futureRoot, leaf, leaf.st.Reward)
	}
	m.backpropagateMain(leaf, leaf.st.Reward)
}

// BestAction returns the root's child action with the most visits
// (the standard robust-child selection), or an error if no root child
// has been visited by the main thread (game already over, or zero
// iterations were run). Children that only workers have attached, with
// an authoritative VisitCount of 0, are never returned.
func (m *MCTS) BestAction() (board.Action, error) {
	mostVisits := 0
	best := board.Action(-1)
	for _, child := range m.root.Children {
		if child.Stats.VisitCount > mostVisits {
			mostVisits = child.Stats.VisitCount
			best = child.Action
		}
	}
	if best < 0 {
		return 0, errNoAction
	}
	return best, nil
}

// stopWorkingMain must be called with futureRoot's mutex held. It
// reports whether futureRoot's boundary is fully drained (no pending
// reservation, worker done), clearing Working and cancelling any
// still-pending task if so.
func (m *MCTS) stopWorkingMain(futureRoot node) bool {
	fp := futureRoot.futureProp()
	if fp.CurReserve > 0 || !fp.WorkerFinished.Load() {
		return false
	}
	if fp.NextStep != nil {
		panic("mcts2048: stopWorkingMain: next_step must be nil once worker_finished")
	}
	if fp.PendingTask != nil {
		fp.PendingTask.Cancel()
	}
	fp.Working = false
	return true
}

// enqueueTaskMain schedules futureRoot for further speculative
// expansion, cancelling whatever task it previously had pending.
func (m *MCTS) enqueueTaskMain(futureRoot node, isChance bool) {
	fp := futureRoot.futureProp()
	if fp.WorkerFinished.Load() {
		return
	}
	task := newTask(futureRoot, isChance)
	fp.Mu.Lock()
	if fp.PendingTask != nil {
		fp.PendingTask.Cancel()
	}
	fp.PendingTask = task
	fp.Mu.Unlock()
	m.pool.Enqueue(task)
}

// getNextMain pops the next reserved DecisionNode from futureRoot's
// speculative queue, falling back to a synchronous expansion on the
// main thread if the queue is empty and no worker is mid-expansion.
func (m *MCTS) getNextMain(futureRoot node, isChance bool) *DecisionNode {
	fp := futureRoot.futureProp()
	for {
		fp.Mu.Lock()
		if fp.NextStep != nil {
			next := fp.NextStep
			fp.NextStep = next.st.NextStep
			next.st.NextStep = nil
			next.st.Future = true
			fp.CurReserve--
			if m.stopWorkingMain(futureRoot) || fp.PendingTask != nil || fp.WorkerProcessing.Load() {
				fp.Mu.Unlock()
				return next
			}
			fp.Mu.Unlock()
			m.enqueueTaskMain(futureRoot, isChance)
			return next
		}
		if fp.WorkerProcessing.Load() {
			fp.Mu.Unlock()
			runtime.Gosched()
			continue
		}
		if fp.PendingTask == nil {
			if futureRoot.fullyExpandedFuture() {
				fp.WorkerFinished.Store(true)
				fp.Working = false
				fp.Mu.Unlock()
				return nil
			}
			fp.Mu.Unlock()
			panic("mcts2048: getNextMain: boundary node has neither a pending task nor remaining work")
		}
		fp.PendingTask.Cancel()
		fp.Mu.Unlock()
		break
	}

	var ret *DecisionNode
	if isChance {
		ret = m.expandWorkerC(futureRoot.(*ChanceNode), m.mainRng)
	} else {
		ret = m.expandWorkerD(futureRoot.(*DecisionNode), m.mainRng)
	}
	if ret != nil {
		ret.st.Future = false
	}
	fp.Mu.Lock()
	if futureRoot.fullyExpandedFuture() {
		fp.WorkerFinished.Store(true)
	}
	if m.stopWorkingMain(futureRoot) {
		fp.Mu.Unlock()
		return ret
	}
	fp.Mu.Unlock()
	m.enqueueTaskMain(futureRoot, isChance)
	return ret
}

// postNextMain propagates the "working" boundary one level down from
// futureRoot into its children once futureRoot itself has stopped
// being a boundary.
func (m *MCTS) postNextMain(futureRoot node, isChance bool) {
	if futureRoot.futureProp().Working {
		return
	}
	if isChance {
		for _, child := range futureRoot.(*ChanceNode).Children {
			m.postNextChild(child, isChance)
		}
		return
	}
	for _, child := range futureRoot.(*DecisionNode).Children {
		m.postNextChild(child, isChance)
	}
}

func (m *MCTS) postNextChild(child node, parentIsChance bool) {
	fully := child.fullyExpandedFuture()
	if fully {
		child.futureProp().WorkerFinished.Store(true)
	}
	nonFuture := child.allChildNonFuture()
	child.futureProp().Working = !(fully && nonFuture)
	if !fully {
		m.enqueueTaskMain(child, !parentIsChance)
	} else if !child.futureProp().Working {
		m.postNextMain(child, !parentIsChance)
	}
}

// selectAndExpandMain walks from the root picking the best-UCT chance
// child then descending through a random spawn, stopping either at a
// terminal decision node or at the first boundary node still being
// worked on — in which case it hands off to getNextMain/postNextMain
// to consume the speculative pipeline. It returns the boundary node
// the returned leaf's speculative stats are relative to, and the leaf
// itself.
func (m *MCTS) selectAndExpandMain() (node, *DecisionNode) {
	cursorD := m.root
	for !cursorD.GameOver && !cursorD.st.Working {
		cursorC := cursorD.selectChild(m.cfg.explorationConstant, false)
		if cursorC == nil {
			return nil, nil
		}
		if cursorC.st.Working {
			next := m.getNextMain(cursorC, true)
			m.postNextMain(cursorC, true)
			if next != nil {
				return cursorC, next
			}
		}
		child, _ := cursorC.selectChild(m.mainRng, false)
		cursorD = child
	}
	if cursorD.GameOver {
		return cursorD, cursorD
	}
	ret := m.getNextMain(cursorD, false)
	m.postNextMain(cursorD, false)
	return cursorD, ret
}

// expandWorkerD expands one untried action of root uniformly at
// random. root must not already be fully expanded.
func (m *MCTS) expandWorkerD(root *DecisionNode, rng *rand.Rand) *DecisionNode {
	if len(root.UntriedActions) == 0 {
		panic("mcts2048: expandWorkerD requires a non-fully-expanded decision node")
	}
	if root.GameOver {
		return root
	}
	return root.expandChildWorker(rng)
}

// expandWorkerC descends from root through a random spawn, continuing
// through the tree via UCT selection whenever it lands on an
// already-fully-expanded decision node, until it either reaches a
// terminal node, a freshly-spawned node, or a decision node with an
// untried action to expand.
func (m *MCTS) expandWorkerC(root *ChanceNode, rng *rand.Rand) *DecisionNode {
	cursorD, expanded := root.selectChild(rng, true)
	for !cursorD.GameOver && !expanded && len(cursorD.UntriedActions) == 0 {
		cursorC := cursorD.selectChild(m.cfg.explorationConstant, true)
		if cursorC == nil {
			return nil
		}
		cursorD, expanded = cursorC.selectChild(rng, true)
	}
	if cursorD.GameOver || expanded {
		return cursorD
	}
	return cursorD.expandChildWorker(rng)
}

// rolloutWorker plays up to cfg.rolloutDepth uniform-random legal
// moves from leaf, returning the leaf's cumulative path score plus the
// score gained during the rollout, plus the estimator's value of the
// final board reached unless the game ended.
func (m *MCTS) rolloutWorker(leaf *DecisionNode, rng *rand.Rand, env *env2048.Env) float64 {
	env.SetBoard(leaf.Board)
	env.SetScore(0)
	afterState := leaf.Board
	gameOver := env.IsGameOver()
	for round := 0; !gameOver && round < m.cfg.rolloutDepth; round++ {
		legal := env.LegalActions()
		result, err := env.Step(legal[rng.Intn(len(legal))])
		if err != nil {
			panic(err)
		}
		afterState = result.BeforeBoard
		gameOver = result.GameOver
	}
	base := float64(leaf.Stats.CumulateScore + env.GetScore())
	if gameOver {
		return base
	}
	return base + m.estimator.Value(afterState)
}

// backpropagateMain folds reward into every node's authoritative
// Stats from leaf up to the tree root, clearing Future along the way
// since every node on this path is now part of the permanent tree.
func (m *MCTS) backpropagateMain(leaf *DecisionNode, reward float64) {
	minAvg, maxAvg := math.Inf(1), math.Inf(-1)
	var cursor node = leaf
	for cursor != nil {
		cursor.stats().UpdateReward(reward, &minAvg, &maxAvg)
		cursor.futureProp().Future = false
		cursor = cursor.nodeParent()
	}
}

// backpropagateWorker folds reward into every node's speculative
// (FutureProp.Stats) bundle from leaf up to, but not including,
// futureRoot — the portion of the path that is still speculative. Each
// node's own Mu is taken around its Stats update since this can run
// concurrently with another worker (or the main thread) walking an
// overlapping path through a shared ancestor.
func (m *MCTS) backpropagateWorker(futureRoot node, leaf *DecisionNode, reward float64) {
	minAvg, maxAvg := math.Inf(1), math.Inf(-1)
	var cursor node = leaf
	for cursor != nil && cursor != futureRoot {
		fp := cursor.futureProp()
		fp.Mu.Lock()
		fp.Stats.UpdateReward(reward, &minAvg, &maxAvg)
		fp.Mu.Unlock()
		cursor = cursor.nodeParent()
	}
}

// runWorker is the body run by every Pool goroutine for each Task it
// dequeues: keep expanding below task.FutureRoot, rolling out and
// backpropagating each new leaf, and staging non-terminal leaves onto
// the NextStep reservation list for the main thread to consume, until
// the boundary is fully expanded or its reservation buffer is full.
func (m *MCTS) runWorker(task *Task, rng *rand.Rand, env *env2048.Env) {
	futureRoot := task.FutureRoot
	fp := futureRoot.futureProp()
	fp.Mu.Lock()
	if task.Cancelled() || fp.WorkerFinished.Load() {
		fp.Mu.Unlock()
		return
	}
	fp.WorkerProcessing.Store(true)
	if fp.PendingTask != nil {
		fp.PendingTask.Cancel()
	}
	fp.PendingTask = nil

	nullNext := fp.NextStep == nil
	if !nullNext {
		fp.Mu.Unlock()
	}

	for !futureRoot.fullyExpandedFuture() && (nullNext || fp.RemainWork()) {
		var leaf *DecisionNode
		if task.IsChance {
			leaf = m.expandWorkerC(futureRoot.(*ChanceNode), rng)
		} else {
			leaf = m.expandWorkerD(futureRoot.(*DecisionNode), rng)
		}
		if leaf == nil {
			continue
		}
		leaf.st.Reward = m.rolloutWorker(leaf, rng, env)
		m.backpropagateWorker(futureRoot, leaf, leaf.st.Reward)
		if leaf.GameOver {
			continue
		}

		if nullNext {
			fp.NextStep = leaf
			fp.CurReserve++
			fp.Mu.Unlock()
			nullNext = false
			continue
		}

		fp.Mu.Lock()
		nextPtr := fp.NextStep
		for nextPtr != nil && nextPtr.st.NextStep != nil {
			nextPtr = nextPtr.st.NextStep
		}
		fp.CurReserve++
		if nextPtr == nil {
			fp.NextStep = leaf
		} else {
			nextPtr.st.NextStep = leaf
		}
		fp.Mu.Unlock()
	}

	if futureRoot.fullyExpandedFuture() {
		fp.WorkerFinished.Store(true)
	}
	if nullNext {
		fp.Mu.Unlock()
	}
	fp.WorkerProcessing.Store(false)
}
