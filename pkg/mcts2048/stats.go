// Package mcts2048 implements a parallel, pipelined-speculative-
// expansion Monte Carlo Tree Search over 2048: decision nodes (agent
// choice) alternate with chance nodes (environment randomness), and a
// worker pool pre-expands subtrees ahead of the main thread so that
// selection rarely stalls waiting on an expansion.
package mcts2048

import "math"

// Stats is a node's visit/reward accumulator. Every
// node carries two of these (see FutureProp.Stats): one updated only
// by the main thread once a subtree is no longer speculative, one
// updated by whichever worker is speculatively expanding below a
// boundary node.
type Stats struct {
	CumulateScore int
	VisitCount    int
	TotalReward   float64
	MinAvg        float64
	MaxAvg        float64
}

// NewStats returns a Stats seeded with the path's cumulative score so
// far and min/max bounds at their identity elements.
func NewStats(cumulateScore int) Stats {
	return Stats{
		CumulateScore: cumulateScore,
		MinAvg:        math.Inf(1),
		MaxAvg:        math.Inf(-1),
	}
}

// AvgReward is TotalReward / VisitCount. Callers must not call this on
// an unvisited Stats (VisitCount == 0); every caller in this package
// only reaches a Stats through a node that has already been visited
// at least once before AvgReward is read.
func (s *Stats) AvgReward() float64 {
	return s.TotalReward / float64(s.VisitCount)
}

// UpdateReward records one more visit with the given reward, folding
// the running min/max average into both this Stats and the caller's
// running min_avg/max_avg accumulators, so a single backpropagation
// pass tracks the tightest bound seen along the whole path, used by
// the UCT formula in place of a fixed reward-scale constant.
func (s *Stats) UpdateReward(reward float64, minAvg, maxAvg *float64) {
	s.VisitCount++
	s.TotalReward += reward
	avg := s.AvgReward()
	*minAvg = math.Min(*minAvg, avg)
	*minAvg = math.Min(*minAvg, s.MinAvg)
	s.MinAvg = *minAvg
	*maxAvg = math.Max(*maxAvg, avg)
	*maxAvg = math.Max(*maxAvg, s.MaxAvg)
	s.MaxAvg = *maxAvg
}
