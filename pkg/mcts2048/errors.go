package mcts2048

import "errors"

// errNoAction is returned by BestAction/Action when no child of the
// root decision node has been visited by the main thread, i.e. the
// game is already over at the requested board, or the search ran zero
// iterations.
var errNoAction = errors.New("mcts2048: no legal action available at root")
