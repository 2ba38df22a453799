package board

import "errors"

// ErrInvalidAction is returned when an Action outside {Up, Down,
// Left, Right} is supplied to Move.
var ErrInvalidAction = errors.New("board: invalid action")
