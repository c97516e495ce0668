package board

import "errors"

var (
	ErrOutOfBounds     = errors.New("coordinate out of bounds")
	ErrOccupied        = errors.New("cell already occupied")
	ErrStealNotAllowed = errors.New("steal only allowed as the second action")
	ErrInvalidColor    = errors.New("color must be red or blue")
	ErrUnknownColor    = errors.New("unknown color")
	ErrUnknownAction   = errors.New("unknown action")
)
