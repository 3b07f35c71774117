package game

import "errors"

var (
	ErrMalformedSquare = errors.New("malformed square")
	ErrKingCaptured    = errors.New("king capture generated")
	ErrKingMissing     = errors.New("king not found on board")
)
