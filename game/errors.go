package game

import (
	"errors"
	"fmt"
)

// Player-facing error taxonomy. Each of these reaches only the originating
// connection as a private error event; they never interrupt other sessions.
var (
	ErrRoomNotFound   = errors.New("Room not found")
	ErrNotInRoom      = errors.New("Not in a room")
	ErrNotAuthorized  = errors.New("Only host can start game")
	ErrAlreadyStarted = errors.New("Game has already started")
	ErrRoomFull       = errors.New("Room is full")
)

// PersistenceError marks a durable store failure on a state-creating action.
// Best-effort mirror writes never produce one; they are logged and swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
