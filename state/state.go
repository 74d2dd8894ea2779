package state

import "errors"

// GameState is a room's top-level lifecycle state.
type GameState string

const (
	Waiting GameState = "waiting"
	Playing GameState = "playing"
)

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// transitions maps each state to the set of states it may move to. The game
// loops waiting -> playing -> waiting on game over.
var transitions = map[GameState]map[GameState]bool{
	Waiting: {Playing: true},
	Playing: {Waiting: true},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s GameState) CanTransition(next GameState) bool {
	return transitions[s][next]
}

// Transition validates and returns the next state.
func (s GameState) Transition(next GameState) (GameState, error) {
	if !s.CanTransition(next) {
		return s, ErrTransitionNotAllowed
	}
	return next, nil
}

// Round tracks the per-round guard flags. Answered is flipped exactly once
// per round, before any suspending call, so at most one correct guess scores.
type Round struct {
	Active   bool
	Answered bool
}

// Open arms a fresh round.
func (r *Round) Open() {
	r.Active = true
	r.Answered = false
}

// Resolve marks the round answered. It reports false if the round was not
// active or was already answered; the first caller wins.
func (r *Round) Resolve() bool {
	if !r.Active || r.Answered {
		return false
	}
	r.Answered = true
	r.Active = false
	return true
}

// Reset clears the round guards entirely, e.g. on game over.
func (r *Round) Reset() {
	r.Active = false
	r.Answered = false
}
