package network

import "errors"

// ErrInvalidFormat marks an inbound frame that could not be decoded as a
// {type, data} envelope. It never affects room state.
var ErrInvalidFormat = errors.New("invalid message format")
