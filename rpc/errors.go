package rpc

import "errors"

var ErrUnknownRoom = errors.New("unknown room")
