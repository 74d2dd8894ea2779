package game

import (
	"encoding/json"
	"time"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/session"
)

// HandleDraw relays a stroke from the drawer to everyone else in the room.
// Actions from anyone but the current drawer are dropped silently.
func (e *Engine) HandleDraw(sess *session.Session, action json.RawMessage) error {
	playerID, roomID := sess.Identity()
	if roomID == "" {
		return ErrNotInRoom
	}
	r, exists := e.rooms.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	unlock := e.lockRoom(roomID)
	defer unlock()

	if !r.IsDrawer(playerID) {
		return nil
	}

	now := time.Now().UnixMilli()

	ctx, cancel := mirrorCtx()
	_, err := e.mirror.AppendDrawing(ctx, roomID, models.DrawingDoc{
		Kind:      "draw",
		PlayerID:  playerID,
		Data:      action,
		Timestamp: now,
	})
	cancel()
	logMirrorErr("append drawing", roomID, err)

	e.fanout.BroadcastToRoomExcept(roomID, sess.ID, network.Event{
		Type: network.EvtDraw,
		Data: network.DrawData{Action: action, PlayerID: playerID, Timestamp: now},
	})
	return nil
}

// HandleClearCanvas wipes the canvas for everyone else. Drawer only.
func (e *Engine) HandleClearCanvas(sess *session.Session) error {
	playerID, roomID := sess.Identity()
	if roomID == "" {
		return ErrNotInRoom
	}
	r, exists := e.rooms.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	unlock := e.lockRoom(roomID)
	defer unlock()

	if !r.IsDrawer(playerID) {
		return nil
	}

	now := time.Now().UnixMilli()

	ctx, cancel := mirrorCtx()
	_, err := e.mirror.AppendDrawing(ctx, roomID, models.DrawingDoc{
		Kind:      "clear",
		PlayerID:  playerID,
		Timestamp: now,
	})
	cancel()
	logMirrorErr("append drawing", roomID, err)

	e.fanout.BroadcastToRoomExcept(roomID, sess.ID, network.Event{
		Type: network.EvtClearCanvas,
		Data: network.DrawData{PlayerID: playerID, Timestamp: now},
	})
	return nil
}
