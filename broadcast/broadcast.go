// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/room"
	"github.com/wfunc/drawguess/session"
)

var ErrRoomNotFound = errors.New("room not found")

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, evt network.Event) error
	BroadcastToRoomExcept(roomID, exceptSessionID string, evt network.Event) error
	SendToPlayer(playerID string, evt network.Event) error
}

// RoomBroadcaster fans an event out to every live connection of a room.
// Connections that are not currently open are skipped, never failed on;
// one slow or dead client must not break the broadcast for the rest.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, evt network.Event) error {
	return b.BroadcastToRoomExcept(roomID, "", evt)
}

func (b *RoomBroadcaster) BroadcastToRoomExcept(roomID, exceptSessionID string, evt network.Event) error {
	r, exists := b.roomManager.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, info := range r.Roster() {
		p, ok := r.GetPlayer(info.ID)
		if !ok {
			continue
		}
		if p.SessionID == exceptSessionID {
			continue
		}
		sess, ok := b.sessionManager.Get(p.SessionID)
		if !ok || !sess.IsOpen() {
			continue
		}
		if err := sess.Send(evt); err != nil {
			// Delivery failures surface on the connection's own read loop.
			continue
		}
	}
	return nil
}

// SendToPlayer delivers a private event to a single player's live connection.
func (b *RoomBroadcaster) SendToPlayer(playerID string, evt network.Event) error {
	sess, ok := b.sessionManager.GetByPlayerID(playerID)
	if !ok || !sess.IsOpen() {
		return nil
	}
	return sess.Send(evt)
}
