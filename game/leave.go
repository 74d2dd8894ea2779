package game

import (
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/session"
)

// Leave removes the session's player from its room. Idempotent: leaving with
// no room binding, or a room or player already gone, succeeds quietly so a
// leave_game racing a disconnect cannot fail.
func (e *Engine) Leave(sess *session.Session) error {
	if err := e.removeFromRoom(sess); err != nil {
		return err
	}
	return sess.Send(network.Event{Type: network.EvtLeftGame})
}

// Disconnect is Leave without the acknowledgment, for closed connections.
func (e *Engine) Disconnect(sess *session.Session) {
	if err := e.removeFromRoom(sess); err != nil {
		logger.Log.Warnf("Cleanup for session %s failed: %v", sess.ID, err)
	}
}

func (e *Engine) removeFromRoom(sess *session.Session) error {
	playerID, roomID := sess.Identity()
	if roomID == "" {
		return nil
	}
	sess.UnbindPlayer()

	r, exists := e.rooms.Get(roomID)
	if !exists {
		return nil
	}

	unlock := e.lockRoom(roomID)
	defer unlock()

	res, removed := r.RemovePlayer(playerID)
	if !removed {
		return nil
	}

	if res.Empty {
		e.rooms.Remove(roomID)
		e.dropRoomLock(roomID)
		ctx, cancel := mirrorCtx()
		defer cancel()
		logMirrorErr("delete room", roomID, e.mirror.DeleteRoom(ctx, roomID, []string{playerID}))
		logger.Log.Infof("Room %s emptied and removed", roomID)
		return nil
	}

	ctx, cancel := mirrorCtx()
	logMirrorErr("remove player", roomID, e.mirror.RemovePlayer(ctx, roomID, playerID, len(res.Roster)))
	cancel()

	if res.WasHost && res.NewHostID != "" {
		ctx, cancel := mirrorCtx()
		logMirrorErr("update room", roomID, e.mirror.UpdateRoom(ctx, roomID, map[string]interface{}{
			"hostId": res.NewHostID,
		}))
		cancel()
		e.sendToPlayer(res.NewHostID, network.Event{
			Type: network.EvtYouAreHost,
			Data: network.MessageData{Message: "You are now the host"},
		})
	}

	e.appendSystemMessage(roomID, res.Username+" left the game")
	e.fanout.BroadcastToRoom(roomID, network.Event{
		Type: network.EvtPlayerLeft,
		Data: network.PlayerLeftData{PlayerID: playerID, Username: res.Username, Players: res.Roster},
	})

	logger.Log.Infof("Player %s left room %s", res.Username, roomID)
	return nil
}
