package game

import (
	"time"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/words"
)

// scheduleRound arms a one-shot timer that starts the next round. The
// callback re-validates the room on fire: the room may have emptied or the
// game may have ended while the timer was pending.
func (e *Engine) scheduleRound(roomID string, delay time.Duration) {
	e.timers.AddTimer(delay, 0, func() {
		e.StartNewRound(roomID)
	})
}

// StartNewRound elects the next drawer, picks a word and announces the round.
// A no-op when the room is gone or no longer playing.
func (e *Engine) StartNewRound(roomID string) {
	r, exists := e.rooms.Get(roomID)
	if !exists {
		return
	}

	unlock := e.lockRoom(roomID)
	defer unlock()

	w := e.pickWord()
	start, ok := r.BeginRound(w.Text, w.Difficulty)
	if !ok {
		return
	}

	ctx, cancel := mirrorCtx()
	defer cancel()
	logMirrorErr("update room", roomID, e.mirror.UpdateRoom(ctx, roomID, map[string]interface{}{
		"currentRound": start.Round,
	}))

	e.fanout.BroadcastToRoom(roomID, network.Event{
		Type: network.EvtNewRound,
		Data: network.NewRoundData{
			Round:      start.Round,
			Drawer:     network.DrawerInfo{PlayerID: start.DrawerID, Username: start.DrawerName},
			WordLength: len(start.Word),
			Hint:       words.Hint(start.Word),
			Difficulty: start.Difficulty,
			Players:    start.Roster,
		},
	})

	e.sendToPlayer(start.DrawerID, network.Event{
		Type: network.EvtYouAreDrawing,
		Data: network.YouAreDrawingData{Word: start.Word, Round: start.Round},
	})

	if e.stats != nil {
		e.stats.IncRoundsStarted()
	}
	logger.Log.Infof("Round %d started in room %s, drawer %s", start.Round, roomID, start.DrawerName)
}
