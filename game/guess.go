package game

import (
	"strings"
	"time"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/room"
	"github.com/wfunc/drawguess/session"
)

// HandleChat records and fans out a chat message, then evaluates it as a
// guess. The chat entry is always delivered, matching or not: nothing about
// the message reveals whether it was correct before the correct_guess event
// lands.
func (e *Engine) HandleChat(sess *session.Session, message string) error {
	playerID, roomID := sess.Identity()
	if roomID == "" {
		return ErrNotInRoom
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return network.ErrInvalidFormat
	}

	r, exists := e.rooms.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	unlock := e.lockRoom(roomID)
	defer unlock()

	p, exists := r.GetPlayer(playerID)
	if !exists {
		return ErrNotInRoom
	}

	doc := models.MessageDoc{
		PlayerID:  playerID,
		Username:  p.Username,
		Message:   message,
		Kind:      "chat",
		Timestamp: time.Now().UnixMilli(),
	}
	ctx, cancel := mirrorCtx()
	_, err := e.mirror.AppendMessage(ctx, roomID, doc)
	cancel()
	logMirrorErr("append message", roomID, err)

	e.fanout.BroadcastToRoom(roomID, network.Event{
		Type: network.EvtChatMessage,
		Data: network.ChatMessageData{
			PlayerID:  doc.PlayerID,
			Username:  doc.Username,
			Message:   doc.Message,
			Kind:      doc.Kind,
			Timestamp: doc.Timestamp,
		},
	})

	res, outcome := r.ResolveGuess(playerID, message, e.cfg.GuesserPoints, e.cfg.DrawerPoints, e.cfg.WinningScore)
	switch outcome {
	case room.GuessNoMatch:
		return nil
	case room.GuessTooLate:
		e.sendToPlayer(playerID, network.Event{
			Type: network.EvtChatMessage,
			Data: network.ChatMessageData{
				PlayerID:  "system",
				Username:  "System",
				Message:   "Too late! Someone already guessed it.",
				Kind:      "system",
				Timestamp: time.Now().UnixMilli(),
			},
		})
		return nil
	}

	e.applyScoredGuess(r, res)
	return nil
}

// applyScoredGuess mirrors the score changes and runs the post-guess fanout
// sequence: roster refresh, the correct_guess announcement, then either game
// over plus a full-state reconcile or the next round timer.
func (e *Engine) applyScoredGuess(r *room.Room, res room.GuessResult) {
	roomID := r.ID
	if e.stats != nil {
		e.stats.IncCorrectGuesses()
	}

	ctx, cancel := mirrorCtx()
	logMirrorErr("update score", roomID, e.mirror.UpdateScore(ctx, res.GuesserID, res.GuesserScore))
	if res.DrawerName != "" {
		logMirrorErr("update score", roomID, e.mirror.UpdateScore(ctx, res.DrawerID, res.DrawerScore))
	}
	cancel()

	e.fanout.BroadcastToRoom(roomID, network.Event{
		Type: network.EvtPlayersUpdate,
		Data: network.PlayersUpdateData{Players: res.Roster},
	})
	e.fanout.BroadcastToRoom(roomID, network.Event{
		Type: network.EvtCorrectGuess,
		Data: network.CorrectGuessData{
			Username:     res.GuesserName,
			Word:         res.Word,
			DrawerName:   res.DrawerName,
			GuesserScore: res.GuesserScore,
			DrawerScore:  res.DrawerScore,
		},
	})

	if res.GameOver {
		logger.Log.Infof("Game over in room %s, winner %s with %d points", roomID, res.WinnerName, res.WinnerScore)
		e.fanout.BroadcastToRoom(roomID, network.Event{
			Type: network.EvtGameOver,
			Data: network.GameOverData{Winner: res.WinnerName, Score: res.WinnerScore},
		})
		e.fanout.BroadcastToRoom(roomID, network.Event{
			Type: network.EvtPlayersUpdate,
			Data: network.PlayersUpdateData{Players: res.ResetRoster},
		})

		// Full-state write brings the mirror back in line after the reset.
		ctx, cancel := mirrorCtx()
		defer cancel()
		logMirrorErr("republish room", roomID, e.mirror.RepublishRoom(ctx, r.Snapshot()))
		return
	}

	e.scheduleRound(roomID, e.cfg.NextRoundDelay)
}
