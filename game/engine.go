// Package game is the session engine: the single writer of room and player
// state. Every player action is validated and executed here, mirrored to the
// durable store best-effort, and fanned out to the room's live connections.
package game

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/room"
	"github.com/wfunc/drawguess/services"
	"github.com/wfunc/drawguess/session"
	"github.com/wfunc/drawguess/timer"
	"github.com/wfunc/drawguess/words"
)

// Fanout delivers an event to every (or every-but-one) live connection in a
// room. Defined here so tests can substitute a recording double.
type Fanout interface {
	BroadcastToRoom(roomID string, evt network.Event) error
	BroadcastToRoomExcept(roomID, exceptSessionID string, evt network.Event) error
}

const mirrorTimeout = 5 * time.Second

type Engine struct {
	cfg      config.GameConfig
	rooms    *room.Manager
	sessions *session.Manager
	fanout   Fanout
	mirror   *services.RoomService
	timers   *timer.TimerManager
	wordList []words.Word

	stats Stats

	// Per-room dispatch locks. Broadcasts must leave a room in the order
	// their triggering actions were accepted, so each action holds its
	// room's lock across the accept-mirror-fanout sequence.
	dispatchLocks map[string]*sync.Mutex
	dispatchMutex sync.Mutex

	rngMutex sync.Mutex
	rng      *rand.Rand
}

// Stats is the slice of the monitor the engine reports round activity to.
type Stats interface {
	IncRoundsStarted()
	IncCorrectGuesses()
}

// SetStats attaches a metrics sink. Optional: a nil sink disables reporting.
func (e *Engine) SetStats(s Stats) {
	e.stats = s
}

func NewEngine(cfg config.GameConfig, rooms *room.Manager, sessions *session.Manager, fanout Fanout, mirror *services.RoomService, timers *timer.TimerManager) *Engine {
	return &Engine{
		cfg:           cfg,
		rooms:         rooms,
		sessions:      sessions,
		fanout:        fanout,
		mirror:        mirror,
		timers:        timers,
		wordList:      words.DefaultList,
		dispatchLocks: make(map[string]*sync.Mutex),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// lockRoom acquires the room's dispatch lock, serializing every accepted
// action and its fanout. Returns the unlock function.
func (e *Engine) lockRoom(roomID string) func() {
	e.dispatchMutex.Lock()
	l, exists := e.dispatchLocks[roomID]
	if !exists {
		l = &sync.Mutex{}
		e.dispatchLocks[roomID] = l
	}
	e.dispatchMutex.Unlock()
	l.Lock()
	return l.Unlock
}

// dropRoomLock forgets a deleted room's dispatch lock. Late holders of the
// old lock see the room gone from the registry and no-op.
func (e *Engine) dropRoomLock(roomID string) {
	e.dispatchMutex.Lock()
	delete(e.dispatchLocks, roomID)
	e.dispatchMutex.Unlock()
}

func (e *Engine) Rooms() *room.Manager {
	return e.rooms
}

// RepublishRoom rewrites a room's full mirrored state, healing any drift
// left by failed best-effort writes. Exposed through the admin surface.
func (e *Engine) RepublishRoom(roomID string) error {
	r, exists := e.rooms.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}
	ctx, cancel := mirrorCtx()
	defer cancel()
	return e.mirror.RepublishRoom(ctx, r.Snapshot())
}

// mirrorCtx bounds every durable store call so a slow store cannot stall
// gameplay indefinitely.
func mirrorCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), mirrorTimeout)
}

// logMirrorErr swallows a best-effort mirror failure. Memory stays
// authoritative; the divergence heals on the next full-state write.
func logMirrorErr(op, roomID string, err error) {
	if err != nil {
		logger.Log.Warnf("Store mirror %s failed for room %s: %v", op, roomID, err)
	}
}

// CreateRoom allocates a fresh room with the caller as sole player and host.
// The durable mirror write is the one store call on the critical path: if it
// fails, no in-memory room is created either, so store and memory agree on
// existence at creation time.
func (e *Engine) CreateRoom(sess *session.Session, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return network.ErrInvalidFormat
	}

	e.rngMutex.Lock()
	code := generateRoomCode(e.rng)
	for e.rooms.Exists(code) {
		code = generateRoomCode(e.rng)
	}
	e.rngMutex.Unlock()

	playerID := newPlayerID()
	r := room.NewRoom(code, e.cfg.MaxPlayers)
	if err := r.AddPlayer(&room.Player{
		ID:        playerID,
		SessionID: sess.ID,
		Username:  username,
	}); err != nil {
		return err
	}

	ctx, cancel := mirrorCtx()
	defer cancel()
	if err := e.mirror.RepublishRoom(ctx, r.Snapshot()); err != nil {
		return &PersistenceError{Op: "create room", Err: err}
	}

	e.rooms.Add(r)
	sess.BindPlayer(playerID, code, username)

	logger.Log.Infof("Room %s created by %s", code, username)

	return sess.Send(network.Event{
		Type: network.EvtRoomCreated,
		Data: network.RoomCreatedData{RoomID: code, PlayerID: playerID, Username: username},
	})
}

// JoinRoom appends a player to a waiting room.
func (e *Engine) JoinRoom(sess *session.Session, roomID, username string) error {
	username = strings.TrimSpace(username)
	roomID = strings.ToUpper(strings.TrimSpace(roomID))
	if username == "" || roomID == "" {
		return network.ErrInvalidFormat
	}

	r, exists := e.rooms.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	unlock := e.lockRoom(roomID)
	defer unlock()

	playerID := newPlayerID()
	err := r.AddPlayer(&room.Player{
		ID:        playerID,
		SessionID: sess.ID,
		Username:  username,
	})
	switch err {
	case nil:
	case room.ErrAlreadyStarted:
		return ErrAlreadyStarted
	case room.ErrRoomFull:
		return ErrRoomFull
	default:
		return err
	}

	sess.BindPlayer(playerID, roomID, username)

	ctx, cancel := mirrorCtx()
	defer cancel()
	logMirrorErr("publish player", roomID, e.mirror.PublishPlayer(ctx, roomID, playerID, models.PlayerDoc{
		Username: username,
		RoomID:   roomID,
		Score:    0,
		JoinedAt: time.Now().UnixMilli(),
	}))
	logMirrorErr("update room", roomID, e.mirror.UpdateRoom(ctx, roomID, map[string]interface{}{
		"currentPlayers": r.PlayerCount(),
	}))

	e.appendSystemMessage(r.ID, username+" joined the game")

	if err := sess.Send(network.Event{
		Type: network.EvtRoomJoined,
		Data: network.RoomJoinedData{RoomID: roomID, PlayerID: playerID, Username: username},
	}); err != nil {
		return err
	}

	e.fanout.BroadcastToRoom(roomID, network.Event{
		Type: network.EvtPlayerJoined,
		Data: network.PlayerJoinedData{PlayerID: playerID, Username: username, Players: r.Roster()},
	})

	logger.Log.Infof("Player %s joined room %s", username, roomID)
	return nil
}

// StartGame moves a room into play and arms the first round after the settle
// delay, giving clients time to render the transition before drawing begins.
func (e *Engine) StartGame(sess *session.Session) error {
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

	switch err := r.StartPlaying(playerID); err {
	case nil:
	case room.ErrNotHost:
		return ErrNotAuthorized
	default:
		return ErrAlreadyStarted
	}

	ctx, cancel := mirrorCtx()
	defer cancel()
	logMirrorErr("update room", roomID, e.mirror.UpdateRoom(ctx, roomID, map[string]interface{}{
		"status": "playing",
	}))

	e.fanout.BroadcastToRoom(roomID, network.Event{
		Type: network.EvtPlayersUpdate,
		Data: network.PlayersUpdateData{Players: r.Roster()},
	})

	logger.Log.Infof("Game started in room %s", roomID)
	e.scheduleRound(roomID, e.cfg.RoundStartDelay)
	return nil
}

// appendSystemMessage mirrors and fans out a system chat entry.
func (e *Engine) appendSystemMessage(roomID, text string) {
	doc := models.MessageDoc{
		PlayerID:  "system",
		Username:  "System",
		Message:   text,
		Kind:      "system",
		Timestamp: time.Now().UnixMilli(),
	}

	ctx, cancel := mirrorCtx()
	defer cancel()
	_, err := e.mirror.AppendMessage(ctx, roomID, doc)
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
}

// sendToPlayer delivers a private event to one player's live connection.
func (e *Engine) sendToPlayer(playerID string, evt network.Event) {
	sess, ok := e.sessions.GetByPlayerID(playerID)
	if !ok || !sess.IsOpen() {
		return
	}
	if err := sess.Send(evt); err != nil {
		logger.Log.Debugf("Private send to player %s failed: %v", playerID, err)
	}
}

func (e *Engine) pickWord() words.Word {
	e.rngMutex.Lock()
	defer e.rngMutex.Unlock()
	return words.Pick(e.rng, e.wordList)
}
