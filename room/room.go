// room/room.go
package room

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/state"
)

var (
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyStarted = errors.New("game has already started")
	ErrNotHost        = errors.New("only host can start game")
)

// Player is room-owned state. It is only ever reached through its Room, which
// guards every mutation; other components hold player ids, never *Player.
type Player struct {
	ID        string
	SessionID string
	Username  string
	Score     int
	IsDrawing bool
	IsHost    bool
	JoinedAt  time.Time
}

// Room 是游戏房间的核心结构
type Room struct {
	ID         string
	MaxPlayers int
	CreatedAt  time.Time

	mutex       sync.RWMutex
	gameState   state.GameState
	round       int
	currentWord string
	difficulty  string
	drawerID    string
	drawerIndex int
	roundState  state.Round
	players     map[string]*Player
	order       []string // join order; drives rotation and host migration
}

// NewRoom 创建一个新房间
func NewRoom(id string, maxPlayers int) *Room {
	return &Room{
		ID:         id,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
		gameState:  state.Waiting,
		players:    make(map[string]*Player),
	}
}

// AddPlayer 添加一个玩家到房间
func (r *Room) AddPlayer(p *Player) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.gameState != state.Waiting {
		return ErrAlreadyStarted
	}
	if len(r.players) >= r.MaxPlayers {
		return ErrRoomFull
	}

	p.JoinedAt = time.Now()
	p.IsHost = len(r.players) == 0
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// GetPlayer returns a copy of the player, never the live struct.
func (r *Room) GetPlayer(playerID string) (Player, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, exists := r.players[playerID]
	if !exists {
		return Player{}, false
	}
	return *p, true
}

func (r *Room) PlayerCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.players)
}

func (r *Room) State() state.GameState {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.gameState
}

func (r *Room) Round() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.round
}

func (r *Room) DrawerID() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.drawerID
}

// IsDrawer reports whether playerID is the current drawer of an open round.
func (r *Room) IsDrawer(playerID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return playerID != "" && playerID == r.drawerID
}

func (r *Room) HostID() (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, id := range r.order {
		if p, ok := r.players[id]; ok && p.IsHost {
			return id, true
		}
	}
	return "", false
}

// Roster returns the player list in join order.
func (r *Room) Roster() []network.PlayerInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.rosterLocked()
}

func (r *Room) rosterLocked() []network.PlayerInfo {
	roster := make([]network.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		roster = append(roster, network.PlayerInfo{
			ID:        p.ID,
			Username:  p.Username,
			Score:     p.Score,
			IsDrawing: p.IsDrawing,
			IsHost:    p.IsHost,
		})
	}
	return roster
}

// StartPlaying moves the room into the playing state. Only the host may do
// this, and only from the waiting state.
func (r *Room) StartPlaying(byPlayerID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, exists := r.players[byPlayerID]
	if !exists || !p.IsHost {
		return ErrNotHost
	}

	next, err := r.gameState.Transition(state.Playing)
	if err != nil {
		return ErrAlreadyStarted
	}
	r.gameState = next
	return nil
}

// RoundStart is the snapshot BeginRound hands back for persistence and fanout.
type RoundStart struct {
	Round      int
	DrawerID   string
	DrawerName string
	Word       string
	Difficulty string
	Roster     []network.PlayerInfo
}

// BeginRound opens the next round: advances the rotation cursor (wrapping to
// zero if it ran past the end after departures), elects the drawer, arms the
// round guards. Returns false if the room is not playing or has no players;
// the scheduler treats that as an idempotent no-op.
func (r *Room) BeginRound(word, difficulty string) (RoundStart, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.gameState != state.Playing || len(r.order) == 0 {
		return RoundStart{}, false
	}

	if r.drawerIndex >= len(r.order) {
		r.drawerIndex = 0
	}
	drawer := r.players[r.order[r.drawerIndex]]
	r.drawerIndex++

	for _, p := range r.players {
		p.IsDrawing = false
	}
	drawer.IsDrawing = true
	r.drawerID = drawer.ID
	r.currentWord = word
	r.difficulty = difficulty
	r.round++
	r.roundState.Open()

	return RoundStart{
		Round:      r.round,
		DrawerID:   drawer.ID,
		DrawerName: drawer.Username,
		Word:       word,
		Difficulty: difficulty,
		Roster:     r.rosterLocked(),
	}, true
}

// GuessOutcome classifies a chat message against the current round.
type GuessOutcome int

const (
	GuessNoMatch GuessOutcome = iota
	GuessTooLate
	GuessScored
)

// GuessResult is the snapshot of a scored guess.
type GuessResult struct {
	GuesserID    string
	GuesserName  string
	GuesserScore int
	DrawerID     string
	DrawerName   string
	DrawerScore  int
	Word         string
	GameOver     bool
	WinnerName   string
	WinnerScore  int
	Roster       []network.PlayerInfo
	// ResetRoster holds the zeroed post-reset roster, set only on game over.
	ResetRoster []network.PlayerInfo
}

// ResolveGuess qualifies text as a guess and, if it is the first correct one
// of the round, applies the score deltas atomically. The answered flag flips
// under the lock, so concurrent identical guesses resolve to exactly one
// GuessScored and the rest GuessTooLate. On reaching winningScore the room
// transitions to game over in the same critical section: scores reset,
// drawing flags clear, state reverts to waiting.
func (r *Room) ResolveGuess(guesserID, text string, guesserPts, drawerPts, winningScore int) (GuessResult, GuessOutcome) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	guesser, exists := r.players[guesserID]
	if !exists || r.currentWord == "" || guesserID == r.drawerID {
		return GuessResult{}, GuessNoMatch
	}
	if !strings.EqualFold(strings.TrimSpace(text), r.currentWord) {
		return GuessResult{}, GuessNoMatch
	}

	if !r.roundState.Resolve() {
		return GuessResult{}, GuessTooLate
	}

	res := GuessResult{
		GuesserID:   guesserID,
		GuesserName: guesser.Username,
		DrawerID:    r.drawerID,
		Word:        r.currentWord,
	}

	guesser.Score += guesserPts
	res.GuesserScore = guesser.Score

	// The drawer earns its share only if still present in the room.
	if drawer, ok := r.players[r.drawerID]; ok {
		drawer.Score += drawerPts
		res.DrawerName = drawer.Username
		res.DrawerScore = drawer.Score

		if drawer.Score >= winningScore {
			res.GameOver = true
			res.WinnerName = drawer.Username
			res.WinnerScore = drawer.Score
		}
	}
	if guesser.Score >= winningScore {
		res.GameOver = true
		res.WinnerName = guesser.Username
		res.WinnerScore = guesser.Score
	}

	// Roster is captured with the deltas applied, before any game-over
	// reset, so the scoring broadcast carries the incremented scores.
	res.Roster = r.rosterLocked()
	if res.GameOver {
		r.resetGameLocked()
		res.ResetRoster = r.rosterLocked()
	}
	return res, GuessScored
}

// resetGameLocked reverts the room to a fresh waiting state without
// destroying it. Caller holds the write lock.
func (r *Room) resetGameLocked() {
	for _, p := range r.players {
		p.Score = 0
		p.IsDrawing = false
	}
	r.gameState = state.Waiting
	r.round = 0
	r.currentWord = ""
	r.difficulty = ""
	r.drawerID = ""
	r.drawerIndex = 0
	r.roundState.Reset()
}

// LeaveResult is the snapshot of a removal transition.
type LeaveResult struct {
	PlayerID    string
	Username    string
	WasHost     bool
	NewHostID   string
	NewHostName string
	Empty       bool
	Roster      []network.PlayerInfo
}

// RemovePlayer removes playerID and, in the same transition, migrates the
// host role to the next remaining player in join order. Returns false if the
// player is not in the room.
func (r *Room) RemovePlayer(playerID string) (LeaveResult, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, exists := r.players[playerID]
	if !exists {
		return LeaveResult{}, false
	}

	res := LeaveResult{
		PlayerID: playerID,
		Username: p.Username,
		WasHost:  p.IsHost,
	}

	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.players) == 0 {
		res.Empty = true
		return res, true
	}

	if res.WasHost {
		newHost := r.players[r.order[0]]
		newHost.IsHost = true
		res.NewHostID = newHost.ID
		res.NewHostName = newHost.Username
	}

	res.Roster = r.rosterLocked()
	return res, true
}

// Snapshot is the full-state view used for the durable mirror and the admin
// surface.
type Snapshot struct {
	ID         string
	State      state.GameState
	Round      int
	MaxPlayers int
	HostID     string
	CreatedAt  time.Time
	Players    []network.PlayerInfo
}

func (r *Room) Snapshot() Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snap := Snapshot{
		ID:         r.ID,
		State:      r.gameState,
		Round:      r.round,
		MaxPlayers: r.MaxPlayers,
		CreatedAt:  r.CreatedAt,
		Players:    r.rosterLocked(),
	}
	for _, id := range r.order {
		if p, ok := r.players[id]; ok && p.IsHost {
			snap.HostID = id
			break
		}
	}
	return snap
}

// --- 房间管理器 ---

// Manager 管理所有房间
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

func (m *Manager) Add(room *Room) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.rooms[room.ID] = room
}

func (m *Manager) Remove(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, id)
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[id]
	return room, exists
}

func (m *Manager) Exists(id string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, exists := m.rooms[id]
	return exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

func (m *Manager) IDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	return ids
}
