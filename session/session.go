// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/drawguess/network"
)

// Session is one live client connection. A session owns at most one player
// identity at a time; PlayerID and RoomID are set by the engine when the
// client creates or joins a room and cleared when it leaves.
type Session struct {
	ID         string
	Conn       network.Connection
	PlayerID   string
	RoomID     string
	Username   string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(evt network.Event) error {
	s.Touch()
	return s.Conn.SendEvent(evt)
}

func (s *Session) Touch() {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
}

// BindPlayer attaches a player identity to this session.
func (s *Session) BindPlayer(playerID, roomID, username string) {
	s.mutex.Lock()
	s.PlayerID = playerID
	s.RoomID = roomID
	s.Username = username
	s.mutex.Unlock()
}

// UnbindPlayer detaches the player identity, e.g. after leave_game.
func (s *Session) UnbindPlayer() {
	s.mutex.Lock()
	s.PlayerID = ""
	s.RoomID = ""
	s.Username = ""
	s.mutex.Unlock()
}

// Identity returns the current player binding.
func (s *Session) Identity() (playerID, roomID string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.PlayerID, s.RoomID
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) IsOpen() bool {
	return s.Conn.IsOpen()
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) GetByPlayerID(playerID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, session := range m.sessions {
		pid, _ := session.Identity()
		if pid == playerID {
			return session, true
		}
	}
	return nil, false
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
