// models/models.go
package models

// Document shapes mirrored into the durable store. The store is a recovery
// and cross-process visibility mirror only; gameplay never reads these back.

// RoomDoc lives at rooms/<roomId>.
type RoomDoc struct {
	Name           string `json:"name"`
	HostID         string `json:"hostId"`
	MaxPlayers     int    `json:"maxPlayers"`
	CurrentPlayers int    `json:"currentPlayers"`
	Status         string `json:"status"`
	CurrentRound   int    `json:"currentRound"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt,omitempty"`
}

// PlayerDoc lives at players/<playerId>.
type PlayerDoc struct {
	Username  string `json:"username"`
	RoomID    string `json:"roomId"`
	Score     int    `json:"score"`
	IsDrawing bool   `json:"isDrawing"`
	IsHost    bool   `json:"isHost"`
	JoinedAt  int64  `json:"joinedAt"`
}

// MessageDoc entries are pushed under messages/<roomId>.
type MessageDoc struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Kind      string `json:"type"` // "chat" or "system"
	Timestamp int64  `json:"timestamp"`
}

// DrawingDoc entries are pushed under drawings/<roomId>. Kind "draw" carries
// an opaque action payload; kind "clear" is a clear-canvas marker.
type DrawingDoc struct {
	Kind      string      `json:"type"`
	PlayerID  string      `json:"playerId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// WordDoc entries live under words/<key>, written by the seeding utility.
type WordDoc struct {
	Word       string `json:"word"`
	Difficulty string `json:"difficulty"`
}
