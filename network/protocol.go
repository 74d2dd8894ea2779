// network/protocol.go
package network

import "encoding/json"

// Inbound message types.
const (
	MsgCreateRoom  = "create_room"
	MsgJoinRoom    = "join_room"
	MsgStartGame   = "start_game"
	MsgChatMessage = "chat_message"
	MsgDraw        = "draw"
	MsgClearCanvas = "clear_canvas"
	MsgLeaveGame   = "leave_game"
)

// Outbound event types.
const (
	EvtRoomCreated   = "room_created"
	EvtRoomJoined    = "room_joined"
	EvtPlayerJoined  = "player_joined"
	EvtPlayerLeft    = "player_left"
	EvtPlayersUpdate = "players_update"
	EvtNewRound      = "new_round"
	EvtYouAreDrawing = "you_are_drawing"
	EvtYouAreHost    = "you_are_host"
	EvtDraw          = "draw"
	EvtClearCanvas   = "clear_canvas"
	EvtChatMessage   = "chat_message"
	EvtCorrectGuess  = "correct_guess"
	EvtGameOver      = "game_over"
	EvtLeftGame      = "left_game"
	EvtError         = "error"
)

// Envelope is the tagged frame every client message arrives in. Data stays
// raw until the handler for Type decodes it.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event is an outbound frame. Data must be JSON-serializable.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// --- inbound payloads ---

type CreateRoomRequest struct {
	Username string `json:"username"`
}

type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

// --- outbound payloads ---

// PlayerInfo is the roster entry shape shared by every roster-carrying event.
type PlayerInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	IsDrawing bool   `json:"isDrawing"`
	IsHost    bool   `json:"isHost"`
}

type RoomCreatedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

type RoomJoinedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

type PlayerJoinedData struct {
	PlayerID string       `json:"playerId"`
	Username string       `json:"username"`
	Players  []PlayerInfo `json:"players"`
}

type PlayerLeftData struct {
	PlayerID string       `json:"playerId"`
	Username string       `json:"username,omitempty"`
	Players  []PlayerInfo `json:"players,omitempty"`
}

type PlayersUpdateData struct {
	Players []PlayerInfo `json:"players"`
}

type DrawerInfo struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

type NewRoundData struct {
	Round      int          `json:"round"`
	Drawer     DrawerInfo   `json:"drawer"`
	WordLength int          `json:"wordLength"`
	Hint       string       `json:"hint"`
	Difficulty string       `json:"difficulty"`
	Players    []PlayerInfo `json:"players"`
}

type YouAreDrawingData struct {
	Word  string `json:"word"`
	Round int    `json:"round"`
}

type ChatMessageData struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Kind      string `json:"type"` // "chat" or "system"
	Timestamp int64  `json:"timestamp"`
}

type DrawData struct {
	Action    json.RawMessage `json:"action"`
	PlayerID  string          `json:"playerId"`
	Timestamp int64           `json:"timestamp"`
}

type CorrectGuessData struct {
	Username     string `json:"username"`
	Word         string `json:"word"`
	DrawerName   string `json:"drawerName"`
	GuesserScore int    `json:"guesserScore"`
	DrawerScore  int    `json:"drawerScore"`
}

type GameOverData struct {
	Winner string `json:"winner"`
	Score  int    `json:"score"`
}

type MessageData struct {
	Message string `json:"message"`
}
