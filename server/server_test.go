package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/persistence"
)

// NewGameServer registers prometheus, expvar and net/rpc services in
// process-global registries, so the whole gateway flow runs in one test
// against a single server instance.
func TestWebSocketFlow(t *testing.T) {
	logger.Init()

	cfg := &config.Config{
		Server: config.ServerConfig{
			HTTPAddress:    "127.0.0.1:0",
			RPCAddress:     "127.0.0.1:0",
			MonitorAddress: "127.0.0.1:0",
		},
		Game: config.GameConfig{
			MaxPlayers:      8,
			WinningScore:    1000,
			GuesserPoints:   100,
			DrawerPoints:    50,
			RoundStartDelay: 50 * time.Millisecond,
			NextRoundDelay:  50 * time.Millisecond,
		},
	}
	gs := NewGameServer(cfg, persistence.NewMemory())
	ts := httptest.NewServer(http.HandlerFunc(gs.handleWebSocket))
	defer func() {
		ts.Close()
		gs.Shutdown()
	}()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	conn1 := dial(t, wsURL)
	defer conn1.Close()

	// Create a room.
	sendEnvelope(t, conn1, network.MsgCreateRoom, map[string]string{"username": "alice"})
	_, data := readUntil(t, conn1, network.EvtRoomCreated)
	var created network.RoomCreatedData
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("room_created decode failed: %v", err)
	}
	if len(created.RoomID) != 6 {
		t.Fatalf("Expected a 6-char room code, got %q", created.RoomID)
	}

	// A malformed frame gets a private error reply and must not tear the
	// connection or the room down.
	if err := conn1.WriteMessage(websocket.TextMessage, []byte(`{oops`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_, data = readUntil(t, conn1, network.EvtError)
	var errData network.MessageData
	if err := json.Unmarshal(data, &errData); err != nil {
		t.Fatalf("error decode failed: %v", err)
	}
	if errData.Message != network.ErrInvalidFormat.Error() {
		t.Fatalf("Expected invalid format reply, got %q", errData.Message)
	}

	// An unrecognized message type gets the same reply.
	sendEnvelope(t, conn1, "bogus_type", nil)
	readUntil(t, conn1, network.EvtError)

	// The room must still be live: a second player can join it, through
	// the same connection that sent the bad frames.
	conn2 := dial(t, wsURL)
	defer conn2.Close()
	sendEnvelope(t, conn2, network.MsgJoinRoom, map[string]string{
		"roomId":   strings.ToLower(created.RoomID),
		"username": "bob",
	})
	readUntil(t, conn2, network.EvtRoomJoined)
	_, data = readUntil(t, conn1, network.EvtPlayerJoined)
	var joined network.PlayerJoinedData
	if err := json.Unmarshal(data, &joined); err != nil {
		t.Fatalf("player_joined decode failed: %v", err)
	}
	if len(joined.Players) != 2 {
		t.Fatalf("Expected a 2-player roster, got %+v", joined.Players)
	}

	// Chat fans out to everyone.
	sendEnvelope(t, conn2, network.MsgChatMessage, map[string]string{"message": "hello"})
	readUntil(t, conn1, network.EvtChatMessage)

	// Explicit leave is acknowledged and broadcast.
	sendEnvelope(t, conn2, network.MsgLeaveGame, nil)
	readUntil(t, conn2, network.EvtLeftGame)
	readUntil(t, conn1, network.EvtPlayerLeft)

	// Dropping the last connection cleans the room up.
	conn1.Close()
	deadline := time.Now().Add(2 * time.Second)
	for gs.roomManager.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected room cleanup after disconnect, %d rooms remain", gs.roomManager.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	return conn
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	envelope := map[string]interface{}{"type": msgType}
	if data != nil {
		envelope["data"] = data
	}
	if err := conn.WriteJSON(envelope); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
}

// readUntil reads frames until one of the wanted type arrives, skipping
// interleaved broadcasts such as system chat entries.
func readUntil(t *testing.T, conn *websocket.Conn, wantType string) (string, json.RawMessage) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Read failed waiting for %s: %v", wantType, err)
		}
		var evt struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("Event decode failed: %v", err)
		}
		if evt.Type == wantType {
			return evt.Type, evt.Data
		}
	}
}
