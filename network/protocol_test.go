package network

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeDecode(t *testing.T) {
	raw := []byte(`{"type":"join_room","data":{"roomId":"AB12CD","username":"alice"}}`)
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if env.Type != MsgJoinRoom {
		t.Fatalf("Expected type join_room, got %s", env.Type)
	}

	var req JoinRoomRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		t.Fatalf("Payload decode failed: %v", err)
	}
	if req.RoomID != "AB12CD" || req.Username != "alice" {
		t.Fatalf("Unexpected payload: %+v", req)
	}
}

func TestEventOmitsEmptyData(t *testing.T) {
	out, err := json.Marshal(Event{Type: EvtLeftGame})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"type":"left_game"}` {
		t.Fatalf("Expected bare frame, got %s", out)
	}
}

func TestChatMessageKindSerializesAsType(t *testing.T) {
	out, err := json.Marshal(ChatMessageData{PlayerID: "p1", Username: "alice", Message: "hi", Kind: "chat", Timestamp: 5})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("Round trip failed: %v", err)
	}
	if m["type"] != "chat" {
		t.Fatalf("Kind should serialize under the type key, got %v", m)
	}
}
