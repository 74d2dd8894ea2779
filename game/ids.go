package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Room codes are short and human-typeable; the ambiguous characters
// (0/O, 1/I) are left out. Player ids are opaque tokens.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const roomCodeLength = 6

func generateRoomCode(r *rand.Rand) string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[r.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

func newPlayerID() string {
	return uuid.New().String()
}
