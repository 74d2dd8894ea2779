package services

import (
	"context"
	"time"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/room"
)

// RoomService owns the durable mirror of live room state. Memory stays
// authoritative; everything here is one-way publication, and RepublishRoom
// is the single full-state write that reconciles any drift.
type RoomService struct {
	store persistence.Store
}

func NewRoomService(store persistence.Store) *RoomService {
	return &RoomService{store: store}
}

func roomPath(roomID string) string     { return "rooms/" + roomID }
func playerPath(playerID string) string { return "players/" + playerID }
func rosterPath(roomID string) string   { return "roomPlayers/" + roomID }
func messagesPath(roomID string) string { return "messages/" + roomID }
func drawingsPath(roomID string) string { return "drawings/" + roomID }

func roomDoc(snap room.Snapshot) models.RoomDoc {
	return models.RoomDoc{
		Name:           "Room " + snap.ID,
		HostID:         snap.HostID,
		MaxPlayers:     snap.MaxPlayers,
		CurrentPlayers: len(snap.Players),
		Status:         string(snap.State),
		CurrentRound:   snap.Round,
		CreatedAt:      snap.CreatedAt.UnixMilli(),
		UpdatedAt:      time.Now().UnixMilli(),
	}
}

// RepublishRoom writes the full room, roster index and per-player documents.
// It both creates the mirror at room creation and self-heals divergence
// later; callers decide whether a failure is fatal (room creation) or merely
// logged (everything after).
func (s *RoomService) RepublishRoom(ctx context.Context, snap room.Snapshot) error {
	if err := s.store.Set(ctx, roomPath(snap.ID), roomDoc(snap)); err != nil {
		return err
	}

	// Rebuild the roster index from scratch so stale children go away.
	if err := s.store.Delete(ctx, rosterPath(snap.ID)); err != nil {
		return err
	}
	for _, p := range snap.Players {
		doc := models.PlayerDoc{
			Username:  p.Username,
			RoomID:    snap.ID,
			Score:     p.Score,
			IsDrawing: p.IsDrawing,
			IsHost:    p.IsHost,
			JoinedAt:  time.Now().UnixMilli(),
		}
		if err := s.store.Set(ctx, playerPath(p.ID), doc); err != nil {
			return err
		}
		if err := s.store.Set(ctx, rosterPath(snap.ID)+"/"+p.ID, map[string]interface{}{"joined": true}); err != nil {
			return err
		}
	}
	return nil
}

// PublishPlayer mirrors one player document and its roster index entry.
func (s *RoomService) PublishPlayer(ctx context.Context, roomID, playerID string, doc models.PlayerDoc) error {
	if err := s.store.Set(ctx, playerPath(playerID), doc); err != nil {
		return err
	}
	return s.store.Set(ctx, rosterPath(roomID)+"/"+playerID, map[string]interface{}{"joined": true})
}

// UpdateRoom merges partial fields into the room document.
func (s *RoomService) UpdateRoom(ctx context.Context, roomID string, fields map[string]interface{}) error {
	fields["updatedAt"] = time.Now().UnixMilli()
	return s.store.Update(ctx, roomPath(roomID), fields)
}

// UpdateScore mirrors a player's new score.
func (s *RoomService) UpdateScore(ctx context.Context, playerID string, score int) error {
	return s.store.Update(ctx, playerPath(playerID), map[string]interface{}{"score": score})
}

// AppendMessage pushes a chat or system entry onto the room's message log.
func (s *RoomService) AppendMessage(ctx context.Context, roomID string, doc models.MessageDoc) (string, error) {
	return s.store.Push(ctx, messagesPath(roomID), doc)
}

// AppendDrawing pushes a drawing action or clear marker onto the drawing log.
func (s *RoomService) AppendDrawing(ctx context.Context, roomID string, doc models.DrawingDoc) (string, error) {
	return s.store.Push(ctx, drawingsPath(roomID), doc)
}

// RemovePlayer deletes the player document and roster entry, then refreshes
// the room's player count.
func (s *RoomService) RemovePlayer(ctx context.Context, roomID, playerID string, remaining int) error {
	if err := s.store.Delete(ctx, playerPath(playerID)); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, rosterPath(roomID)+"/"+playerID); err != nil {
		return err
	}
	return s.UpdateRoom(ctx, roomID, map[string]interface{}{"currentPlayers": remaining})
}

// DeleteRoom removes the room, every sub-path it owns and the documents of
// any players still mirrored when the room dies. Called in the same cleanup
// operation that drops the room from the registry, so the mirror is never
// left dangling.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string, playerIDs []string) error {
	paths := []string{
		roomPath(roomID),
		rosterPath(roomID),
		messagesPath(roomID),
		drawingsPath(roomID),
	}
	for _, playerID := range playerIDs {
		paths = append(paths, playerPath(playerID))
	}
	var firstErr error
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoadRoom reads the mirrored room document; only the admin surface uses it,
// gameplay never reads the store back.
func (s *RoomService) LoadRoom(ctx context.Context, roomID string) (map[string]interface{}, error) {
	return s.store.Get(ctx, roomPath(roomID))
}
