package persistence

import (
	"context"
	"testing"
)

func TestMemory_SetGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Set(ctx, "rooms/AB12CD", map[string]interface{}{"status": "waiting"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := store.Get(ctx, "rooms/AB12CD")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value["status"] != "waiting" {
		t.Errorf("Expected status waiting, got %v", value["status"])
	}
}

func TestMemory_GetMissing(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), "rooms/NOPE")
	if err != ErrPathNotFound {
		t.Fatalf("Expected ErrPathNotFound, got %v", err)
	}
}

func TestMemory_UpdateMergesFields(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	store.Set(ctx, "rooms/AB12CD", map[string]interface{}{"status": "waiting", "currentPlayers": 1})
	store.Update(ctx, "rooms/AB12CD", map[string]interface{}{"status": "playing"})

	value, _ := store.Get(ctx, "rooms/AB12CD")
	if value["status"] != "playing" {
		t.Errorf("Expected merged status playing, got %v", value["status"])
	}
	if value["currentPlayers"] == nil {
		t.Error("Update should not drop untouched fields")
	}
}

func TestMemory_DeleteRemovesSubtree(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	store.Set(ctx, "rooms/AB12CD", map[string]interface{}{"status": "waiting"})
	store.Set(ctx, "roomPlayers/AB12CD/p1", map[string]interface{}{"joined": true})
	store.Set(ctx, "roomPlayers/AB12CD/p2", map[string]interface{}{"joined": true})

	if err := store.Delete(ctx, "roomPlayers/AB12CD"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "roomPlayers/AB12CD/p1"); err != ErrPathNotFound {
		t.Error("Subtree children should be deleted")
	}
	if _, err := store.Get(ctx, "rooms/AB12CD"); err != nil {
		t.Error("Sibling trees must survive a subtree delete")
	}
}

func TestMemory_PushGeneratesDistinctKeys(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	k1, err := store.Push(ctx, "messages/AB12CD", map[string]interface{}{"message": "hi"})
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	k2, _ := store.Push(ctx, "messages/AB12CD", map[string]interface{}{"message": "yo"})

	if k1 == "" || k1 == k2 {
		t.Errorf("Push keys should be distinct and non-empty, got %q and %q", k1, k2)
	}

	if _, err := store.Get(ctx, "messages/AB12CD/"+k1); err != nil {
		t.Errorf("Pushed child should be readable: %v", err)
	}
}

func TestMemory_SubscribeChildAdded(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	store.Push(ctx, "messages/AB12CD", map[string]interface{}{"message": "one"})
	store.Push(ctx, "messages/AB12CD", map[string]interface{}{"message": "two"})

	var got []string
	unsubscribe, err := store.SubscribeChildAdded(ctx, "messages/AB12CD", 1, func(key string, value map[string]interface{}) {
		got = append(got, value["message"].(string))
	})
	if err != nil {
		t.Fatalf("SubscribeChildAdded failed: %v", err)
	}

	// Replay honors the limit: only the most recent child.
	if len(got) != 1 || got[0] != "two" {
		t.Fatalf("Expected replay of [two], got %v", got)
	}

	store.Push(ctx, "messages/AB12CD", map[string]interface{}{"message": "three"})
	if len(got) != 2 || got[1] != "three" {
		t.Fatalf("Expected live delivery of three, got %v", got)
	}

	unsubscribe()
	store.Push(ctx, "messages/AB12CD", map[string]interface{}{"message": "four"})
	if len(got) != 2 {
		t.Errorf("No delivery after unsubscribe, got %v", got)
	}
}

func TestNormalize_RejectsNonObjects(t *testing.T) {
	if _, err := normalize([]string{"not", "an", "object"}); err == nil {
		t.Error("normalize should reject non-object values")
	}
	if _, err := normalize(42); err == nil {
		t.Error("normalize should reject scalars")
	}
}
