// persistence/interface.go
package persistence

import (
	"context"
	"errors"
)

// Store is the durable store adapter: a hierarchical key-path document
// service used strictly as a downstream recovery/visibility mirror. It is
// never authoritative for live gameplay decisions, there are no cross-path
// transactions, and multi-path updates are sequential best-effort writes.
//
// Paths are slash-separated (rooms/AB12CD, messages/AB12CD/<key>). Values
// are JSON objects.
type Store interface {
	// Get returns the value at path, or ErrPathNotFound.
	Get(ctx context.Context, path string) (map[string]interface{}, error)
	// Set overwrites the value at path, creating it if needed.
	Set(ctx context.Context, path string, value interface{}) error
	// Update merges fields into the value at path, creating it if needed.
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	// Delete removes path and its whole subtree.
	Delete(ctx context.Context, path string) error
	// Push appends value under path with a generated child key.
	Push(ctx context.Context, path string, value interface{}) (string, error)
	// SubscribeChildAdded replays up to limit most recent children of path
	// and then invokes fn for every later append, until the returned
	// unsubscribe function is called.
	SubscribeChildAdded(ctx context.Context, path string, limit int, fn ChildAddedFunc) (Unsubscribe, error)
	Close() error
}

// ChildAddedFunc receives a child key and its value.
type ChildAddedFunc func(key string, value map[string]interface{})

// Unsubscribe tears one subscription down.
type Unsubscribe func()

// 错误定义
var (
	ErrPathNotFound = errors.New("path not found")
)
