// persistence/memory.go
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It backs tests and single-node deployments
// that do not need cross-process visibility.
type Memory struct {
	mutex       sync.RWMutex
	values      map[string]map[string]interface{}
	children    map[string][]string // parent -> child keys in append order
	subscribers map[string]map[int64]ChildAddedFunc
	nextSubID   int64
}

func NewMemory() *Memory {
	return &Memory{
		values:      make(map[string]map[string]interface{}),
		children:    make(map[string][]string),
		subscribers: make(map[string]map[int64]ChildAddedFunc),
	}
}

// normalize round-trips value through JSON so every backend stores the same
// object shape regardless of the caller's Go type.
func normalize(value interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("store values must be JSON objects: %w", err)
	}
	return obj, nil
}

func splitPath(path string) (parent, key string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

func (m *Memory) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, exists := m.values[path]
	if !exists {
		return nil, ErrPathNotFound
	}
	return value, nil
}

func (m *Memory) Set(ctx context.Context, path string, value interface{}) error {
	obj, err := normalize(value)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	_, existed := m.values[path]
	m.values[path] = obj
	parent, key := splitPath(path)
	if !existed {
		m.children[parent] = append(m.children[parent], key)
	}
	subs := make([]ChildAddedFunc, 0, len(m.subscribers[parent]))
	if !existed {
		for _, fn := range m.subscribers[parent] {
			subs = append(subs, fn)
		}
	}
	m.mutex.Unlock()

	for _, fn := range subs {
		fn(key, obj)
	}
	return nil
}

func (m *Memory) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	obj, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.values[path]
	if !exists {
		m.values[path] = obj
		parent, key := splitPath(path)
		m.children[parent] = append(m.children[parent], key)
		return nil
	}
	for k, v := range obj {
		existing[k] = v
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	prefix := path + "/"
	for p := range m.values {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.values, p)
		}
	}
	for p := range m.children {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.children, p)
		}
	}
	parent, key := splitPath(path)
	kids := m.children[parent]
	for i, k := range kids {
		if k == key {
			m.children[parent] = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Push(ctx context.Context, path string, value interface{}) (string, error) {
	key := uuid.New().String()
	if err := m.Set(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (m *Memory) SubscribeChildAdded(ctx context.Context, path string, limit int, fn ChildAddedFunc) (Unsubscribe, error) {
	m.mutex.Lock()
	if m.subscribers[path] == nil {
		m.subscribers[path] = make(map[int64]ChildAddedFunc)
	}
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[path][id] = fn

	// Replay the most recent children, oldest first.
	kids := m.children[path]
	if limit > 0 && len(kids) > limit {
		kids = kids[len(kids)-limit:]
	}
	type replay struct {
		key   string
		value map[string]interface{}
	}
	replays := make([]replay, 0, len(kids))
	for _, k := range kids {
		if v, ok := m.values[path+"/"+k]; ok {
			replays = append(replays, replay{k, v})
		}
	}
	m.mutex.Unlock()

	for _, r := range replays {
		fn(r.key, r.value)
	}

	unsubscribe := func() {
		m.mutex.Lock()
		delete(m.subscribers[path], id)
		m.mutex.Unlock()
	}
	return unsubscribe, nil
}

func (m *Memory) Close() error {
	return nil
}
