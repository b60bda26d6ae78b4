package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	NodesKey = "aibuilder-canvas-nodes"
	EdgesKey = "aibuilder-canvas-edges"
)

var ErrKeyNotFound = errors.New("key not found")

// KV is a string key/value store shaped like browser local storage.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Load reads the persisted canvas. Entries missing required fields are
// dropped; unreadable JSON wipes both keys and yields an empty canvas.
func Load(kv KV, log *zap.Logger) Snapshot {
	var snap Snapshot

	rawNodes, nodesErr := kv.Get(NodesKey)
	rawEdges, edgesErr := kv.Get(EdgesKey)

	if nodesErr == nil {
		var nodes []Node
		if err := json.Unmarshal([]byte(rawNodes), &nodes); err != nil {
			log.Warn("discarding corrupt canvas state", zap.String("key", NodesKey), zap.Error(err))
			reset(kv, log)
			return Snapshot{}
		}
		snap.Nodes = validNodes(nodes)
	}
	if edgesErr == nil {
		var edges []Edge
		if err := json.Unmarshal([]byte(rawEdges), &edges); err != nil {
			log.Warn("discarding corrupt canvas state", zap.String("key", EdgesKey), zap.Error(err))
			reset(kv, log)
			return Snapshot{}
		}
		snap.Edges = validEdges(edges)
	}
	return snap
}

// Save is the auto-save path: an empty snapshot leaves storage untouched.
func Save(kv KV, snap Snapshot) error {
	if snap.Empty() {
		return nil
	}
	return Persist(kv, snap)
}

// Persist writes both keys, including an empty canvas.
func Persist(kv KV, snap Snapshot) error {
	nodes, err := json.Marshal(nonNilNodes(snap.Nodes))
	if err != nil {
		return fmt.Errorf("encode nodes: %w", err)
	}
	edges, err := json.Marshal(nonNilEdges(snap.Edges))
	if err != nil {
		return fmt.Errorf("encode edges: %w", err)
	}
	if err := kv.Set(NodesKey, string(nodes)); err != nil {
		return fmt.Errorf("save nodes: %w", err)
	}
	if err := kv.Set(EdgesKey, string(edges)); err != nil {
		return fmt.Errorf("save edges: %w", err)
	}
	return nil
}

// Clear removes both keys.
func Clear(kv KV) error {
	for _, key := range []string{NodesKey, EdgesKey} {
		if err := kv.Remove(key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}

func reset(kv KV, log *zap.Logger) {
	for _, key := range []string{NodesKey, EdgesKey} {
		if err := kv.Remove(key); err != nil {
			log.Warn("clear canvas key", zap.String("key", key), zap.Error(err))
		}
	}
}

func validNodes(in []Node) []Node {
	out := make([]Node, 0, len(in))
	for _, n := range in {
		if n.ID == "" || n.Position == nil || len(n.Data) == 0 || string(n.Data) == "null" {
			continue
		}
		out = append(out, n)
	}
	return out
}

func validEdges(in []Edge) []Edge {
	out := make([]Edge, 0, len(in))
	for _, e := range in {
		if e.ID == "" || e.Source == "" || e.Target == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func nonNilNodes(n []Node) []Node {
	if n == nil {
		return []Node{}
	}
	return n
}

func nonNilEdges(e []Edge) []Edge {
	if e == nil {
		return []Edge{}
	}
	return e
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
