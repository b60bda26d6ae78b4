// Package canvas models the drag-and-drop editor graph and its undo/redo
// history. Nothing here touches the server's storage; the editor keeps its
// state in browser local storage through the KV interface.
package canvas

import "encoding/json"

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Node struct {
	ID       string          `json:"id"`
	Type     string          `json:"type,omitempty"`
	Position *Position       `json:"position"`
	Data     json.RawMessage `json:"data"`
}

type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// Snapshot is the full canvas state at one point in history.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func (s Snapshot) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0
}

// Clone deep-copies the snapshot so history entries never alias live state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		if n.Position != nil {
			pos := *n.Position
			n.Position = &pos
		}
		if n.Data != nil {
			n.Data = append(json.RawMessage(nil), n.Data...)
		}
		out.Nodes[i] = n
	}
	copy(out.Edges, s.Edges)
	return out
}
