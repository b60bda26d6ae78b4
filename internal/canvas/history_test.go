package canvas

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(ids ...string) Snapshot {
	s := Snapshot{Nodes: []Node{}, Edges: []Edge{}}
	for i, id := range ids {
		s.Nodes = append(s.Nodes, Node{
			ID:       id,
			Type:     "component",
			Position: &Position{X: float64(i * 10), Y: 5},
			Data:     json.RawMessage(`{"label":"` + id + `"}`),
		})
	}
	if len(ids) > 1 {
		s.Edges = append(s.Edges, Edge{ID: "e-" + ids[0], Source: ids[0], Target: ids[1]})
	}
	return s
}

func TestHistory_UndoRestoresPrior(t *testing.T) {
	before := snap("a")
	after := snap("a", "b")
	h := NewHistory(before)

	h.Mutate(after)
	require.True(t, h.Undo())
	if diff := cmp.Diff(before, h.Current()); diff != "" {
		t.Fatalf("undo mismatch (-want +got):\n%s", diff)
	}

	require.True(t, h.Redo())
	if diff := cmp.Diff(after, h.Current()); diff != "" {
		t.Fatalf("redo mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_MutateClearsRedo(t *testing.T) {
	h := NewHistory(snap())
	h.Mutate(snap("a"))
	h.Mutate(snap("a", "b"))

	require.True(t, h.Undo())
	assert.True(t, h.CanRedo())

	h.Mutate(snap("c"))
	assert.False(t, h.CanRedo())
	assert.False(t, h.Redo())
	assert.True(t, h.CanUndo())
}

func TestHistory_EmptyStacks(t *testing.T) {
	h := NewHistory(snap("a"))
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
	if diff := cmp.Diff(snap("a"), h.Current()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestHistory_FullWalk(t *testing.T) {
	states := []Snapshot{snap(), snap("a"), snap("a", "b"), snap("a", "b", "c")}
	h := NewHistory(states[0])
	for _, s := range states[1:] {
		h.Mutate(s)
	}

	for i := len(states) - 2; i >= 0; i-- {
		require.True(t, h.Undo())
		if diff := cmp.Diff(states[i], h.Current()); diff != "" {
			t.Fatalf("undo to %d (-want +got):\n%s", i, diff)
		}
	}
	assert.False(t, h.CanUndo())

	for i := 1; i < len(states); i++ {
		require.True(t, h.Redo())
		if diff := cmp.Diff(states[i], h.Current()); diff != "" {
			t.Fatalf("redo to %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestHistory_SnapshotsAreIsolated(t *testing.T) {
	live := snap("a")
	h := NewHistory(snap())
	h.Mutate(live)

	live.Nodes[0].Position.X = 999
	live.Nodes[0].Data[2] = 'X'

	got := h.Current()
	assert.Equal(t, float64(0), got.Nodes[0].Position.X)
	assert.JSONEq(t, `{"label":"a"}`, string(got.Nodes[0].Data))

	got.Nodes[0].ID = "changed"
	assert.Equal(t, "a", h.Current().Nodes[0].ID)
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(snap("a"))
	h.Clear()
	assert.True(t, h.Current().Empty())

	require.True(t, h.Undo())
	assert.Equal(t, "a", h.Current().Nodes[0].ID)
}
