package canvas

import "sync"

// History is the undo/redo state machine. Every transition stores clones,
// so callers may keep mutating the snapshots they pass in or receive.
type History struct {
	mu      sync.Mutex
	undo    []Snapshot
	redo    []Snapshot
	current Snapshot
}

func NewHistory(initial Snapshot) *History {
	return &History{current: initial.Clone()}
}

// Mutate records the current state for undo, drops the redo stack and
// makes next current.
func (h *History) Mutate(next Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undo = append(h.undo, h.current)
	h.redo = nil
	h.current = next.Clone()
}

// Clear is a mutation to the empty canvas.
func (h *History) Clear() {
	h.Mutate(Snapshot{})
}

func (h *History) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undo) == 0 {
		return false
	}
	last := len(h.undo) - 1
	h.redo = append(h.redo, h.current)
	h.current = h.undo[last]
	h.undo = h.undo[:last]
	return true
}

func (h *History) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redo) == 0 {
		return false
	}
	last := len(h.redo) - 1
	h.undo = append(h.undo, h.current)
	h.current = h.redo[last]
	h.redo = h.redo[:last]
	return true
}

func (h *History) Current() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Clone()
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}
