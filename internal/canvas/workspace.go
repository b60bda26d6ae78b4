package canvas

import "go.uber.org/zap"

// Workspace keeps a History in step with its persisted copy.
type Workspace struct {
	history *History
	kv      KV
	log     *zap.Logger
}

// Open restores the persisted canvas as the initial history state.
func Open(kv KV, log *zap.Logger) *Workspace {
	return &Workspace{history: NewHistory(Load(kv, log)), kv: kv, log: log}
}

func (w *Workspace) History() *History { return w.history }

func (w *Workspace) Current() Snapshot { return w.history.Current() }

// Apply records next as a mutation and auto-saves it.
func (w *Workspace) Apply(next Snapshot) error {
	w.history.Mutate(next)
	return Save(w.kv, next)
}

// Undo steps back and persists the restored state even when it is empty.
func (w *Workspace) Undo() (bool, error) {
	if !w.history.Undo() {
		return false, nil
	}
	return true, Persist(w.kv, w.history.Current())
}

func (w *Workspace) Redo() (bool, error) {
	if !w.history.Redo() {
		return false, nil
	}
	return true, Persist(w.kv, w.history.Current())
}

// Clear empties the canvas and drops the persisted keys.
func (w *Workspace) Clear() error {
	w.history.Clear()
	return Clear(w.kv)
}
