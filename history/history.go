// Package history implements the linear undo/redo timeline behind the
// drawing canvas: an ordered sequence of opaque snapshots with a cursor.
package history

// DefaultLimit is how many snapshots a history keeps before evicting the
// oldest ones.
const DefaultLimit = 50

// History is a bounded linear undo/redo stack. It is not safe for
// concurrent use; each drawing workspace owns exactly one and serializes
// access to it.
type History struct {
	snapshots []string
	cursor    int
	limit     int
}

// New returns an empty history with the default snapshot limit.
func New() *History {
	return NewWithLimit(DefaultLimit)
}

// NewWithLimit returns an empty history keeping at most limit snapshots.
func NewWithLimit(limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &History{cursor: -1, limit: limit}
}

// Push appends a snapshot after the cursor, discarding any redo entries
// beyond it. When the sequence would exceed the limit the oldest snapshot
// is evicted and the cursor keeps pointing at the snapshot just pushed.
func (h *History) Push(snapshot string) {
	h.snapshots = append(h.snapshots[:h.cursor+1], snapshot)
	if len(h.snapshots) > h.limit {
		h.snapshots = h.snapshots[1:]
	}
	h.cursor = len(h.snapshots) - 1
}

// Undo moves the cursor one step back. It reports false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if h.cursor <= 0 {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor one step forward. It reports false when there is
// nothing to redo.
func (h *History) Redo() bool {
	if h.cursor >= len(h.snapshots)-1 {
		return false
	}
	h.cursor++
	return true
}

// Current returns the snapshot under the cursor. The second return value is
// false when the history is empty.
func (h *History) Current() (string, bool) {
	if h.cursor < 0 {
		return "", false
	}
	return h.snapshots[h.cursor], true
}

// Clear resets the history to empty. Saved gallery items are unaffected;
// they live outside the history entirely.
func (h *History) Clear() {
	h.snapshots = nil
	h.cursor = -1
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.snapshots)-1
}

// Len returns the number of snapshots currently held.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cursor returns the current cursor index, -1 when empty.
func (h *History) Cursor() int {
	return h.cursor
}
