package types

// DefaultHistoryCapacity bounds the snapshot stack when the configuration
// does not say otherwise.
const DefaultHistoryCapacity = 16

// History is a bounded stack of full table snapshots with an undo/redo
// cursor. A snapshot is taken just before each tracked command runs, so the
// entry below the cursor is always the state one undo restores. History
// stores and returns deep copies only; nothing it holds aliases the live
// table.
type History struct {
	snapshots []snapshot
	cursor    int    // number of snapshots behind us; == len(snapshots) at the tip
	capacity  int    // maximum stored snapshots
	tip       *Table // live state, backed up on the first undo from the tip
}

type snapshot struct {
	table *Table
	label string // the command the snapshot was taken before
}

// NewHistory returns a history bounded to capacity snapshots. Zero or
// negative capacity selects DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Snapshot records a deep copy of t as the newest undo point, labeled with
// the command about to run. Taking a snapshot while undos are outstanding
// discards every snapshot beyond the cursor along with the backed-up tip:
// the redo branch is gone for good. When the stack would exceed capacity
// the oldest snapshot is evicted and the cursor stays put.
func (h *History) Snapshot(t *Table, label string) {
	if h.cursor < len(h.snapshots) {
		h.snapshots = h.snapshots[:h.cursor]
	}
	// The live table diverges from here, so any backed-up tip is stale
	// even when no undos are outstanding (undo then redo leaves one).
	h.tip = nil
	h.snapshots = append(h.snapshots, snapshot{table: t.Clone(), label: label})
	if len(h.snapshots) > h.capacity {
		h.snapshots = h.snapshots[1:]
		return
	}
	h.cursor++
}

// Undo steps the cursor back one snapshot and returns a copy of the table
// state to restore, or false when no undo is left. The live table passed in
// is backed up on the first undo from the tip so that redos can come all
// the way back to it.
func (h *History) Undo(current *Table) (*Table, bool) {
	if h.cursor == 0 {
		return nil, false
	}
	if h.cursor == len(h.snapshots) && h.tip == nil {
		h.tip = current.Clone()
	}
	h.cursor--
	return h.snapshots[h.cursor].table.Clone(), true
}

// Redo steps the cursor forward and returns a copy of the table state to
// restore: the next snapshot, or the backed-up tip once the cursor reaches
// the end of the stack. Returns false at the tip.
func (h *History) Redo() (*Table, bool) {
	if h.cursor >= len(h.snapshots) {
		return nil, false
	}
	h.cursor++
	if h.cursor == len(h.snapshots) {
		return h.tip.Clone(), true
	}
	return h.snapshots[h.cursor].table.Clone(), true
}

// Reset drops every snapshot and the backed-up tip.
func (h *History) Reset() {
	h.snapshots = nil
	h.cursor = 0
	h.tip = nil
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cursor returns the undo cursor: how many snapshots are behind the
// current state.
func (h *History) Cursor() int {
	return h.cursor
}

// Capacity returns the maximum number of stored snapshots.
func (h *History) Capacity() int {
	return h.capacity
}

// Labels returns the snapshot labels oldest first.
func (h *History) Labels() []string {
	labels := make([]string, len(h.snapshots))
	for i, s := range h.snapshots {
		labels[i] = s.label
	}
	return labels
}
