package types

import "testing"

func editCell(t *testing.T, table *Table, text string) {
	t.Helper()
	if err := table.SetCell(0, 0, NewText(text)); err != nil {
		t.Fatalf("SetCell(%q) error = %v", text, err)
	}
}

func cell00(t *testing.T, table *Table) string {
	t.Helper()
	v, err := table.CellAt(0, 0)
	if err != nil {
		t.Fatalf("CellAt(0, 0) error = %v", err)
	}
	return v.String()
}

func TestHistoryUndoRedo(t *testing.T) {
	table := mustTable(t, [][]string{{"c"}, {"v0"}}, true)
	h := NewHistory(0)

	h.Snapshot(table, "edit-cell")
	editCell(t, table, "v1")
	h.Snapshot(table, "edit-cell")
	editCell(t, table, "v2")

	restored, ok := h.Undo(table)
	if !ok {
		t.Fatal("Undo() = false, want true")
	}
	if got := cell00(t, restored); got != "v1" {
		t.Errorf("after undo cell = %q, want v1", got)
	}
	restored, ok = h.Undo(restored)
	if !ok {
		t.Fatal("second Undo() = false, want true")
	}
	if got := cell00(t, restored); got != "v0" {
		t.Errorf("after second undo cell = %q, want v0", got)
	}

	restored, ok = h.Redo()
	if !ok {
		t.Fatal("Redo() = false, want true")
	}
	if got := cell00(t, restored); got != "v1" {
		t.Errorf("after redo cell = %q, want v1", got)
	}
	restored, ok = h.Redo()
	if !ok {
		t.Fatal("second Redo() = false, want true")
	}
	if got := cell00(t, restored); got != "v2" {
		t.Errorf("redo back to the tip gave %q, want v2", got)
	}
	if _, ok := h.Redo(); ok {
		t.Error("Redo() at the tip = true, want false")
	}
}

func TestHistoryUndoEmpty(t *testing.T) {
	h := NewHistory(0)
	if _, ok := h.Undo(NewTable()); ok {
		t.Error("Undo() on empty history = true, want false")
	}
	if _, ok := h.Redo(); ok {
		t.Error("Redo() on empty history = true, want false")
	}
}

func TestHistoryBranchDiscard(t *testing.T) {
	table := mustTable(t, [][]string{{"c"}, {"v0"}}, true)
	h := NewHistory(0)

	for _, text := range []string{"v1", "v2", "v3"} {
		h.Snapshot(table, "edit-cell")
		editCell(t, table, text)
	}
	restored, ok := h.Undo(table)
	if !ok {
		t.Fatal("Undo() = false, want true")
	}
	table = restored // back at v2

	h.Snapshot(table, "edit-cell")
	editCell(t, table, "v4")

	if _, ok := h.Redo(); ok {
		t.Error("Redo() after a branching edit = true, want false: the old branch is discarded")
	}
	restored, ok = h.Undo(table)
	if !ok {
		t.Fatal("Undo() after branch error")
	}
	if got := cell00(t, restored); got != "v2" {
		t.Errorf("undo after branch gave %q, want v2", got)
	}
}

func TestHistoryTipRefreshedAfterRedo(t *testing.T) {
	table := mustTable(t, [][]string{{"c"}, {"v0"}}, true)
	h := NewHistory(0)

	h.Snapshot(table, "edit-cell")
	editCell(t, table, "v1")

	// Undo backs up v1 as the tip; redo brings it back.
	restored, ok := h.Undo(table)
	if !ok {
		t.Fatal("Undo() = false, want true")
	}
	table = restored
	restored, ok = h.Redo()
	if !ok {
		t.Fatal("Redo() = false, want true")
	}
	table = restored // v1 again

	// A fresh edit at the tip must replace that backup, not reuse it.
	h.Snapshot(table, "edit-cell")
	editCell(t, table, "v2")

	restored, ok = h.Undo(table)
	if !ok {
		t.Fatal("Undo() after new edit = false, want true")
	}
	table = restored
	restored, ok = h.Redo()
	if !ok {
		t.Fatal("Redo() after new edit = false, want true")
	}
	if got := cell00(t, restored); got != "v2" {
		t.Errorf("redo restored %q, want the post-edit state v2", got)
	}
}

func TestHistoryCapacityEviction(t *testing.T) {
	table := mustTable(t, [][]string{{"c"}, {"v0"}}, true)
	h := NewHistory(2)

	for _, text := range []string{"v1", "v2", "v3"} {
		h.Snapshot(table, "edit-cell")
		editCell(t, table, text)
	}
	if got := h.Len(); got != 2 {
		t.Fatalf("Len() = %d with capacity 2, want 2", got)
	}

	// Exactly two undos are available; the oldest state is gone.
	restored, ok := h.Undo(table)
	if !ok {
		t.Fatal("first Undo() = false, want true")
	}
	if got := cell00(t, restored); got != "v2" {
		t.Errorf("first undo gave %q, want v2", got)
	}
	restored, ok = h.Undo(restored)
	if !ok {
		t.Fatal("second Undo() = false, want true")
	}
	if got := cell00(t, restored); got != "v1" {
		t.Errorf("second undo gave %q, want v1", got)
	}
	if _, ok := h.Undo(restored); ok {
		t.Error("third Undo() = true, want false: v0 was evicted")
	}
}

func TestHistorySnapshotIsolation(t *testing.T) {
	table := mustTable(t, [][]string{{"c"}, {"v0"}}, true)
	h := NewHistory(0)
	h.Snapshot(table, "edit-cell")
	editCell(t, table, "v1")

	restored, ok := h.Undo(table)
	if !ok {
		t.Fatal("Undo() = false, want true")
	}
	// Mutating the restored copy must not corrupt the stored snapshot.
	editCell(t, restored, "scribble")
	again, ok := h.Redo()
	if !ok {
		t.Fatal("Redo() = false, want true")
	}
	if got := cell00(t, again); got != "v1" {
		t.Errorf("redo after mutating a restored copy gave %q, want v1", got)
	}
}

func TestHistoryReset(t *testing.T) {
	table := mustTable(t, [][]string{{"c"}, {"v0"}}, true)
	h := NewHistory(0)
	h.Snapshot(table, "edit-cell")
	h.Reset()
	if h.Len() != 0 || h.Cursor() != 0 {
		t.Errorf("after Reset Len = %d Cursor = %d, want 0 0", h.Len(), h.Cursor())
	}
	if _, ok := h.Undo(table); ok {
		t.Error("Undo() after Reset = true, want false")
	}
}

func TestHistoryLabels(t *testing.T) {
	table := mustTable(t, [][]string{{"c"}, {"v0"}}, true)
	h := NewHistory(0)
	h.Snapshot(table, "add-row")
	h.Snapshot(table, "edit-cell")
	labels := h.Labels()
	if len(labels) != 2 || labels[0] != "add-row" || labels[1] != "edit-cell" {
		t.Errorf("Labels() = %v, want [add-row edit-cell]", labels)
	}
}

func TestNewHistoryCapacityFloor(t *testing.T) {
	if got := NewHistory(0).Capacity(); got != DefaultHistoryCapacity {
		t.Errorf("NewHistory(0).Capacity() = %d, want %d", got, DefaultHistoryCapacity)
	}
	if got := NewHistory(-3).Capacity(); got != DefaultHistoryCapacity {
		t.Errorf("NewHistory(-3).Capacity() = %d, want %d", got, DefaultHistoryCapacity)
	}
	if got := NewHistory(5).Capacity(); got != 5 {
		t.Errorf("NewHistory(5).Capacity() = %d, want 5", got)
	}
}
