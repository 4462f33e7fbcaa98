package types

// Row is one record: an ordered slice of cells, one per column, addressed
// by column position. The Table owning a row keeps its length in lock-step
// with the column list and validates indices before touching cells, so row
// methods index their slice directly and an out-of-range index panics as an
// internal invariant violation.
type Row struct {
	cells []Value
}

// NewRow returns a row over a copy of values.
func NewRow(values []Value) Row {
	return Row{cells: append([]Value(nil), values...)}
}

// Len returns the number of cells.
func (r Row) Len() int {
	return len(r.cells)
}

// At returns the cell at index.
func (r Row) At(index int) Value {
	return r.cells[index]
}

// SetAt overwrites the cell at index.
func (r *Row) SetAt(index int, v Value) {
	r.cells[index] = v
}

// InsertAt inserts a cell at index, shifting later cells right.
func (r *Row) InsertAt(index int, v Value) {
	r.cells = append(r.cells, Value{})
	copy(r.cells[index+1:], r.cells[index:])
	r.cells[index] = v
}

// RemoveAt removes the cell at index, shifting later cells left.
func (r *Row) RemoveAt(index int) {
	r.cells = append(r.cells[:index], r.cells[index+1:]...)
}

// Swap exchanges the cells at i and j.
func (r *Row) Swap(i, j int) {
	r.cells[i], r.cells[j] = r.cells[j], r.cells[i]
}

// Values returns a copy of the cells in column order.
func (r Row) Values() []Value {
	return append([]Value(nil), r.cells...)
}

// Strings returns the textual form of each cell in column order.
func (r Row) Strings() []string {
	out := make([]string, len(r.cells))
	for i, v := range r.cells {
		out[i] = v.String()
	}
	return out
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	return NewRow(r.cells)
}
