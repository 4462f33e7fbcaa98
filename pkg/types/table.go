package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Table addressing and structure errors.
var (
	ErrOutOfRange        = errors.New("index out of range")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrRowLengthMismatch = errors.New("row length does not match column count")
)

// Table is the in-memory tabular container: an ordered column list, an
// ordered row list, and a name-to-position index kept consistent by every
// structural operation. All indices are 0-based. Every row always has
// exactly one cell per column, and a table with no columns holds no rows.
// Tables are not safe for concurrent use.
type Table struct {
	columns  []Column
	rows     []Row
	colIndex map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{colIndex: map[string]int{}}
}

// FromRecords builds a table from parsed delimited records. With hasHeader
// the first record names the columns; otherwise columns are auto-named
// a, b, ..., z, aa, ab, ... so generated names never collide with
// positional addressing. All columns are Text-typed and every cell is taken
// verbatim. Records narrower or wider than the first one are rejected with
// ErrRowLengthMismatch; header names that are duplicated or parse as
// integers are rejected with ErrInvalidColumnName.
func FromRecords(records [][]string, hasHeader bool) (*Table, error) {
	t := NewTable()
	if len(records) == 0 {
		return t, nil
	}
	var names []string
	if hasHeader {
		names = records[0]
		records = records[1:]
	} else {
		names = autoColumnNames(len(records[0]))
	}
	for i, name := range names {
		if err := t.InsertColumn(i, name, ValueTypeText, nil, nil); err != nil {
			return nil, err
		}
	}
	for _, record := range records {
		if len(record) != len(names) {
			return nil, fmt.Errorf("%w: record has %d fields, header has %d",
				ErrRowLengthMismatch, len(record), len(names))
		}
		values := make([]Value, len(record))
		for i, field := range record {
			values[i] = NewText(field)
		}
		if err := t.InsertRow(t.RowCount(), values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// autoColumnNames generates n spreadsheet-style names: a..z, aa, ab, ...
func autoColumnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		var b []byte
		for j := i; j >= 0; j = j/26 - 1 {
			b = append([]byte{byte('a' + j%26)}, b...)
		}
		names[i] = string(b)
	}
	return names
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// ColumnNames returns the column names in display order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnAt returns a copy of the column definition at index.
func (t *Table) ColumnAt(index int) (Column, error) {
	if err := t.checkColumn(index); err != nil {
		return Column{}, err
	}
	return t.columns[index].clone(), nil
}

// RowAt returns a copy of the row at index.
func (t *Table) RowAt(index int) (Row, error) {
	if err := t.checkRow(index); err != nil {
		return Row{}, err
	}
	return t.rows[index].Clone(), nil
}

// CellAt returns the value at (row, col).
func (t *Table) CellAt(row, col int) (Value, error) {
	if err := t.checkRow(row); err != nil {
		return Value{}, err
	}
	if err := t.checkColumn(col); err != nil {
		return Value{}, err
	}
	return t.rows[row].At(col), nil
}

// ResolveColumn resolves a column token to its index. A token that parses
// as an integer is positional and bounds-checked; anything else is a name
// lookup. Returns ErrOutOfRange for a bad position and ErrUnknownColumn for
// an unknown name.
func (t *Table) ResolveColumn(token string) (int, error) {
	if n, err := strconv.Atoi(token); err == nil {
		if err := t.checkColumn(n); err != nil {
			return 0, err
		}
		return n, nil
	}
	if i, ok := t.colIndex[token]; ok {
		return i, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, token)
}

// InsertColumn inserts a column at index, shifting later columns right;
// index == ColumnCount() appends. The name must pass ValidColumnName and be
// unique. When limiter is non-nil it becomes the column's limiter and its
// type becomes the column's type. Every existing row gains a cell: the
// placeholder if given (it must qualify), else the column's default.
func (t *Table) InsertColumn(index int, name string, vt ValueType, limiter *ValueLimiter, placeholder *Value) error {
	if index < 0 || index > len(t.columns) {
		return fmt.Errorf("%w: column %d of %d", ErrOutOfRange, index, len(t.columns))
	}
	if !ValidColumnName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidColumnName, name)
	}
	if _, exists := t.colIndex[name]; exists {
		return fmt.Errorf("%w: %q already exists", ErrInvalidColumnName, name)
	}
	col := NewColumn(name, vt)
	if limiter != nil {
		col.SetLimiter(limiter.clone())
	}
	fill := col.DefaultValue()
	if placeholder != nil {
		if err := qualify(col, *placeholder); err != nil {
			return err
		}
		fill = *placeholder
	}
	t.columns = append(t.columns, Column{})
	copy(t.columns[index+1:], t.columns[index:])
	t.columns[index] = col
	for i := range t.rows {
		t.rows[i].InsertAt(index, fill)
	}
	t.reindex()
	return nil
}

// DeleteColumn removes the column at index along with its cell in every
// row. Deleting the last remaining column drops all rows, since a table
// with no columns cannot hold rows.
func (t *Table) DeleteColumn(index int) error {
	if err := t.checkColumn(index); err != nil {
		return err
	}
	t.columns = append(t.columns[:index], t.columns[index+1:]...)
	if len(t.columns) == 0 {
		t.rows = nil
	} else {
		for i := range t.rows {
			t.rows[i].RemoveAt(index)
		}
	}
	t.reindex()
	return nil
}

// RenameColumn renames the column at index. The new name obeys the same
// rules as InsertColumn. Renaming a column to its current name is a no-op.
func (t *Table) RenameColumn(index int, name string) error {
	if err := t.checkColumn(index); err != nil {
		return err
	}
	if name == t.columns[index].Name {
		return nil
	}
	if !ValidColumnName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidColumnName, name)
	}
	if _, exists := t.colIndex[name]; exists {
		return fmt.Errorf("%w: %q already exists", ErrInvalidColumnName, name)
	}
	t.columns[index].Rename(name)
	t.reindex()
	return nil
}

// MoveColumn moves the column at src to dst by walking adjacent swaps, so
// the columns between them shift one position and all other relative order
// is preserved. The matching cell of every row moves along. No-op when
// src == dst.
func (t *Table) MoveColumn(src, dst int) error {
	if err := t.checkColumn(src); err != nil {
		return err
	}
	if err := t.checkColumn(dst); err != nil {
		return err
	}
	for src < dst {
		t.swapColumns(src, src+1)
		src++
	}
	for src > dst {
		t.swapColumns(src, src-1)
		src--
	}
	t.reindex()
	return nil
}

func (t *Table) swapColumns(i, j int) {
	t.columns[i], t.columns[j] = t.columns[j], t.columns[i]
	for r := range t.rows {
		t.rows[r].Swap(i, j)
	}
}

// InsertRow inserts a row at index, shifting later rows down; index ==
// RowCount() appends. A nil values slice fills every cell with its column's
// default. Otherwise the slice length must equal the column count and every
// value must qualify against its column's limiter; the first disqualifying
// value rejects the row whole. A table with no columns accepts no rows.
func (t *Table) InsertRow(index int, values []Value) error {
	if index < 0 || index > len(t.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrOutOfRange, index, len(t.rows))
	}
	if len(t.columns) == 0 {
		return fmt.Errorf("%w: table has no columns", ErrRowLengthMismatch)
	}
	var row Row
	if values == nil {
		row = t.defaultRow()
	} else {
		if err := t.validateRow(values); err != nil {
			return err
		}
		row = NewRow(values)
	}
	t.rows = append(t.rows, Row{})
	copy(t.rows[index+1:], t.rows[index:])
	t.rows[index] = row
	return nil
}

// DeleteRow removes and returns the row at index.
func (t *Table) DeleteRow(index int) (Row, error) {
	if err := t.checkRow(index); err != nil {
		return Row{}, err
	}
	row := t.rows[index]
	t.rows = append(t.rows[:index], t.rows[index+1:]...)
	return row, nil
}

// SetRow overwrites the row at index with values in column order. Length
// and qualification are checked in full before any cell is written: the row
// updates wholly or not at all.
func (t *Table) SetRow(index int, values []Value) error {
	if err := t.checkRow(index); err != nil {
		return err
	}
	if err := t.validateRow(values); err != nil {
		return err
	}
	t.rows[index] = NewRow(values)
	return nil
}

// EditRow selectively overwrites cells of the row at index: values[i] ==
// nil leaves column i untouched. The slice length must equal the column
// count. Every non-nil value is validated before any cell is written.
func (t *Table) EditRow(index int, values []*Value) error {
	if err := t.checkRow(index); err != nil {
		return err
	}
	if len(values) != len(t.columns) {
		return fmt.Errorf("%w: got %d values for %d columns",
			ErrRowLengthMismatch, len(values), len(t.columns))
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		if err := qualify(t.columns[i], *v); err != nil {
			return err
		}
	}
	for i, v := range values {
		if v != nil {
			t.rows[index].SetAt(i, *v)
		}
	}
	return nil
}

// MoveRow moves the row at src to dst by walking adjacent swaps; the rows
// between them shift one position. No-op when src == dst.
func (t *Table) MoveRow(src, dst int) error {
	if err := t.checkRow(src); err != nil {
		return err
	}
	if err := t.checkRow(dst); err != nil {
		return err
	}
	for src < dst {
		t.rows[src], t.rows[src+1] = t.rows[src+1], t.rows[src]
		src++
	}
	for src > dst {
		t.rows[src], t.rows[src-1] = t.rows[src-1], t.rows[src]
		src--
	}
	return nil
}

// SetCell writes a single cell after validating it against the column's
// limiter.
func (t *Table) SetCell(row, col int, value Value) error {
	if err := t.checkRow(row); err != nil {
		return err
	}
	if err := t.checkColumn(col); err != nil {
		return err
	}
	if err := qualify(t.columns[col], value); err != nil {
		return err
	}
	t.rows[row].SetAt(col, value)
	return nil
}

// SetCellText parses text against the column's declared type and writes the
// result through the limiter.
func (t *Table) SetCellText(row, col int, text string) error {
	if err := t.checkRow(row); err != nil {
		return err
	}
	if err := t.checkColumn(col); err != nil {
		return err
	}
	v, err := ParseValue(text, t.columns[col].Type)
	if err != nil {
		return fmt.Errorf("column %q: %w", t.columns[col].Name, err)
	}
	if err := qualify(t.columns[col], v); err != nil {
		return err
	}
	t.rows[row].SetAt(col, v)
	return nil
}

// SetColumn writes value into the column's cell of every row, validating
// once against the column's limiter.
func (t *Table) SetColumn(index int, value Value) error {
	if err := t.checkColumn(index); err != nil {
		return err
	}
	if err := qualify(t.columns[index], value); err != nil {
		return err
	}
	for i := range t.rows {
		t.rows[i].SetAt(index, value)
	}
	return nil
}

// ApplyLimiter replaces the limiter on the column at index and migrates the
// existing cells. The column's declared type follows the limiter's. Without
// force, the first cell that fails the new limiter aborts the whole change
// and the previous limiter stays in place. With force, failing cells are
// coerced to the new limiter's default.
func (t *Table) ApplyLimiter(index int, lim ValueLimiter, force bool) error {
	if err := t.checkColumn(index); err != nil {
		return err
	}
	col := t.columns[index]
	col.SetLimiter(lim.clone())
	if !force {
		for r := range t.rows {
			if err := qualify(col, t.rows[r].At(index)); err != nil {
				return fmt.Errorf("row %d: %w", r, err)
			}
		}
		t.columns[index] = col
		return nil
	}
	def := col.DefaultValue()
	t.columns[index] = col
	for r := range t.rows {
		if !col.Limiter.Qualify(t.rows[r].At(index)) {
			t.rows[r].SetAt(index, def)
		}
	}
	return nil
}

// String renders the canonical delimited form: one comma-joined header
// line, then one comma-joined line per row, with no trailing newline.
// Cells are rendered verbatim; quoting belongs to the serialization layer.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.ColumnNames(), ","))
	for _, row := range t.rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row.Strings(), ","))
	}
	return b.String()
}

// Records returns the table as raw string records, header first, suitable
// for CSV serialization.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.rows)+1)
	records = append(records, t.ColumnNames())
	for _, row := range t.rows {
		records = append(records, row.Strings())
	}
	return records
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	nt := &Table{
		columns:  make([]Column, len(t.columns)),
		rows:     make([]Row, len(t.rows)),
		colIndex: make(map[string]int, len(t.colIndex)),
	}
	for i, c := range t.columns {
		nt.columns[i] = c.clone()
	}
	for i, r := range t.rows {
		nt.rows[i] = r.Clone()
	}
	for name, i := range t.colIndex {
		nt.colIndex[name] = i
	}
	return nt
}

// defaultRow builds a row of every column's default value.
func (t *Table) defaultRow() Row {
	cells := make([]Value, len(t.columns))
	for i, c := range t.columns {
		cells[i] = c.DefaultValue()
	}
	return Row{cells: cells}
}

// validateRow checks length and per-cell qualification without writing.
func (t *Table) validateRow(values []Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("%w: got %d values for %d columns",
			ErrRowLengthMismatch, len(values), len(t.columns))
	}
	for i, v := range values {
		if err := qualify(t.columns[i], v); err != nil {
			return err
		}
	}
	return nil
}

// qualify validates one value against a column, distinguishing a type
// mismatch from a constraint failure.
func qualify(c Column, v Value) error {
	if v.Type != c.Limiter.Type {
		return fmt.Errorf("%w: column %q wants %s, got %s",
			ErrTypeMismatch, c.Name, c.Limiter.Type, v.Type)
	}
	if !c.Limiter.Qualify(v) {
		return fmt.Errorf("%w: %q does not qualify for column %q",
			ErrConstraintViolation, v.String(), c.Name)
	}
	return nil
}

// reindex rebuilds the name-to-position index from the column list.
func (t *Table) reindex() {
	t.colIndex = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		t.colIndex[c.Name] = i
	}
}

func (t *Table) checkRow(index int) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrOutOfRange, index, len(t.rows))
	}
	return nil
}

func (t *Table) checkColumn(index int) error {
	if index < 0 || index >= len(t.columns) {
		return fmt.Errorf("%w: column %d of %d", ErrOutOfRange, index, len(t.columns))
	}
	return nil
}
