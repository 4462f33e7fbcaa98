package types

import (
	"errors"
	"strconv"
)

// Column errors.
var (
	ErrInvalidColumnName = errors.New("invalid column name")
)

// Column is one named, typed field definition shared by every row, carrying
// the limiter that validates its cells. Type always mirrors Limiter.Type;
// Table keeps the two in step when a limiter is replaced.
type Column struct {
	Name    string
	Type    ValueType
	Limiter ValueLimiter
}

// NewColumn returns a column with an unrestricted limiter of the given type.
func NewColumn(name string, vt ValueType) Column {
	return Column{Name: name, Type: vt, Limiter: NewValueLimiter(vt)}
}

// Rename sets the column name and returns the previous one. Uniqueness is
// the Table's concern.
func (c *Column) Rename(name string) string {
	old := c.Name
	c.Name = name
	return old
}

// SetLimiter replaces the limiter and aligns the declared type with it.
// Existing cells are not revalidated here; Table.ApplyLimiter migrates them.
func (c *Column) SetLimiter(lim ValueLimiter) {
	c.Limiter = lim
	c.Type = lim.Type
}

// DefaultValue returns the cell value used when none is supplied: the
// limiter's explicit default if set, else its first variant, else the
// type's zero value.
func (c Column) DefaultValue() Value {
	if c.Limiter.Default != nil {
		return *c.Limiter.Default
	}
	if len(c.Limiter.Variants) > 0 {
		return c.Limiter.Variants[0]
	}
	return ZeroValue(c.Type)
}

// clone returns a deep copy of the column.
func (c Column) clone() Column {
	return Column{Name: c.Name, Type: c.Type, Limiter: c.Limiter.clone()}
}

// ValidColumnName reports whether name may be used for a column: non-empty
// and not parseable as an integer. Integer tokens address columns by
// position, so an integer name would shadow positional addressing.
func ValidColumnName(name string) bool {
	if name == "" {
		return false
	}
	if _, err := strconv.Atoi(name); err == nil {
		return false
	}
	return true
}
