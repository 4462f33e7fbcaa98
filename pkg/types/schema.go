package types

import (
	"errors"
	"fmt"
)

// SchemaFields is the header of the textual schema form: one line per
// column, five fields each.
var SchemaFields = []string{"name", "type", "default", "variants", "pattern"}

// ColumnSchema is the textual form of one column's limiter, as stored in
// schema files. The four trailing fields are the LimiterFromTokens tokens.
type ColumnSchema struct {
	Name     string
	Type     string
	Default  string
	Variants string
	Pattern  string
}

// Tokens returns the limiter tokens [type default variants pattern].
func (e ColumnSchema) Tokens() []string {
	return []string{e.Type, e.Default, e.Variants, e.Pattern}
}

// Fields returns all five fields in SchemaFields order.
func (e ColumnSchema) Fields() []string {
	return []string{e.Name, e.Type, e.Default, e.Variants, e.Pattern}
}

// SchemaFromFields parses one schema record into a ColumnSchema.
func SchemaFromFields(fields []string) (ColumnSchema, error) {
	if len(fields) != len(SchemaFields) {
		return ColumnSchema{}, fmt.Errorf("%w: want %d fields, got %d",
			ErrInvalidLimiter, len(SchemaFields), len(fields))
	}
	return ColumnSchema{
		Name:     fields[0],
		Type:     fields[1],
		Default:  fields[2],
		Variants: fields[3],
		Pattern:  fields[4],
	}, nil
}

// Schema serializes every column's limiter in display order.
func (t *Table) Schema() []ColumnSchema {
	entries := make([]ColumnSchema, len(t.columns))
	for i, c := range t.columns {
		tokens := c.Limiter.Tokens()
		entries[i] = ColumnSchema{
			Name:     c.Name,
			Type:     tokens[0],
			Default:  tokens[1],
			Variants: tokens[2],
			Pattern:  tokens[3],
		}
	}
	return entries
}

// ApplySchema applies each entry's limiter to the column it names. An entry
// naming an unknown column, carrying an invalid limiter, or failing
// migration contributes an error but does not stop the remaining entries;
// all failures come back joined so the caller can report them together.
// Force is passed through to ApplyLimiter.
func (t *Table) ApplySchema(entries []ColumnSchema, force bool) error {
	var errs []error
	for _, e := range entries {
		index, ok := t.colIndex[e.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownColumn, e.Name))
			continue
		}
		lim, err := LimiterFromTokens(e.Tokens())
		if err != nil {
			errs = append(errs, fmt.Errorf("column %q: %w", e.Name, err))
			continue
		}
		if err := t.ApplyLimiter(index, *lim, force); err != nil {
			errs = append(errs, fmt.Errorf("column %q: %w", e.Name, err))
		}
	}
	return errors.Join(errs...)
}
