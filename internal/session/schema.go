package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/trestle/pkg/types"
)

func (s *Session) runSchema(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: schema <file> [force]", ErrUsage)
	}
	force := len(args) == 2 && args[1] == "force"
	return s.ApplySchemaFile(args[0], force)
}

// ApplySchemaFile loads a schema file and applies it to the current page's
// table. The CLI's --schema flag and the schema command both land here.
func (s *Session) ApplySchemaFile(path string, force bool) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	entries, err := loadSchemaFile(path)
	if err != nil {
		return err
	}
	if err := page.Table.ApplySchema(entries, force); err != nil {
		return fmt.Errorf("applying %s: %w", path, err)
	}
	log.Infof("applied schema %s: %d entries", path, len(entries))
	return nil
}

func (s *Session) runSchemaExport(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: schema-export <file>", ErrUsage)
	}
	return writeSchemaFile(args[0], page.Table.Schema())
}

// runSchemaInit emits a starter schema: every column with its current type
// and no constraints, ready to hand-edit. With no file argument the starter
// goes to the session output.
func (s *Session) runSchemaInit(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: schema-init [file]", ErrUsage)
	}
	entries := make([]types.ColumnSchema, 0, page.Table.ColumnCount())
	for _, full := range page.Table.Schema() {
		entries = append(entries, types.ColumnSchema{Name: full.Name, Type: full.Type})
	}
	if len(args) == 1 {
		return writeSchemaFile(args[0], entries)
	}
	return renderSchema(s.out, entries)
}

// loadSchemaFile parses a five-field schema CSV. A first record matching
// the canonical header is skipped, so both bare and headed files load.
func loadSchemaFile(path string) ([]types.ColumnSchema, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var entries []types.ColumnSchema
	for n, record := range records {
		if n == 0 && isSchemaHeader(record) {
			continue
		}
		entry, err := types.SchemaFromFields(record)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, n+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func isSchemaHeader(record []string) bool {
	if len(record) != len(types.SchemaFields) {
		return false
	}
	for i, field := range record {
		if !strings.EqualFold(field, types.SchemaFields[i]) {
			return false
		}
	}
	return true
}

func writeSchemaFile(path string, entries []types.ColumnSchema) error {
	return atomicWrite(path, func(w io.Writer) error {
		return renderSchema(w, entries)
	})
}

func renderSchema(w io.Writer, entries []types.ColumnSchema) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.SchemaFields); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := cw.Write(entry.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
