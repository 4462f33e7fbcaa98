package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trestle/pkg/types"
)

func TestSchemaInitToOutput(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "create name,count", "schema-init")
	assert.Equal(t, "name,type,default,variants,pattern\nname,text,,,\ncount,text,,,\n", out.String())
}

func TestSchemaInitToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.csv")

	s, out := newTestSession(t)
	run(t, s, "create name,count", "schema-init "+path)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,type,default,variants,pattern\nname,text,,,\ncount,text,,,\n", string(data))
}

func TestSchemaExportDescribesLimiters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.csv")

	s, _ := newTestSession(t)
	run(t, s,
		"create item,qty",
		"limit item text,,apple pear,",
		"limit qty number,0,,",
		"add-row apple,3",
		"schema-export "+path,
	)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"name,type,default,variants,pattern\nitem,text,,apple pear,\nqty,number,0,,\n",
		string(data))
}

func TestSchemaApplyStrictThenForce(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.csv", "name,type,default,variants,pattern\ncount,number,0,,\n")
	data := writeFile(t, dir, "fruit.csv", "name,count\napple,4\n")

	s, _ := newTestSession(t)
	run(t, s, "import "+data)

	// Imported cells are text, so a number limiter cannot apply strictly.
	err := s.Execute("schema " + schema)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	page, _ := s.CurrentPage()
	col, _ := page.Table.ColumnAt(1)
	assert.Equal(t, types.ValueTypeText, col.Type, "failed apply leaves the column alone")

	run(t, s, "schema "+schema+" force")
	col, _ = page.Table.ColumnAt(1)
	assert.Equal(t, types.ValueTypeNumber, col.Type)
	v, _ := page.Table.CellAt(0, 1)
	assert.Equal(t, "0", v.String(), "nonconforming cell coerced to the new default")
}

func TestSchemaApplyReportsUnknownColumnButStillApplies(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.csv",
		"name,type,default,variants,pattern\nghost,text,,,\nname,text,x,,\n")

	s, _ := newTestSession(t)
	run(t, s, "create name")

	err := s.Execute("schema " + schema)
	assert.ErrorIs(t, err, types.ErrUnknownColumn)
	assert.Contains(t, err.Error(), "ghost")

	page, _ := s.CurrentPage()
	assert.Equal(t, "x", page.Table.Schema()[0].Default, "valid entries still applied")
}

func TestSchemaApplyHeaderlessFile(t *testing.T) {
	schema := writeFile(t, t.TempDir(), "schema.csv", "count,number,0,,\n")

	s, _ := newTestSession(t)
	run(t, s, "create name,count", "schema "+schema)

	page, _ := s.CurrentPage()
	col, _ := page.Table.ColumnAt(1)
	assert.Equal(t, types.ValueTypeNumber, col.Type)
}

func TestSchemaFileMalformedRecord(t *testing.T) {
	schema := writeFile(t, t.TempDir(), "schema.csv", "justaname\n")

	s, _ := newTestSession(t)
	run(t, s, "create name")

	err := s.Execute("schema " + schema)
	assert.ErrorIs(t, err, types.ErrInvalidLimiter)
	assert.Contains(t, err.Error(), "record 1")
}

func TestSchemaExportedFileReapplies(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.csv")

	s, _ := newTestSession(t)
	run(t, s,
		"create state",
		"limit state text,open,open closed,",
		"schema-export "+schema,
	)

	fresh, _ := newTestSession(t)
	run(t, fresh, "create state", "schema "+schema, "add-row open")
	page, _ := fresh.CurrentPage()
	assert.ErrorIs(t, fresh.Execute("edit-cell 0 state ajar"), types.ErrConstraintViolation)

	v, _ := page.Table.CellAt(0, 0)
	assert.Equal(t, "open", v.String())
}
