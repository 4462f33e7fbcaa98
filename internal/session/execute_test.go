package session

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trestle/pkg/types"
)

// newTestSession returns a session that writes command output to an
// in-memory buffer.
func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return New(types.DefaultConfig(), out, nil), out
}

// run executes commands in order, failing the test on the first error.
func run(t *testing.T, s *Session, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, s.Execute(line), "command %q", line)
	}
}

// scriptedPrompter answers prompts from a fixed list and reports closed
// input once the answers run out.
type scriptedPrompter struct {
	answers []string
}

func (p *scriptedPrompter) Prompt(string) (string, bool) {
	if len(p.answers) == 0 {
		return "", false
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, true
}

func TestCreateAndPrint(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "create name,count", "print")
	assert.Equal(t, "name,count\n", out.String())

	page, err := s.CurrentPage()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "count"}, page.Table.ColumnNames())
	assert.Empty(t, page.Source)
}

func TestCreateReplacesCurrentTable(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s, "create a", "add-row x", "create b,c")

	page, err := s.CurrentPage()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, page.Table.ColumnNames())
	assert.Zero(t, page.Table.RowCount())
	assert.Len(t, s.PageNames(), 1, "create reuses the open page")

	// The table before create is one undo away.
	run(t, s, "undo")
	assert.Equal(t, []string{"a"}, page.Table.ColumnNames())
	assert.Equal(t, 1, page.Table.RowCount())
}

func TestCommandsWithoutPage(t *testing.T) {
	s, _ := newTestSession(t)
	for _, line := range []string{"add-row x", "print", "undo", "export out.csv"} {
		assert.ErrorIs(t, s.Execute(line), ErrNoPage, "command %q", line)
	}
}

func TestAddRowVariants(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name,count",
		"add-row apple,4",
		"add-row pear,2",
		"add-row 0 plum,9",
		"print",
	)
	assert.Equal(t, "name,count\nplum,9\napple,4\npear,2\n", out.String())
}

func TestAddRowDefaultsWithoutPrompter(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "create name,count", "add-row", "print")
	assert.Equal(t, "name,count\n,\n", out.String())
}

func TestAddRowPrompted(t *testing.T) {
	out := &bytes.Buffer{}
	prompter := &scriptedPrompter{answers: []string{"apple", "4"}}
	s := New(types.DefaultConfig(), out, prompter)
	run(t, s, "create name,count", "add-row", "print")
	assert.Equal(t, "name,count\napple,4\n", out.String())
}

func TestAddRowPromptClosed(t *testing.T) {
	out := &bytes.Buffer{}
	s := New(types.DefaultConfig(), out, &scriptedPrompter{})
	run(t, s, "create name,count")
	assert.ErrorIs(t, s.Execute("add-row"), ErrPromptClosed)
}

func TestAddRowRejectsBadValue(t *testing.T) {
	s, _ := newTestSession(t)
	// A bare leading integer would read as an insertion index; quoting
	// forces it to be the value.
	run(t, s, "create id", "limit id number,0,, force", `add-row "7"`)

	err := s.Execute("add-row seven")
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	page, _ := s.CurrentPage()
	assert.Equal(t, 1, page.Table.RowCount())
}

func TestQuotedValueKeepsComma(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "create note", `add-row "hello, world"`, "print-cell 0 note")
	assert.Equal(t, "hello, world\n", out.String())
}

func TestEditCellAndPrintCell(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name,count",
		"add-row apple,4",
		"edit-cell 0 count 9",
		"print-cell 0 count",
		"print-cell 0 1",
	)
	assert.Equal(t, "9\n9\n", out.String())
}

func TestPrintRow(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name,count",
		"add-row apple,4",
		"add-row pear,2",
		"print-row 1",
	)
	assert.Equal(t, "pear,2\n", out.String())

	assert.ErrorIs(t, s.Execute("print-row 5"), types.ErrOutOfRange)
	assert.ErrorIs(t, s.Execute("print-row"), ErrUsage)
}

func TestEditRowKeepsEmptyFields(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name,count",
		"add-row apple,4",
		"edit-row 0 ,9",
		"print",
	)
	assert.Equal(t, "name,count\napple,9\n", out.String())
}

func TestEditRowPromptedShowsCurrent(t *testing.T) {
	out := &bytes.Buffer{}
	prompter := &scriptedPrompter{answers: []string{"", "9"}}
	s := New(types.DefaultConfig(), out, prompter)
	run(t, s, "create name,count", "add-row apple,4", "edit-row 0", "print")
	assert.Equal(t, "name,count\napple,9\n", out.String())
}

func TestEditColumn(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name,count",
		"add-row apple,4",
		"add-row pear,2",
		"edit-column count 0",
		"print-column count",
	)
	assert.Equal(t, "0\n0\n", out.String())
}

func TestRowAndColumnCommands(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name,count",
		"add-row apple,4",
		"add-row pear,2",
		"add-row plum,9",
		"move-row 2 0",
		"rename-column count total",
		"move-column 0 1",
		"print",
	)
	assert.Equal(t, "total,name\n9,plum\n4,apple\n2,pear\n", out.String())
}

func TestRemoveRowAndColumn(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name,count",
		"add-row apple,4",
		"add-row pear,2",
		"remove-row 0",
		"remove-column count",
		"print",
	)
	assert.Equal(t, "name\npear\n", out.String())

	assert.ErrorIs(t, s.Execute("remove-row 5"), types.ErrOutOfRange)
	assert.ErrorIs(t, s.Execute("remove-column total"), types.ErrUnknownColumn)
}

func TestAddColumnWithTypeAndDefault(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create name",
		"add-row apple",
		"add-column count number 0",
		"print",
	)
	assert.Equal(t, "name,count\napple,0\n", out.String())

	page, _ := s.CurrentPage()
	col, err := page.Table.ColumnAt(1)
	require.NoError(t, err)
	assert.Equal(t, types.ValueTypeNumber, col.Type)
}

func TestUndoRedoFlow(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s, "create fruit", "add-row apple", "edit-cell 0 fruit pear")

	page, err := s.CurrentPage()
	require.NoError(t, err)
	cell := func() string {
		v, err := page.Table.CellAt(0, 0)
		require.NoError(t, err)
		return v.String()
	}

	assert.Equal(t, "pear", cell())
	run(t, s, "undo")
	assert.Equal(t, "apple", cell())
	run(t, s, "undo")
	assert.Zero(t, page.Table.RowCount())
	run(t, s, "redo", "redo")
	assert.Equal(t, "pear", cell())
}

func TestUndoRedoExhausted(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "create fruit", "undo", "redo")
	assert.Equal(t, "nothing to undo\nnothing to redo\n", out.String())
}

func TestUndoBranchDiscardedByNewEdit(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create fruit",
		"add-row apple",
		"edit-cell 0 fruit pear",
		"undo",
		"edit-cell 0 fruit plum",
		"redo",
	)
	assert.Equal(t, "nothing to redo\n", out.String())

	page, _ := s.CurrentPage()
	v, err := page.Table.CellAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "plum", v.String())
}

func TestHistoryListing(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "create fruit", "add-row apple", "edit-cell 0 fruit pear", "undo", "history")
	assert.Equal(t, "  1  add-row\n  2  edit-cell\nundo: 1  redo: 1  capacity: 16\n", out.String())
}

func TestLimitStrictLeavesTableUntouched(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s, "create count", "add-row many")

	err := s.Execute("limit count number,0,,")
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	page, _ := s.CurrentPage()
	col, _ := page.Table.ColumnAt(0)
	assert.Equal(t, types.ValueTypeText, col.Type)
	v, _ := page.Table.CellAt(0, 0)
	assert.Equal(t, "many", v.String())
}

func TestLimitForceCoercesFailingCells(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s,
		"create count",
		"add-row many",
		"limit count number,7,, force",
		"print-cell 0 count",
	)
	assert.Equal(t, "7\n", out.String())

	page, _ := s.CurrentPage()
	col, _ := page.Table.ColumnAt(0)
	assert.Equal(t, types.ValueTypeNumber, col.Type)
}

func TestLimitVariantsRejectEdit(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s,
		"create state",
		"add-row open",
		"limit state text,open,open closed,",
		"edit-cell 0 state closed",
	)
	assert.ErrorIs(t, s.Execute("edit-cell 0 state ajar"), types.ErrConstraintViolation)
}

func TestLimitPreset(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s,
		"create contact",
		"add-row x",
		"limit-preset contact email force",
		"edit-cell 0 contact jane@doe.org",
	)
	assert.ErrorIs(t, s.Execute("edit-cell 0 contact not-an-email"), types.ErrConstraintViolation)
}

func TestLimitPresetUnknown(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s, "create contact")
	err := s.Execute("limit-preset contact banana")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Contains(t, err.Error(), "have:")
}

func TestPageListAndSwitch(t *testing.T) {
	s, out := newTestSession(t)
	first := types.NewTable()
	require.NoError(t, first.InsertColumn(0, "a", types.ValueTypeText, nil, nil))
	second := types.NewTable()
	require.NoError(t, second.InsertColumn(0, "b", types.ValueTypeText, nil, nil))
	s.AddPage("one", first, "")
	s.AddPage("two", second, "/data/two.csv")

	run(t, s, "page")
	assert.Equal(t, "  one  0x1\n* two  0x1  /data/two.csv\n", out.String())

	run(t, s, "page one")
	page, err := s.CurrentPage()
	require.NoError(t, err)
	assert.Equal(t, "one", page.Name)

	assert.ErrorIs(t, s.Execute("page three"), ErrUnknownPage)
}

func TestPagesKeepIndependentHistories(t *testing.T) {
	s, _ := newTestSession(t)
	table := types.NewTable()
	require.NoError(t, table.InsertColumn(0, "a", types.ValueTypeText, nil, nil))
	s.AddPage("one", table, "")
	run(t, s, "add-row x")
	s.AddPage("two", table.Clone(), "")

	run(t, s, "page one", "undo")
	page, _ := s.CurrentPage()
	assert.Zero(t, page.Table.RowCount())

	run(t, s, "page two", "undo")
	// The second page never had a tracked command, so there is nothing
	// to undo and its row survives.
	page, _ = s.CurrentPage()
	assert.Equal(t, 1, page.Table.RowCount())
}

func TestVersionCommand(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "version")
	assert.Equal(t, "trestle 0.4.0\n", out.String())
}

func TestExitCommand(t *testing.T) {
	s, _ := newTestSession(t)
	assert.ErrorIs(t, s.Execute("exit"), ErrExit)
	assert.ErrorIs(t, s.Execute("q"), ErrExit)
}

func TestBlankAndUnknownInput(t *testing.T) {
	s, out := newTestSession(t)
	require.NoError(t, s.Execute(""))
	require.NoError(t, s.Execute("   "))
	assert.ErrorIs(t, s.Execute("frobnicate"), ErrUnknownCommand)
	assert.Empty(t, out.String())
}

func TestUsageErrors(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s, "create a")
	for _, line := range []string{
		"create",
		"remove-row",
		"remove-row x",
		"move-row 1",
		"rename-column a",
		"edit-cell 0 a",
		"limit a",
		"print extra",
		"execute",
	} {
		assert.ErrorIs(t, s.Execute(line), ErrUsage, "command %q", line)
	}
}

func TestRunLinesAbortsWithLineNumber(t *testing.T) {
	s, _ := newTestSession(t)
	err := s.RunLines(strings.NewReader("create a\nbogus\nadd-row x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "line 2")

	// The run stopped before the add-row.
	page, pageErr := s.CurrentPage()
	require.NoError(t, pageErr)
	assert.Zero(t, page.Table.RowCount())
}

func TestRunLinesSkipsBlanksAndComments(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.RunLines(strings.NewReader("# setup\n\ncreate a\nadd-row x\n")))
	page, err := s.CurrentPage()
	require.NoError(t, err)
	assert.Equal(t, 1, page.Table.RowCount())
}

func TestRunLinesStopsOnExit(t *testing.T) {
	s, _ := newTestSession(t)
	err := s.RunLines(strings.NewReader("create a\nexit\nadd-row x"))
	assert.ErrorIs(t, err, ErrExit)

	page, pageErr := s.CurrentPage()
	require.NoError(t, pageErr)
	assert.Zero(t, page.Table.RowCount())
}

func TestExecuteScriptFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "steps.txt")
	require.NoError(t, os.WriteFile(script, []byte("create name,count\nadd-row apple,4\n"), 0o644))

	s, out := newTestSession(t)
	run(t, s, "execute "+script, "print")
	assert.Equal(t, "name,count\napple,4\n", out.String())
}

func TestExecuteScriptNestingBounded(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "loop.txt")
	require.NoError(t, os.WriteFile(script, []byte("execute "+script+"\n"), 0o644))

	s, _ := newTestSession(t)
	err := s.Execute("execute " + script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting")
}

func TestExecuteMissingScript(t *testing.T) {
	s, _ := newTestSession(t)
	err := s.Execute("execute " + filepath.Join(t.TempDir(), "absent.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHelpMentionsEveryCommand(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, "help")
	for word := range commandAliases {
		if len(word) <= 2 {
			continue // aliases appear in parentheses, not as words
		}
		assert.Contains(t, out.String(), word)
	}
}

func TestErrorKeepsSnapshotConsistent(t *testing.T) {
	s, _ := newTestSession(t)
	run(t, s, "create fruit", "add-row apple")

	// A tracked command that fails still snapshotted first, so one undo
	// steps over the failed attempt to the state before it.
	require.Error(t, s.Execute("remove-row 9"))
	run(t, s, "undo")

	page, _ := s.CurrentPage()
	assert.Equal(t, 1, page.Table.RowCount(), "undo restores the pre-command state")
}
