package session

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/trestle/pkg/trestle"
	"github.com/mesh-intelligence/trestle/pkg/types"
)

// maxExecuteDepth bounds execute-script nesting so a script that runs
// itself cannot recurse forever.
const maxExecuteDepth = 8

// Execute parses and runs one command line against the session. Blank
// input is a no-op. A history-tracked command snapshots the current table
// before it runs, labeled with the canonical command word.
func (s *Session) Execute(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		if errors.Is(err, ErrEmptyCommand) {
			return nil
		}
		return err
	}
	log.Debugf("executing %s %v", cmd.Kind, cmd.Args)

	if cmd.Kind.IsHistoryTracked() {
		if page, err := s.CurrentPage(); err == nil {
			page.History.Snapshot(page.Table, cmd.Kind.String())
		}
	}

	switch cmd.Kind {
	case KindCreate:
		return s.runCreate(cmd.Args)
	case KindImport:
		return s.runImport(cmd.Args)
	case KindExport:
		return s.runExport(cmd.Args)
	case KindWrite:
		return s.runWrite(cmd.Args)
	case KindAddRow:
		return s.runAddRow(cmd.Args)
	case KindRemoveRow:
		return s.runRemoveRow(cmd.Args)
	case KindMoveRow:
		return s.runMoveRow(cmd.Args)
	case KindAddColumn:
		return s.runAddColumn(cmd.Args)
	case KindRemoveColumn:
		return s.runRemoveColumn(cmd.Args)
	case KindRenameColumn:
		return s.runRenameColumn(cmd.Args)
	case KindMoveColumn:
		return s.runMoveColumn(cmd.Args)
	case KindEditCell:
		return s.runEditCell(cmd.Args)
	case KindEditRow:
		return s.runEditRow(cmd.Args)
	case KindEditColumn:
		return s.runEditColumn(cmd.Args)
	case KindLimit:
		return s.runLimit(cmd.Args)
	case KindLimitPreset:
		return s.runLimitPreset(cmd.Args)
	case KindSchema:
		return s.runSchema(cmd.Args)
	case KindSchemaExport:
		return s.runSchemaExport(cmd.Args)
	case KindSchemaInit:
		return s.runSchemaInit(cmd.Args)
	case KindPrint:
		return s.runPrint(cmd.Args)
	case KindPrintCell:
		return s.runPrintCell(cmd.Args)
	case KindPrintRow:
		return s.runPrintRow(cmd.Args)
	case KindPrintColumn:
		return s.runPrintColumn(cmd.Args)
	case KindUndo:
		return s.runUndo()
	case KindRedo:
		return s.runRedo()
	case KindHistory:
		return s.runHistory()
	case KindExecute:
		return s.runExecute(cmd.Args)
	case KindPage:
		return s.runPage(cmd.Args)
	case KindHelp:
		return s.runHelp()
	case KindVersion:
		fmt.Fprintln(s.out, "trestle "+trestle.Version)
		return nil
	case KindExit:
		return ErrExit
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

// csvSplit parses one comma-separated value list, honoring quoting, so
// cell values may contain commas. Leading whitespace after a comma is
// trimmed. An empty input is an empty list.
func csvSplit(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	r := csv.NewReader(strings.NewReader(raw))
	r.TrimLeadingSpace = true
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parsing value list: %w", err)
	}
	return fields, nil
}

// atoiArg parses a required integer argument.
func atoiArg(token, usage string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	return n, nil
}

func (s *Session) runCreate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create <name,name,...>", ErrUsage)
	}
	names, err := csvSplit(strings.Join(args, " "))
	if err != nil {
		return err
	}
	table := types.NewTable()
	for i, name := range names {
		if err := table.InsertColumn(i, name, types.ValueTypeText, nil, nil); err != nil {
			return err
		}
	}
	if page, err := s.CurrentPage(); err == nil {
		page.Table = table
		return nil
	}
	s.AddPage(newPageName(), table, "")
	return nil
}

func (s *Session) runAddRow(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	index := page.Table.RowCount()
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			index = n
			args = args[1:]
		}
	}
	if len(args) == 0 {
		values, err := s.promptRow(page.Table)
		if err != nil {
			return err
		}
		return page.Table.InsertRow(index, values)
	}
	values, err := s.parseValues(page.Table, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return page.Table.InsertRow(index, values)
}

// promptRow collects one value per column interactively; a blank answer
// takes the column default. Without a prompter the whole row defaults.
func (s *Session) promptRow(table *types.Table) ([]types.Value, error) {
	if s.prompter == nil {
		return nil, nil
	}
	values := make([]types.Value, table.ColumnCount())
	for i := 0; i < table.ColumnCount(); i++ {
		col, err := table.ColumnAt(i)
		if err != nil {
			return nil, err
		}
		text, ok := s.prompter.Prompt(fmt.Sprintf("%s (%s): ", col.Name, col.Type))
		if !ok {
			return nil, ErrPromptClosed
		}
		if text == "" {
			values[i] = col.DefaultValue()
			continue
		}
		v, err := types.ParseValue(text, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

// parseValues parses a comma-separated list into one typed value per
// column of the table.
func (s *Session) parseValues(table *types.Table, raw string) ([]types.Value, error) {
	fields, err := csvSplit(raw)
	if err != nil {
		return nil, err
	}
	if len(fields) != table.ColumnCount() {
		return nil, fmt.Errorf("%w: got %d values for %d columns",
			types.ErrRowLengthMismatch, len(fields), table.ColumnCount())
	}
	values := make([]types.Value, len(fields))
	for i, field := range fields {
		col, err := table.ColumnAt(i)
		if err != nil {
			return nil, err
		}
		v, err := types.ParseValue(field, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

func (s *Session) runRemoveRow(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: remove-row <index>", ErrUsage)
	}
	index, err := atoiArg(args[0], "remove-row <index>")
	if err != nil {
		return err
	}
	_, err = page.Table.DeleteRow(index)
	return err
}

func (s *Session) runMoveRow(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: move-row <src> <dst>", ErrUsage)
	}
	src, err := atoiArg(args[0], "move-row <src> <dst>")
	if err != nil {
		return err
	}
	dst, err := atoiArg(args[1], "move-row <src> <dst>")
	if err != nil {
		return err
	}
	return page.Table.MoveRow(src, dst)
}

func (s *Session) runAddColumn(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 3 {
		return fmt.Errorf("%w: add-column <name> [type] [default]", ErrUsage)
	}
	name := args[0]
	typeToken, defaultToken := "", ""
	if len(args) > 1 {
		typeToken = args[1]
	}
	if len(args) > 2 {
		defaultToken = args[2]
	}
	lim, err := types.LimiterFromTokens([]string{typeToken, defaultToken, "", ""})
	if err != nil {
		return err
	}
	return page.Table.InsertColumn(page.Table.ColumnCount(), name, lim.Type, lim, nil)
}

func (s *Session) runRemoveColumn(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: remove-column <column>", ErrUsage)
	}
	index, err := page.Table.ResolveColumn(args[0])
	if err != nil {
		return err
	}
	return page.Table.DeleteColumn(index)
}

func (s *Session) runRenameColumn(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: rename-column <column> <name>", ErrUsage)
	}
	index, err := page.Table.ResolveColumn(args[0])
	if err != nil {
		return err
	}
	return page.Table.RenameColumn(index, args[1])
}

func (s *Session) runMoveColumn(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: move-column <src> <dst>", ErrUsage)
	}
	src, err := page.Table.ResolveColumn(args[0])
	if err != nil {
		return err
	}
	dst, err := page.Table.ResolveColumn(args[1])
	if err != nil {
		return err
	}
	return page.Table.MoveColumn(src, dst)
}

func (s *Session) runEditCell(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("%w: edit-cell <row> <column> <value>", ErrUsage)
	}
	row, err := atoiArg(args[0], "edit-cell <row> <column> <value>")
	if err != nil {
		return err
	}
	col, err := page.Table.ResolveColumn(args[1])
	if err != nil {
		return err
	}
	return page.Table.SetCellText(row, col, strings.Join(args[2:], " "))
}

func (s *Session) runEditRow(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("%w: edit-row <row> [values]", ErrUsage)
	}
	row, err := atoiArg(args[0], "edit-row <row> [values]")
	if err != nil {
		return err
	}
	if len(args) == 1 {
		values, err := s.promptRowEdits(page.Table, row)
		if err != nil {
			return err
		}
		return page.Table.EditRow(row, values)
	}
	fields, err := csvSplit(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if len(fields) != page.Table.ColumnCount() {
		return fmt.Errorf("%w: got %d values for %d columns",
			types.ErrRowLengthMismatch, len(fields), page.Table.ColumnCount())
	}
	values := make([]*types.Value, len(fields))
	for i, field := range fields {
		if field == "" {
			continue // keep the current cell
		}
		col, err := page.Table.ColumnAt(i)
		if err != nil {
			return err
		}
		v, err := types.ParseValue(field, col.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
		values[i] = &v
	}
	return page.Table.EditRow(row, values)
}

// promptRowEdits collects optional per-cell replacements interactively,
// showing the current value; a blank answer keeps the cell.
func (s *Session) promptRowEdits(table *types.Table, row int) ([]*types.Value, error) {
	values := make([]*types.Value, table.ColumnCount())
	if s.prompter == nil {
		return values, nil
	}
	for i := 0; i < table.ColumnCount(); i++ {
		col, err := table.ColumnAt(i)
		if err != nil {
			return nil, err
		}
		current, err := table.CellAt(row, i)
		if err != nil {
			return nil, err
		}
		text, ok := s.prompter.Prompt(fmt.Sprintf("%s (%s) [%s]: ", col.Name, col.Type, current))
		if !ok {
			return nil, ErrPromptClosed
		}
		if text == "" {
			continue
		}
		v, err := types.ParseValue(text, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		values[i] = &v
	}
	return values, nil
}

func (s *Session) runEditColumn(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: edit-column <column> <value>", ErrUsage)
	}
	index, err := page.Table.ResolveColumn(args[0])
	if err != nil {
		return err
	}
	col, err := page.Table.ColumnAt(index)
	if err != nil {
		return err
	}
	v, err := types.ParseValue(strings.Join(args[1:], " "), col.Type)
	if err != nil {
		return fmt.Errorf("column %q: %w", col.Name, err)
	}
	return page.Table.SetColumn(index, v)
}

func (s *Session) runLimit(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: limit <column> <type,default,variants,pattern> [force]", ErrUsage)
	}
	force := false
	if args[len(args)-1] == "force" {
		force = true
		args = args[:len(args)-1]
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: limit <column> <type,default,variants,pattern> [force]", ErrUsage)
	}
	index, err := page.Table.ResolveColumn(args[0])
	if err != nil {
		return err
	}
	tokens, err := splitLimiterTokens(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	lim, err := types.LimiterFromTokens(tokens)
	if err != nil {
		return err
	}
	return page.Table.ApplyLimiter(index, *lim, force)
}

// splitLimiterTokens splits a limiter definition on commas without
// dropping trailing empty fields, so "number,0,," keeps its arity.
func splitLimiterTokens(raw string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.TrimLeadingSpace = true
	tokens, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parsing limiter definition: %w", err)
	}
	return tokens, nil
}

func (s *Session) runLimitPreset(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: limit-preset <column> <preset> [force]", ErrUsage)
	}
	force := len(args) == 3 && args[2] == "force"
	index, err := page.Table.ResolveColumn(args[0])
	if err != nil {
		return err
	}
	lim, ok := s.presets[args[1]]
	if !ok {
		names := s.PresetNames()
		sort.Strings(names)
		return fmt.Errorf("%w: %q (have: %s)", ErrUnknownPreset, args[1], strings.Join(names, ", "))
	}
	return page.Table.ApplyLimiter(index, lim, force)
}

func (s *Session) runUndo() error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	table, ok := page.History.Undo(page.Table)
	if !ok {
		fmt.Fprintln(s.out, "nothing to undo")
		return nil
	}
	page.Table = table
	return nil
}

func (s *Session) runRedo() error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	table, ok := page.History.Redo()
	if !ok {
		fmt.Fprintln(s.out, "nothing to redo")
		return nil
	}
	page.Table = table
	return nil
}

func (s *Session) runHistory() error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	h := page.History
	for i, label := range h.Labels() {
		fmt.Fprintf(s.out, "%3d  %s\n", i+1, label)
	}
	fmt.Fprintf(s.out, "undo: %d  redo: %d  capacity: %d\n",
		h.Cursor(), h.Len()-h.Cursor(), h.Capacity())
	return nil
}

func (s *Session) runPrint(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: print", ErrUsage)
	}
	return s.renderTable(page.Table.String())
}

func (s *Session) runPrintCell(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: print-cell <row> <column>", ErrUsage)
	}
	row, err := atoiArg(args[0], "print-cell <row> <column>")
	if err != nil {
		return err
	}
	col, err := page.Table.ResolveColumn(args[1])
	if err != nil {
		return err
	}
	v, err := page.Table.CellAt(row, col)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, v.String())
	return nil
}

func (s *Session) runPrintRow(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: print-row <row>", ErrUsage)
	}
	index, err := atoiArg(args[0], "print-row <row>")
	if err != nil {
		return err
	}
	row, err := page.Table.RowAt(index)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, strings.Join(row.Strings(), ","))
	return nil
}

func (s *Session) runPrintColumn(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: print-column <column>", ErrUsage)
	}
	index, err := page.Table.ResolveColumn(args[0])
	if err != nil {
		return err
	}
	for r := 0; r < page.Table.RowCount(); r++ {
		v, err := page.Table.CellAt(r, index)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, v.String())
	}
	return nil
}

func (s *Session) runExecute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: execute <file>", ErrUsage)
	}
	if s.depth >= maxExecuteDepth {
		return fmt.Errorf("execute nesting deeper than %d", maxExecuteDepth)
	}
	s.depth++
	defer func() { s.depth-- }()
	return s.runScript(args[0])
}

func (s *Session) runPage(args []string) error {
	switch len(args) {
	case 0:
		for _, name := range s.order {
			page := s.pages[name]
			marker := " "
			if name == s.current {
				marker = "*"
			}
			line := fmt.Sprintf("%s %s  %dx%d", marker, name,
				page.Table.RowCount(), page.Table.ColumnCount())
			if page.Source != "" {
				line += "  " + page.Source
			}
			fmt.Fprintln(s.out, line)
		}
		return nil
	case 1:
		return s.SwitchPage(args[0])
	default:
		return fmt.Errorf("%w: page [name]", ErrUsage)
	}
}

const helpText = `commands (aliases in parentheses):
  create (c) <name,name,...>           new table with text columns
  import (i) <file> [noheader]         load a delimited file into a page
  export (ex) <file>                   write the current table to a file
  write (w)                            overwrite the page's source file
  add-row (ar) [index] [values]        insert a row; no values prompts or defaults
  remove-row (rr) <index>              delete a row
  move-row (mr, m) <src> <dst>         move a row, shifting the ones between
  add-column (ac) <name> [type] [default]
  remove-column (rc) <column>          column is an index or a name
  rename-column (rn) <column> <name>
  move-column (mc) <src> <dst>
  edit-cell (edit, e) <row> <column> <value>
  edit-row (er) <row> [values]         empty fields keep the current cell
  edit-column (ec) <column> <value>    set every cell in the column
  limit (l) <column> <type,default,variants,pattern> [force]
  limit-preset (lp) <column> <preset> [force]
  schema (s) <file> [force]            apply a schema file
  schema-export (se) <file>            write the current schema
  schema-init (si) [file]              starter schema for the current columns
  print (p)                            show the table
  print-cell (pc) <row> <column>
  print-row (pr) <row>
  print-column (pl) <column>
  undo (u) / redo (r)                  step through table history
  history (hs)                         list undo snapshots
  execute (run) <file>                 run a command script
  page (pg) [name]                     list pages or switch to one
  help (h), version (v), exit (quit, q)`

func (s *Session) runHelp() error {
	fmt.Fprintln(s.out, helpText)
	return nil
}

// runScript executes a command file line by line, aborting on the first
// error. Blank lines and #-comments are skipped.
func (s *Session) runScript(path string) error {
	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.RunLines(f)
}

// RunLines executes newline-separated commands from r, aborting on the
// first error. ErrExit stops the run without being an error.
func (s *Session) RunLines(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrExit) {
				return err
			}
			return fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	return nil
}
