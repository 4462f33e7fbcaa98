package session

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one editor command.
type Kind string

// Editor commands.
const (
	KindCreate       Kind = "create"
	KindImport       Kind = "import"
	KindExport       Kind = "export"
	KindWrite        Kind = "write"
	KindAddRow       Kind = "add-row"
	KindRemoveRow    Kind = "remove-row"
	KindMoveRow      Kind = "move-row"
	KindAddColumn    Kind = "add-column"
	KindRemoveColumn Kind = "remove-column"
	KindRenameColumn Kind = "rename-column"
	KindMoveColumn   Kind = "move-column"
	KindEditCell     Kind = "edit-cell"
	KindEditRow      Kind = "edit-row"
	KindEditColumn   Kind = "edit-column"
	KindLimit        Kind = "limit"
	KindLimitPreset  Kind = "limit-preset"
	KindSchema       Kind = "schema"
	KindSchemaExport Kind = "schema-export"
	KindSchemaInit   Kind = "schema-init"
	KindPrint        Kind = "print"
	KindPrintCell    Kind = "print-cell"
	KindPrintRow     Kind = "print-row"
	KindPrintColumn  Kind = "print-column"
	KindUndo         Kind = "undo"
	KindRedo         Kind = "redo"
	KindHistory      Kind = "history"
	KindExecute      Kind = "execute"
	KindPage         Kind = "page"
	KindHelp         Kind = "help"
	KindVersion      Kind = "version"
	KindExit         Kind = "exit"
)

// Command parsing errors.
var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// commandAliases maps every accepted spelling to its canonical Kind.
var commandAliases = map[string]Kind{
	"create": KindCreate, "c": KindCreate,
	"import": KindImport, "i": KindImport,
	"export": KindExport, "ex": KindExport,
	"write": KindWrite, "w": KindWrite,
	"add-row": KindAddRow, "ar": KindAddRow,
	"remove-row": KindRemoveRow, "rr": KindRemoveRow,
	"move-row": KindMoveRow, "mr": KindMoveRow, "m": KindMoveRow,
	"add-column": KindAddColumn, "ac": KindAddColumn,
	"remove-column": KindRemoveColumn, "rc": KindRemoveColumn,
	"rename-column": KindRenameColumn, "rn": KindRenameColumn,
	"move-column": KindMoveColumn, "mc": KindMoveColumn,
	"edit-cell": KindEditCell, "edit": KindEditCell, "e": KindEditCell,
	"edit-row": KindEditRow, "er": KindEditRow,
	"edit-column": KindEditColumn, "ec": KindEditColumn,
	"limit": KindLimit, "l": KindLimit,
	"limit-preset": KindLimitPreset, "lp": KindLimitPreset,
	"schema": KindSchema, "s": KindSchema,
	"schema-export": KindSchemaExport, "se": KindSchemaExport,
	"schema-init": KindSchemaInit, "si": KindSchemaInit,
	"print": KindPrint, "p": KindPrint,
	"print-cell": KindPrintCell, "pc": KindPrintCell,
	"print-row": KindPrintRow, "pr": KindPrintRow,
	"print-column": KindPrintColumn, "pl": KindPrintColumn,
	"undo": KindUndo, "u": KindUndo,
	"redo": KindRedo, "r": KindRedo,
	"history": KindHistory, "hs": KindHistory,
	"execute": KindExecute, "run": KindExecute,
	"page": KindPage, "pg": KindPage,
	"help": KindHelp, "h": KindHelp,
	"version": KindVersion, "v": KindVersion,
	"exit": KindExit, "quit": KindExit, "q": KindExit,
}

// trackedKinds lists the commands that mutate the current table and
// therefore snapshot it before running. Import is deliberately absent: it
// replaces the page wholesale and resets its history instead.
var trackedKinds = map[Kind]bool{
	KindCreate:       true,
	KindAddRow:       true,
	KindRemoveRow:    true,
	KindMoveRow:      true,
	KindAddColumn:    true,
	KindRemoveColumn: true,
	KindRenameColumn: true,
	KindMoveColumn:   true,
	KindEditCell:     true,
	KindEditRow:      true,
	KindEditColumn:   true,
	KindLimit:        true,
	KindLimitPreset:  true,
	KindSchema:       true,
}

// String returns the canonical command word.
func (k Kind) String() string {
	return string(k)
}

// IsHistoryTracked reports whether the command takes an undo snapshot of
// the current table before it runs.
func (k Kind) IsHistoryTracked() bool {
	return trackedKinds[k]
}

// Command is one parsed input line: the command kind plus its raw
// space-separated arguments.
type Command struct {
	Kind Kind
	Args []string
}

// ParseCommand splits an input line into a command and arguments. The first
// field is the command word (any alias); the rest are passed through
// untouched. Returns ErrEmptyCommand for blank input and ErrUnknownCommand
// for an unrecognized command word.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	kind, ok := commandAliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	return Command{Kind: kind, Args: fields[1:]}, nil
}
