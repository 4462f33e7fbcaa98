package session

import (
	"errors"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantKind Kind
		wantArgs int
		wantErr  error
	}{
		{"create a,b", KindCreate, 1, nil},
		{"c a,b", KindCreate, 1, nil},
		{"IMPORT data.csv", KindImport, 1, nil},
		{"ar 0 x,y", KindAddRow, 2, nil},
		{"m 1 2", KindMoveRow, 2, nil},
		{"edit 0 name apple", KindEditCell, 3, nil},
		{"e 0 name apple", KindEditCell, 3, nil},
		{"q", KindExit, 0, nil},
		{"quit", KindExit, 0, nil},
		{"run steps.txt", KindExecute, 1, nil},
		{"", "", 0, ErrEmptyCommand},
		{"   ", "", 0, ErrEmptyCommand},
		{"frobnicate", "", 0, ErrUnknownCommand},
	}
	for _, tt := range tests {
		cmd, err := ParseCommand(tt.line)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseCommand(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if cmd.Kind != tt.wantKind {
			t.Errorf("ParseCommand(%q).Kind = %q, want %q", tt.line, cmd.Kind, tt.wantKind)
		}
		if len(cmd.Args) != tt.wantArgs {
			t.Errorf("ParseCommand(%q) args = %v, want %d", tt.line, cmd.Args, tt.wantArgs)
		}
	}
}

func TestAliasesResolveToKnownKinds(t *testing.T) {
	for alias, kind := range commandAliases {
		if _, ok := commandAliases[string(kind)]; !ok {
			t.Errorf("alias %q maps to %q, which is not itself a command word", alias, kind)
		}
	}
}

func TestIsHistoryTracked(t *testing.T) {
	tracked := []Kind{
		KindCreate, KindAddRow, KindRemoveRow, KindMoveRow,
		KindAddColumn, KindRemoveColumn, KindRenameColumn, KindMoveColumn,
		KindEditCell, KindEditRow, KindEditColumn,
		KindLimit, KindLimitPreset, KindSchema,
	}
	for _, k := range tracked {
		if !k.IsHistoryTracked() {
			t.Errorf("%q.IsHistoryTracked() = false, want true", k)
		}
	}
	untracked := []Kind{
		KindImport, KindExport, KindWrite, KindPrint, KindPrintCell,
		KindUndo, KindRedo, KindHistory, KindExecute, KindPage,
		KindSchemaExport, KindSchemaInit, KindHelp, KindVersion, KindExit,
	}
	for _, k := range untracked {
		if k.IsHistoryTracked() {
			t.Errorf("%q.IsHistoryTracked() = true, want false", k)
		}
	}
}
