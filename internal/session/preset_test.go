package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/trestle/pkg/types"
)

func TestBuiltinPresets(t *testing.T) {
	presets := loadPresets("")
	for name := range builtinPresets {
		lim, ok := presets[name]
		if !ok {
			t.Fatalf("builtin preset %q missing", name)
		}
		if lim.Default != nil && !lim.Qualify(*lim.Default) {
			t.Errorf("preset %q: default %q does not qualify its own limiter",
				name, lim.Default.String())
		}
	}
}

func TestBuiltinPresetPatterns(t *testing.T) {
	tests := []struct {
		preset string
		value  string
		want   bool
	}{
		{"email", "jane@doe.org", true},
		{"email", "not-an-email", false},
		{"date", "2024-02-29", true},
		{"date", "2024-13-01", false},
		{"time", "23:59", true},
		{"time", "24:00", false},
		{"float", "-3.14", true},
		{"float", "threeish", false},
		{"url", "https://example.com/x", true},
		{"url", "example.com", false},
	}
	presets := loadPresets("")
	for _, tt := range tests {
		lim, ok := presets[tt.preset]
		if !ok {
			t.Fatalf("preset %q missing", tt.preset)
		}
		if got := lim.Qualify(types.NewText(tt.value)); got != tt.want {
			t.Errorf("preset %q: Qualify(%q) = %v, want %v", tt.preset, tt.value, got, tt.want)
		}
	}
}

func TestLoadPresetFileMergesUserEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.csv")
	content := "name,type,default,variants,pattern\n" +
		"yesno,text,yes,yes no,\n" +
		"email,text,root@localhost.local,,\n" +
		"broken,text\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	presets := loadPresets(path)

	yesno, ok := presets["yesno"]
	if !ok {
		t.Fatal("user preset yesno missing")
	}
	if !yesno.Qualify(types.NewText("no")) {
		t.Error(`yesno preset should accept "no"`)
	}
	if yesno.Qualify(types.NewText("maybe")) {
		t.Error(`yesno preset should reject "maybe"`)
	}

	// User entries win over built-ins of the same name.
	email := presets["email"]
	if email.Default == nil || email.Default.String() != "root@localhost.local" {
		t.Errorf("email default = %v, want the user override", email.Default)
	}

	// A malformed record is skipped, not fatal, and built-ins survive.
	if _, ok := presets["broken"]; ok {
		t.Error("malformed preset record should be skipped")
	}
	if _, ok := presets["date"]; !ok {
		t.Error("built-in presets should survive a user file")
	}
}

func TestLoadPresetFileMissing(t *testing.T) {
	presets := loadPresets(filepath.Join(t.TempDir(), "absent.csv"))
	if len(presets) != len(builtinPresets) {
		t.Errorf("got %d presets, want the %d built-ins", len(presets), len(builtinPresets))
	}
}

func TestSessionPresetNames(t *testing.T) {
	s, _ := newTestSession(t)
	names := s.PresetNames()
	if len(names) != len(builtinPresets) {
		t.Fatalf("got %d preset names, want %d", len(names), len(builtinPresets))
	}
	seen := map[string]bool{}
	for _, name := range names {
		seen[name] = true
	}
	for name := range builtinPresets {
		if !seen[name] {
			t.Errorf("preset %q missing from PresetNames", name)
		}
	}
}
