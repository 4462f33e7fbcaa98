// Package session drives trestle's editor state: named pages of tables with
// their undo histories, and the dispatcher that applies parsed editor
// commands to them. The shell and the CLI are thin wrappers around it.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/trestle/pkg/types"
)

// Session errors.
var (
	ErrNoPage        = errors.New("no open page")
	ErrUnknownPage   = errors.New("unknown page")
	ErrUnknownPreset = errors.New("unknown preset")
	ErrPromptClosed  = errors.New("input closed")

	// ErrExit signals that the exit command ran; the shell stops its loop
	// when it sees it.
	ErrExit = errors.New("exit")
)

// Prompter supplies interactive per-cell input for the add-row and edit-row
// flows when no values are given on the command line. ok is false when the
// input stream is closed.
type Prompter interface {
	Prompt(label string) (text string, ok bool)
}

// Page is one open table with its undo history and optional backing file.
type Page struct {
	Name    string
	Table   *types.Table
	History *types.History
	Source  string // backing file path; empty for scratch pages
}

// Session holds the open pages and executes editor commands against the
// current one. Not safe for concurrent use; the shell is single-threaded.
type Session struct {
	cfg      types.Config
	pages    map[string]*Page
	order    []string // page names in creation order
	current  string   // name of the current page; empty when none open
	out      io.Writer
	prompter Prompter
	presets  map[string]types.ValueLimiter
	depth    int // execute nesting depth
}

// New returns an empty session. Command output goes to out (os.Stdout when
// nil). prompter may be nil; the interactive add-row and edit-row flows
// then fall back to defaults. Limiter presets are the built-ins merged with
// cfg.PresetFile when that file exists.
func New(cfg types.Config, out io.Writer, prompter Prompter) *Session {
	if out == nil {
		out = os.Stdout
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = types.DefaultHistoryCapacity
	}
	return &Session{
		cfg:      cfg,
		pages:    map[string]*Page{},
		out:      out,
		prompter: prompter,
		presets:  loadPresets(cfg.PresetFile),
	}
}

// Config returns the session's resolved configuration.
func (s *Session) Config() types.Config {
	return s.cfg
}

// CurrentPage returns the page under the cursor, or ErrNoPage when none is
// open.
func (s *Session) CurrentPage() (*Page, error) {
	if s.current == "" {
		return nil, ErrNoPage
	}
	return s.pages[s.current], nil
}

// AddPage registers a page under name, replacing any page with the same
// name, and moves the cursor to it. The page starts with a fresh history.
func (s *Session) AddPage(name string, table *types.Table, source string) *Page {
	page := &Page{
		Name:    name,
		Table:   table,
		History: types.NewHistory(s.cfg.HistoryCapacity),
		Source:  source,
	}
	if _, exists := s.pages[name]; !exists {
		s.order = append(s.order, name)
	}
	s.pages[name] = page
	s.current = name
	return page
}

// SwitchPage moves the cursor to the named page.
func (s *Session) SwitchPage(name string) error {
	if _, ok := s.pages[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPage, name)
	}
	s.current = name
	return nil
}

// PageNames returns the open page names in creation order.
func (s *Session) PageNames() []string {
	return append([]string(nil), s.order...)
}

// newPageName generates a unique scratch page name.
func newPageName() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to UUID v4 if v7 generation fails.
		return "page-" + uuid.New().String()
	}
	return "page-" + id.String()
}
