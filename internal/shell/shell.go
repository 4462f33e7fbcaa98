// Package shell runs trestle's command loop: an interactive prompt on a
// terminal, a plain line reader when input is piped.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mesh-intelligence/trestle/internal/session"
	"github.com/mesh-intelligence/trestle/pkg/types"
)

const prompt = "trestle> "

// Shell reads command lines and feeds them to its session. It doubles as
// the session's Prompter, so interactive add-row and edit-row answers come
// from the same input stream as commands.
type Shell struct {
	session     *session.Session
	scanner     *bufio.Scanner
	out         io.Writer
	errOut      io.Writer
	interactive bool
}

// New builds a shell and its session. in, out, and errOut default to the
// standard streams when nil. The prompt is shown only when in is a
// terminal, so piped scripts do not get prompt noise in their output.
func New(cfg types.Config, in io.Reader, out, errOut io.Writer) *Shell {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	sh := &Shell{
		scanner: bufio.NewScanner(in),
		out:     out,
		errOut:  errOut,
	}
	if f, ok := in.(*os.File); ok {
		sh.interactive = term.IsTerminal(int(f.Fd()))
	}
	sh.session = session.New(cfg, out, sh)
	return sh
}

// Session returns the shell's session so callers can preload pages before
// entering the loop.
func (sh *Shell) Session() *session.Session {
	return sh.session
}

// Run reads and executes commands until exit or end of input. Command
// errors go to the error writer and the loop continues; only a read
// failure is returned.
func (sh *Shell) Run() error {
	for {
		if sh.interactive {
			fmt.Fprint(sh.out, prompt)
		}
		if !sh.scanner.Scan() {
			break
		}
		if err := sh.session.Execute(sh.scanner.Text()); err != nil {
			if errors.Is(err, session.ErrExit) {
				return nil
			}
			fmt.Fprintf(sh.errOut, "error: %v\n", err)
		}
	}
	return sh.scanner.Err()
}

// RunBatch executes a semicolon-separated command string, stopping at the
// first error. An exit command ends the batch without being an error.
func (sh *Shell) RunBatch(commands string) error {
	for _, part := range strings.Split(commands, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := sh.session.Execute(part); err != nil {
			if errors.Is(err, session.ErrExit) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Prompt implements session.Prompter by reading one line from the shell's
// input. ok is false at end of input.
func (sh *Shell) Prompt(label string) (string, bool) {
	if sh.interactive {
		fmt.Fprint(sh.out, label)
	}
	if !sh.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(sh.scanner.Text()), true
}
