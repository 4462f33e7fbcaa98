package session

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// renderTable shows the rendered table text: through the configured viewer
// command when one is set, plainly on the session output otherwise. The
// viewer runs via the shell with the text on its stdin, so commands like
// "column -t -s," work unquoted in config.
func (s *Session) renderTable(text string) error {
	if s.cfg.Viewer == "" {
		fmt.Fprintln(s.out, text)
		return nil
	}
	cmd := exec.Command("sh", "-c", s.cfg.Viewer)
	cmd.Stdin = strings.NewReader(text + "\n")
	cmd.Stdout = s.out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running viewer %q: %w", s.cfg.Viewer, err)
	}
	return nil
}
