package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/trestle/internal/paths"
	"github.com/mesh-intelligence/trestle/pkg/types"
)

func (s *Session) runImport(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: import <file> [noheader]", ErrUsage)
	}
	hasHeader := true
	if len(args) == 2 {
		if args[1] != "noheader" {
			return fmt.Errorf("%w: import <file> [noheader]", ErrUsage)
		}
		hasHeader = false
	}
	page, err := s.ImportFile(args[0], hasHeader)
	if err != nil {
		return err
	}
	log.Infof("imported %s: %d rows, %d columns",
		page.Source, page.Table.RowCount(), page.Table.ColumnCount())
	return nil
}

func (s *Session) runExport(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: export <file>", ErrUsage)
	}
	if err := exportTable(args[0], page.Table); err != nil {
		return err
	}
	log.Infof("exported %s: %d rows, %d columns",
		args[0], page.Table.RowCount(), page.Table.ColumnCount())
	return nil
}

func (s *Session) runWrite(args []string) error {
	page, err := s.CurrentPage()
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: write", ErrUsage)
	}
	wrote, err := s.WriteSource(page)
	if err != nil {
		return err
	}
	if !wrote {
		fmt.Fprintln(s.out, "page has no source file; use export <file>")
		return nil
	}
	fmt.Fprintln(s.out, "wrote "+page.Source)
	return nil
}

// ImportFile reads a delimited file into a new page named by the cleaned
// path and moves the cursor to it. Re-importing a path replaces its page
// and starts a fresh history.
func (s *Session) ImportFile(path string, hasHeader bool) (*Page, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := readRecords(f, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	table, err := types.FromRecords(records, hasHeader)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	name := filepath.Clean(path)
	return s.AddPage(name, table, name), nil
}

// WriteSource overwrites the page's source file with the current table,
// copying the previous file into the cache directory first. Returns false
// with no error when the page has no source file, meaning no write
// occurred.
func (s *Session) WriteSource(page *Page) (bool, error) {
	if page.Source == "" {
		return false, nil
	}
	if err := backupFile(page.Source); err != nil {
		return false, err
	}
	if err := exportTable(page.Source, page.Table); err != nil {
		return false, err
	}
	log.Infof("wrote %s: %d rows, %d columns",
		page.Source, page.Table.RowCount(), page.Table.ColumnCount())
	return true, nil
}

// readRecords splits input on the configured line delimiter and parses each
// record as one CSV line. A trailing final delimiter is a terminator, not a
// separator. Interior blank records are skipped under IgnoreEmptyRows.
// Records that disagree with the first record's width are an error under
// StrictImport, and are padded or truncated to fit otherwise.
func readRecords(r io.Reader, cfg types.Config) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	delim := cfg.LineDelimiter
	if delim == "" {
		delim = "\n"
	}
	lines := strings.Split(string(data), delim)
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var records [][]string
	width := -1
	for n, line := range lines {
		if delim == "\n" {
			line = strings.TrimSuffix(line, "\r")
		} else {
			// With a custom record delimiter the file's own line endings
			// are noise around each record.
			line = strings.Trim(line, "\r\n")
		}
		if line == "" {
			if cfg.IgnoreEmptyRows {
				continue
			}
			line = strings.Repeat(",", max(width-1, 0))
		}
		fields, err := csvSplit(line)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n+1, err)
		}
		if width < 0 {
			width = len(fields)
		}
		if len(fields) != width {
			if cfg.StrictImport {
				return nil, fmt.Errorf("record %d: %w: got %d fields, want %d",
					n+1, types.ErrRowLengthMismatch, len(fields), width)
			}
			for len(fields) < width {
				fields = append(fields, "")
			}
			fields = fields[:width]
		}
		records = append(records, fields)
	}
	return records, nil
}

// exportTable writes the table as CSV, header first, using the atomic
// temp-file, fsync, rename pattern.
func exportTable(path string, table *types.Table) error {
	return atomicWrite(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(table.Records()); err != nil {
			return fmt.Errorf("writing records: %w", err)
		}
		cw.Flush()
		return cw.Error()
	})
}

// backupFile copies the file into the cache directory under its base name.
// A missing source is not an error; there is nothing to preserve.
func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s for backup: %w", path, err)
	}
	cacheDir, err := paths.ResolveCacheDir()
	if err != nil {
		return fmt.Errorf("resolving cache dir: %w", err)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	backup := filepath.Join(cacheDir, filepath.Base(path))
	if err := atomicWrite(backup, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return err
	}
	log.Debugf("backed up %s to %s", path, backup)
	return nil
}

// atomicWrite writes through a temp file in the target directory, syncing
// and renaming into place so readers never observe a partial file.
func atomicWrite(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}
