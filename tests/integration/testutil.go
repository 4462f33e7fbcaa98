// Package integration provides CLI integration tests for trestle.
package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// trestleBin is the path to the built trestle binary.
	trestleBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetTrestleBin sets the path to the trestle binary (called from TestMain).
func SetTrestleBin(path string) {
	trestleBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own config,
// cache, and working directories, so tests never touch the user's real
// ones.
type TestEnv struct {
	t         *testing.T
	TempDir   string
	ConfigDir string
	CacheDir  string
	WorkDir   string
	// ExtraEnv is appended to the child process environment.
	ExtraEnv []string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build trestle: %v", buildErr)
	}
	if trestleBin == "" {
		t.Fatal("trestle binary not built (trestleBin is empty)")
	}

	tempDir := t.TempDir()
	env := &TestEnv{
		t:         t,
		TempDir:   tempDir,
		ConfigDir: filepath.Join(tempDir, "config"),
		CacheDir:  filepath.Join(tempDir, "cache"),
		WorkDir:   filepath.Join(tempDir, "work"),
	}
	for _, dir := range []string{env.ConfigDir, env.CacheDir, env.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return env
}

// WriteConfig replaces the environment's config.yaml.
func (e *TestEnv) WriteConfig(content string) {
	e.t.Helper()
	path := filepath.Join(e.ConfigDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write config: %v", err)
	}
}

// WriteFile drops a file into the working directory and returns its path.
func (e *TestEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.WorkDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// ReadFile reads a file from the working directory.
func (e *TestEnv) ReadFile(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.WorkDir, name))
	if err != nil {
		e.t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// CmdResult holds the result of a trestle command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunTrestle executes the trestle CLI with the given arguments and no
// input.
func (e *TestEnv) RunTrestle(args ...string) CmdResult {
	return e.RunTrestleInput("", args...)
}

// RunTrestleInput executes the trestle CLI with input on stdin. The
// environment's config dir is passed by flag and its cache dir through
// TRESTLE_CACHE_DIR, so each test is fully isolated.
func (e *TestEnv) RunTrestleInput(input string, args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.ConfigDir}, args...)
	cmd := exec.Command(trestleBin, allArgs...)
	cmd.Dir = e.WorkDir
	cmd.Env = append(os.Environ(), "TRESTLE_CACHE_DIR="+e.CacheDir)
	cmd.Env = append(cmd.Env, e.ExtraEnv...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run trestle: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunTrestle executes the trestle CLI and fails the test if it
// returns non-zero.
func (e *TestEnv) MustRunTrestle(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunTrestle(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("trestle %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}
