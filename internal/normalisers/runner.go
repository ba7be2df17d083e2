package normalisers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	// Run executes the named program and returns its stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command and returns stdout.
// Stderr is folded into the error so tool diagnostics are not lost.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return stdout.Bytes(), nil
}

// ToolPath resolves a binary inside dir, or returns name unchanged so
// that the PATH lookup applies.
func ToolPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// WriteTemp stores content in a fresh temporary directory and returns the
// file path together with a cleanup func that removes the directory.
func WriteTemp(content []byte, filename string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "lexis-extract-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	return path, cleanup, nil
}
