// Package pycheck runs an external syntax checker against generated output
// units. A failed check names the unit and is reported by the caller; it
// never stops generation of other documents.
package pycheck

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Checker validates one written output file.
type Checker interface {
	Check(ctx context.Context, path string) error
}

// CommandChecker shells out to an external command with the file path
// appended as the final argument.
type CommandChecker struct {
	Name string
	Args []string
}

// New returns the default checker, the CPython byte-compiler.
func New() *CommandChecker {
	return &CommandChecker{Name: "python3", Args: []string{"-m", "py_compile"}}
}

func (c *CommandChecker) Check(ctx context.Context, path string) error {
	args := append(append([]string(nil), c.Args...), path)
	cmd := exec.CommandContext(ctx, c.Name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("syntax check failed for %s: %s", filepath.Base(path), detail)
	}
	return nil
}
