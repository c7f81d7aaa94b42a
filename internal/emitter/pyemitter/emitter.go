package pyemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/mark3labs/discovery2py/internal/model"
)

// Options controls how the Python emitter writes an output unit.
type Options struct {
	OutDir    string // required; target directory
	Force     bool   // overwrite existing files
	DryRun    bool   // don't write, only plan
	DumpModel bool   // also write a <unit>.model.json sidecar
	Verbose   bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
}

// Result returns the planned files and the resolved unit name.
type Result struct {
	UnitName string
	Planned  []PlannedFile
}

// Emit renders one document's classes in dependency order and writes the
// output unit (plus the optional model dump) into OutDir.
func Emit(ctx context.Context, f *model.File, opts Options) (*Result, error) {
	_ = ctx
	if f == nil {
		return nil, fmt.Errorf("pyemitter: nil file model")
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("pyemitter: OutDir is required")
	}

	files := map[string][]byte{
		f.Name + ".py": Render(f),
	}
	if opts.DumpModel {
		dump, err := json.MarshalIndent(modelDump{Name: f.Name, Classes: f.Classes()}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("pyemitter: marshal model dump: %w", err)
		}
		files[f.Name+".model.json"] = append(dump, '\n')
	}

	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel])})
	}

	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("pyemitter: resolve output directory: %w", err)
	}
	if err := validateTargets(abs, rels, opts.Force); err != nil {
		return nil, err
	}

	if !opts.DryRun {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("pyemitter: create output directory: %w", err)
		}
		for _, rel := range rels {
			if err := writeFileAtomic(abs, rel, files[rel]); err != nil {
				return nil, fmt.Errorf("pyemitter: write file %s: %w", rel, err)
			}
		}
	}

	return &Result{UnitName: f.Name, Planned: planned}, nil
}

type modelDump struct {
	Name    string
	Classes []*model.Class
}

// validateTargets rejects writes over existing files unless Force is set.
func validateTargets(absDir string, rels []string, force bool) error {
	if force {
		return nil
	}
	for _, rel := range rels {
		target := filepath.Join(absDir, rel)
		if st, err := os.Stat(target); err == nil && st.Mode().IsRegular() {
			return fmt.Errorf("output file %q already exists (use --force to overwrite)", target)
		}
	}
	return nil
}

// writeFileAtomic writes via a temp file in the same directory plus rename,
// so a crash never leaves a half-written unit behind.
func writeFileAtomic(baseDir, rel string, content []byte) error {
	tmp, err := os.CreateTemp(baseDir, ".tmp-pyemitter-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if tmp != nil {
			tmp.Close()
		}
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, filepath.Join(baseDir, rel)); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	success = true
	return nil
}
