package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Kind tags a source file's role, decided once during enumeration.
type Kind string

const (
	// KindPythonSource marks files eligible for compilation.
	KindPythonSource Kind = "python_source"

	// KindOther marks files that are never compiled, only copied.
	KindOther Kind = "other"
)

// SourceFile is one enumerated file under the source directory.
type SourceFile struct {
	// RelPath is the path relative to the source directory, using the
	// platform separator.
	RelPath string

	// AbsPath is the absolute on-disk path.
	AbsPath string

	// ModTime is the file's modification time at scan time.
	ModTime time.Time

	// Kind is the file's role, fixed at enumeration.
	Kind Kind
}

// ScanOptions controls source enumeration.
type ScanOptions struct {
	// IncludeLib includes the local package-install directory (lib/),
	// which is excluded by default.
	IncludeLib bool
}

// Scan enumerates source files under the root's source directory.
//
// Compiled Python caches (*.pyc, __pycache__) are never enumerated. The
// lib/ directory is skipped unless opts.IncludeLib is set, and directory
// names listed in the root's exclude list are always skipped. Results are
// sorted by relative path so every downstream consumer sees a deterministic
// order.
func Scan(root *Root, opts ScanOptions) ([]SourceFile, error) {
	var files []SourceFile

	err := filepath.WalkDir(root.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root.SourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == "__pycache__" {
				return filepath.SkipDir
			}
			if d.Name() == "lib" && rel == "lib" && !opts.IncludeLib {
				return filepath.SkipDir
			}
			for _, ex := range root.Exclude {
				if d.Name() == ex {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if strings.HasSuffix(d.Name(), ".pyc") {
			return nil
		}

		// A .mpy beside its .py is a derived artifact, not a source. A
		// standalone .mpy (distributed precompiled) is enumerated normally.
		if strings.HasSuffix(d.Name(), ".mpy") {
			py := strings.TrimSuffix(path, ".mpy") + ".py"
			if _, err := os.Stat(py); err == nil {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		kind := KindOther
		if strings.HasSuffix(d.Name(), ".py") {
			kind = KindPythonSource
		}

		files = append(files, SourceFile{
			RelPath: rel,
			AbsPath: path,
			ModTime: info.ModTime(),
			Kind:    kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root.SourceDir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
