package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// maxSearchDepth bounds the upward search so resolution never scans an
// unbounded ancestor chain on deeply nested filesystems.
const maxSearchDepth = 32

// Heuristic root signals checked when no marker file is present, in
// precedence order.
var rootSignals = []struct {
	name   string
	source MarkerSource
}{
	{"LICENSE", MarkerLicense},
	{"pyproject.toml", MarkerPyproject},
	{"README.md", MarkerReadme},
	{"README", MarkerReadme},
}

// Resolve establishes the project root, layout kind and source directory by
// searching upward from start.
//
// Each directory from start toward the filesystem root is probed for, in
// priority order:
//  1. a marker config file: explicit config always wins, even when
//     heuristic inference would suggest a different layout;
//  2. a heuristic root signal (LICENSE, pyproject.toml, README) beside a
//     recognizable package directory, from which the layout is inferred.
//
// The search stops at the filesystem root or after a fixed depth, whichever
// comes first. If neither a marker nor an inferable layout is found, Resolve
// returns a *RootNotFoundError. Probing is read-only.
func Resolve(start string) (*Root, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolving start path: %w", err)
	}

	dir := abs
	for depth := 0; depth < maxSearchDepth; depth++ {
		cfg, markerPath, err := loadMarker(dir)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			return rootFromMarker(dir, markerPath, cfg)
		}

		if source, ok := probeSignals(dir); ok {
			root, err := inferRoot(dir, source)
			if err != nil {
				return nil, err
			}
			return root, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // filesystem root
		}
		dir = parent
	}

	return nil, &RootNotFoundError{
		Start:  abs,
		Reason: "no marker file or root signal (LICENSE, pyproject.toml, README) found",
	}
}

// probeSignals checks dir for heuristic root signals.
func probeSignals(dir string) (MarkerSource, bool) {
	for _, sig := range rootSignals {
		info, err := os.Stat(filepath.Join(dir, sig.name))
		if err == nil && !info.IsDir() {
			return sig.source, true
		}
	}
	return "", false
}

// rootFromMarker builds a Root from an explicit marker config found in dir.
func rootFromMarker(dir, markerPath string, cfg *MarkerConfig) (*Root, error) {
	rootPath := dir
	if cfg.Root != "" {
		if filepath.IsAbs(cfg.Root) {
			rootPath = filepath.Clean(cfg.Root)
		} else {
			rootPath = filepath.Join(dir, cfg.Root)
		}
		info, err := os.Stat(rootPath)
		if err != nil || !info.IsDir() {
			return nil, &RootNotFoundError{
				Start:  dir,
				Reason: fmt.Sprintf("marker %s overrides root to %s, which is not a directory", markerPath, rootPath),
			}
		}
	}

	root := &Root{
		Path:    rootPath,
		Marker:  MarkerExplicitConfig,
		Exclude: cfg.Exclude,
	}

	// Explicit layout is trusted over directory shape, but the source
	// directory it implies must exist.
	if cfg.Layout != "" {
		root.Layout = LayoutKind(cfg.Layout)
		root.SourceDir = sourceDirFor(rootPath, root.Layout, cfg.Source)
		if !isDir(root.SourceDir) {
			return nil, &RootNotFoundError{
				Start:  dir,
				Reason: fmt.Sprintf("configured %s layout requires directory %s", root.Layout, root.SourceDir),
			}
		}
		return root, nil
	}

	layout, sourceDir, err := inferLayout(rootPath, cfg.Source)
	if err != nil {
		return nil, err
	}
	root.Layout = layout
	root.SourceDir = sourceDir
	return root, nil
}

// inferRoot builds a Root for a directory identified by a heuristic signal.
func inferRoot(dir string, source MarkerSource) (*Root, error) {
	layout, sourceDir, err := inferLayout(dir, "")
	if err != nil {
		return nil, err
	}
	return &Root{
		Path:      dir,
		Layout:    layout,
		SourceDir: sourceDir,
		Marker:    source,
	}, nil
}

// inferLayout selects exactly one layout kind from directory shape:
// src/<name> wins over a top-level <name>. If neither exists, resolution
// fails rather than guessing.
func inferLayout(rootPath, sourceOverride string) (LayoutKind, string, error) {
	if sourceOverride != "" {
		sourceDir := filepath.Join(rootPath, sourceOverride)
		if !isDir(sourceDir) {
			return "", "", &RootNotFoundError{
				Start:  rootPath,
				Reason: fmt.Sprintf("configured source directory %s does not exist", sourceDir),
			}
		}
		layout := LayoutFlat
		if filepath.Base(filepath.Dir(sourceDir)) == "src" {
			layout = LayoutSrc
		}
		return layout, sourceDir, nil
	}

	name := PackageName(rootPath)
	if srcDir := filepath.Join(rootPath, "src", name); isDir(srcDir) {
		return LayoutSrc, srcDir, nil
	}
	if flatDir := filepath.Join(rootPath, name); isDir(flatDir) {
		return LayoutFlat, flatDir, nil
	}
	return "", "", &RootNotFoundError{
		Start:  rootPath,
		Reason: fmt.Sprintf("root signal present but neither src/%s nor %s exists", name, name),
	}
}

// sourceDirFor derives the source directory for an explicitly configured
// layout.
func sourceDirFor(rootPath string, layout LayoutKind, sourceOverride string) string {
	if sourceOverride != "" {
		return filepath.Join(rootPath, sourceOverride)
	}
	name := PackageName(rootPath)
	if layout == LayoutSrc {
		return filepath.Join(rootPath, "src", name)
	}
	return filepath.Join(rootPath, name)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
