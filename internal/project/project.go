package project

import (
	"path/filepath"
	"strings"
)

// LayoutKind identifies where the package directory lives relative to the
// project root.
type LayoutKind string

const (
	// LayoutFlat means the package directory sits directly under the root
	// (<root>/<package>).
	LayoutFlat LayoutKind = "flat"

	// LayoutSrc means the package directory sits under a src/ subdirectory
	// (<root>/src/<package>).
	LayoutSrc LayoutKind = "src"
)

// MarkerSource records which signal identified the project root.
type MarkerSource string

const (
	// MarkerExplicitConfig means a marker config file was found. Explicit
	// config always overrides heuristic inference.
	MarkerExplicitConfig MarkerSource = "explicit_config"

	// MarkerLicense means a LICENSE file identified the root.
	MarkerLicense MarkerSource = "license"

	// MarkerPyproject means a pyproject.toml manifest identified the root.
	MarkerPyproject MarkerSource = "pyproject"

	// MarkerReadme means a README identified the root.
	MarkerReadme MarkerSource = "readme"
)

// Root describes a resolved project. Created once per invocation by Resolve
// and immutable thereafter.
type Root struct {
	// Path is the absolute project root directory.
	Path string

	// Layout is the detected or configured layout kind. Exactly one kind is
	// selected; resolution fails rather than guessing.
	Layout LayoutKind

	// SourceDir is the absolute package source directory.
	SourceDir string

	// Marker records which signal established the root.
	Marker MarkerSource

	// Exclude lists directory names (relative to SourceDir) skipped during
	// source enumeration, from the marker config.
	Exclude []string
}

// LibDir returns the local package-install directory under the source tree.
func (r *Root) LibDir() string {
	return filepath.Join(r.SourceDir, "lib")
}

// ExportDir returns the default export destination under the project root.
func (r *Root) ExportDir() string {
	return filepath.Join(r.Path, "export")
}

// PackageName derives the package directory name from a root directory name:
// lowercased, with dashes replaced by underscores (so project "Pico-Sensor"
// maps to package "pico_sensor").
func PackageName(rootPath string) string {
	name := filepath.Base(rootPath)
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}
