package pkgindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Installer downloads packages into a target directory tree.
type Installer struct {
	Client *Client
}

// NewInstaller returns an Installer backed by the official index.
func NewInstaller() *Installer {
	return &Installer{Client: NewClient()}
}

// Install downloads pkg and its bundled dependency files into targetDir,
// preserving the index's relative file layout. Returns the relative paths
// written, sorted in listing order.
//
// Standard-library members listed as dependencies are skipped; requesting a
// standard-library package directly is a *StandardLibraryError. An unknown
// package surfaces as a *IndexError with NotFound().
func (i *Installer) Install(ctx context.Context, pkg, targetDir string) ([]string, error) {
	info, err := i.Client.Latest(ctx, pkg)
	if err != nil {
		var ie *IndexError
		if errors.As(err, &ie) && ie.NotFound() {
			return nil, fmt.Errorf("'%s' not found in MicroPython index", pkg)
		}
		return nil, err
	}

	stdlib, err := i.Client.StandardLibrary(ctx)
	if err != nil {
		return nil, err
	}

	var installed []string
	for _, entry := range info.Hashes {
		relPath, hash := entry[0], entry[1]

		name := memberName(relPath)
		if stdlib[name] {
			if name == pkg {
				return nil, &StandardLibraryError{Package: pkg}
			}
			continue // bundled stdlib dependency, ships with the firmware
		}

		data, err := i.Client.FetchFile(ctx, hash)
		if err != nil {
			return installed, fmt.Errorf("fetching %s: %w", relPath, err)
		}

		outPath := filepath.Join(targetDir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return installed, fmt.Errorf("installing %s: %w", relPath, err)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return installed, fmt.Errorf("installing %s: %w", relPath, err)
		}
		installed = append(installed, relPath)
	}
	return installed, nil
}

// memberName derives the package member a listed file belongs to: the file's
// top-level directory, or the bare module name for a top-level file.
func memberName(relPath string) string {
	relPath = strings.TrimPrefix(relPath, "./")
	if idx := strings.IndexByte(relPath, '/'); idx >= 0 {
		return relPath[:idx]
	}
	return strings.TrimSuffix(relPath, filepath.Ext(relPath))
}
