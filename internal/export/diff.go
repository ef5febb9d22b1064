package export

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Diff is a three-way comparison of two relative-path sets.
type Diff struct {
	// OnlySource lists paths present in the source tree but not the
	// export tree.
	OnlySource []string `json:"only_source"`

	// OnlyExport lists paths present in the export tree but not the
	// source tree.
	OnlyExport []string `json:"only_export"`

	// Common lists paths present in both trees.
	Common []string `json:"common"`
}

// DiffPaths computes the three-way diff of two path sets. Pure: the result
// is fully determined by the inputs, and each slice comes back sorted.
func DiffPaths(source, export map[string]struct{}) Diff {
	var d Diff
	for p := range source {
		if _, ok := export[p]; ok {
			d.Common = append(d.Common, p)
		} else {
			d.OnlySource = append(d.OnlySource, p)
		}
	}
	for p := range export {
		if _, ok := source[p]; !ok {
			d.OnlyExport = append(d.OnlyExport, p)
		}
	}
	sort.Strings(d.OnlySource)
	sort.Strings(d.OnlyExport)
	sort.Strings(d.Common)
	return d
}

// diffTrees walks both trees and diffs their relative-path sets. A missing
// destination tree diffs as empty rather than failing: exporting nothing is
// a reportable state, not an error.
func diffTrees(sourceDir, destDir string) (Diff, error) {
	source, err := pathSet(sourceDir)
	if err != nil {
		return Diff{}, err
	}
	dest, err := pathSet(destDir)
	if err != nil {
		return Diff{}, err
	}
	return DiffPaths(source, dest), nil
}

// pathSet collects the relative paths of all regular files under dir.
func pathSet(dir string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		set[rel] = struct{}{}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}
	return set, nil
}
