package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Marker file names probed in each directory during the upward search, in
// priority order. The bare ".picoforge" spelling is accepted for projects
// that only need the root pin, with all settings defaulted.
var markerNames = []string{".picoforge.toml", ".picoforge.yaml", ".picoforge"}

// MarkerConfig is the parsed content of a marker file.
//
// All keys are optional; an empty marker still pins the project root to the
// directory containing it.
type MarkerConfig struct {
	// Root overrides the project root. Relative paths are resolved against
	// the marker file's directory.
	Root string `toml:"root" yaml:"root"`

	// Layout forces the layout kind: "flat" or "src". Empty means infer
	// from directory shape.
	Layout string `toml:"layout" yaml:"layout"`

	// Source overrides the package source directory, relative to the root.
	// Empty means derive from the layout kind and package name.
	Source string `toml:"source" yaml:"source"`

	// Exclude lists directory names skipped during source enumeration.
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// loadMarker probes dir for a marker file and parses it if present.
// Returns (nil, "", nil) when no marker file exists in dir.
func loadMarker(dir string) (*MarkerConfig, string, error) {
	for _, name := range markerNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("reading marker %s: %w", path, err)
		}

		cfg, err := parseMarker(name, data)
		if err != nil {
			return nil, "", fmt.Errorf("parsing marker %s: %w", path, err)
		}
		return cfg, path, nil
	}
	return nil, "", nil
}

// parseMarker decodes marker content by file extension. TOML is the
// canonical format; YAML is accepted as an alternate spelling. A bare
// ".picoforge" file is parsed as TOML, and a blank one yields all defaults.
func parseMarker(name string, data []byte) (*MarkerConfig, error) {
	cfg := &MarkerConfig{}

	if strings.TrimSpace(string(data)) == "" {
		return cfg, nil
	}

	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *MarkerConfig) validate() error {
	switch c.Layout {
	case "", string(LayoutFlat), string(LayoutSrc):
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be %q or %q", c.Layout, LayoutFlat, LayoutSrc)
	}
}
