package export

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func set(paths ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

func TestDiffPaths(t *testing.T) {
	tests := []struct {
		name   string
		source map[string]struct{}
		export map[string]struct{}
		want   Diff
	}{
		{
			name:   "disjoint and common",
			source: set("a.py", "b.py", "cfg.json"),
			export: set("a.py", "a.mpy", "cfg.json"),
			want: Diff{
				OnlySource: []string{"b.py"},
				OnlyExport: []string{"a.mpy"},
				Common:     []string{"a.py", "cfg.json"},
			},
		},
		{
			name:   "empty export",
			source: set("a.py"),
			export: set(),
			want:   Diff{OnlySource: []string{"a.py"}},
		},
		{
			name:   "both empty",
			source: set(),
			export: set(),
			want:   Diff{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffPaths(tt.source, tt.export)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("diff mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiffPathsSorted(t *testing.T) {
	got := DiffPaths(set("z.py", "a.py", "m.py"), set())
	want := Diff{OnlySource: []string{"a.py", "m.py", "z.py"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCollisionKey(t *testing.T) {
	if collisionKey("Lib/Config.py") != collisionKey("lib/config.py") {
		t.Fatal("case-insensitive paths must share a collision key")
	}
	if collisionKey("a.py") == collisionKey("b.py") {
		t.Fatal("distinct paths must not share a collision key")
	}
}
