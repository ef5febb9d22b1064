// Package project resolves the on-disk layout of a MicroPython project.
//
// Resolution establishes three facts once per invocation, before any file
// work begins:
//   - the project root directory (marker file or heuristic root signals)
//   - the layout kind (package under src/ versus package beside metadata)
//   - the source directory that all later scanning is scoped to
//
// Resolution is a pure function of a starting path: it probes the filesystem
// read-only and never consults the process working directory. The upward
// search is bounded (filesystem root or a fixed depth, whichever comes
// first), and an explicit marker file always overrides heuristic inference
// so a misdetected project can be corrected without restructuring files.
//
// The package also enumerates source files under the resolved source
// directory, tagging each file's kind exactly once so downstream components
// never re-derive "is this a Python file" ad hoc.
package project
