// Package build tracks compiled-artifact freshness and drives the external
// cross compiler.
//
// The tracker classifies each Python source file against its compiled
// artifact using modification-time metadata only. It never opens file
// contents: a touched-but-unchanged file is treated as stale, trading
// perfect correctness for speed. State is computed fresh on every
// invocation and never cached on disk.
//
// The driver invokes one compiler subprocess per stale or missing artifact.
// Failures are values, captured per file: one malformed source file never
// blocks compilation of the rest of the project.
package build
