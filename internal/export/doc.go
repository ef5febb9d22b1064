// Package export reconciles a destination tree against the project source
// tree.
//
// Reconciliation has two halves. Deciding is pure: given the enumerated
// source files, the latest artifact states and compile outcomes, and an
// export mode, it assigns every file exactly one export decision, never
// zero, so every source file is represented in the export by some form.
// Executing performs the decided copies: destination directories are
// created as needed, existing files are overwritten unconditionally
// (re-running with unchanged inputs reproduces the destination tree
// byte-for-byte), and an individual copy failure is recorded per file
// without aborting the remaining copies.
//
// After copying, the reconciler diffs the relative-path sets of the source
// and destination trees. The diff is purely informational; it feeds no
// decision.
package export
