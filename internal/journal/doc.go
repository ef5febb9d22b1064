// Package journal provides SQLite-backed run history for picoforge.
//
// The journal is an append-only record of past runs: which command ran,
// against which root, and how many files succeeded, failed, were skipped or
// copied. It exists purely for the history command.
//
// The journal is never read by the tracker, driver or reconciler. Artifact
// state is computed fresh from the filesystem on every invocation; the
// source and export trees on disk remain the only durable ground truth.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
