// Package store provides a SQLite-backed journal of emitted DDL.
//
// Every time the CLI emits a CREATE or DROP run for a registry it can record
// it as a batch:
//   - Batches: id (UUIDv7), seq, kind, catalog fingerprint, wall time
//   - Statements: the batch's DDL statements in emission order
//
// # Ordering
//
// Batches are ordered by seq, a logical counter assigned inside the write
// transaction. recorded_at is informational only. All list queries use
// ORDER BY seq ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are applied as numbered migrations tracked in
// PRAGMA user_version.
package store
