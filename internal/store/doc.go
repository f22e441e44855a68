// Package store provides SQLite-backed storage for form records and their
// publication history.
//
// Records are append-only: saving a form id again adds a revision, so the
// record a publication was built from can always be read back.
//
// # Ordering
//
//   - Revisions count from 1 per form id
//   - Publications are ordered by seq per form id; the highest seq is live
//     and every earlier one is superseded
//   - All list queries are ordered explicitly, never by insertion
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
