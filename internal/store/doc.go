// Package store provides SQLite-backed persistence for play-throughs.
//
// The store keeps two kinds of records:
//   - Documents: whole JSON documents under fixed keys (GameKey for the
//     play-through snapshot, LeaderboardKey for the leaderboard). A save
//     replaces the previous document; there is no incremental state.
//   - Runs: an append-only archive of successfully completed runs, keyed by
//     run id so recording the same run twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are applied by numbered migrations tracked in
// PRAGMA user_version.
package store
