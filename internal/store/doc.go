// Package store provides SQLite-backed persistence for decklog records.
//
// The store manages three tables:
//   - rdeck: saved and in-progress decks (caller-supplied TEXT id)
//   - rgame: played matches, append-only except for hs_replay_url
//   - rpack: pack openings, append-only
//
// # Schema Versioning
//
// The schema version lives in PRAGMA user_version. Version 3 is the baseline
// (embedded schema.sql). Later versions are reached through a chain of
// migration steps, each of which checks the live schema before altering it:
//
//	3 -> 4  add rdeck.arena
//	4 -> 5  create rpack
//	5 -> 6  add rpack.dust
//
// After the chain runs, the resulting shape is verified against the expected
// current shape. A mismatch fails Open with ErrSchemaMismatch unless
// Options.RecreateOnMismatch is set, in which case all tables are dropped and
// rebuilt empty and Report().Recreated is true.
//
// # Live Streams
//
// Every write publishes a table-changed event. Watch* functions return a
// Stream that re-runs its query whenever one of its tables changes and
// delivers the latest value. Streams end on Close or context cancellation.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys stays OFF: rgame.deck_id is a weak reference
//
// One Store is opened per process by the composition root and passed to
// everything that needs it.
package store
