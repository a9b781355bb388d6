// Package record defines the persisted record types for decklog.
//
// This package contains type definitions and value helpers only. The store
// imports record; record imports nothing internal.
//
// Key design constraints:
//   - Timestamps are epoch milliseconds (int64), never time.Time
//   - Booleans are stored by the store as 0/1 integers
//   - Optional columns use pointers (nil means SQL NULL)
//   - All JSON tags use snake_case, matching the column names
package record
