// Package store provides persistent storage for bonte-server using SQLite.
//
// # Architecture
//
// A single Store interface covers all durable data; SQLiteStore implements
// it in one struct, split across files by domain:
//
//   - users.go: accounts and trainer profiles
//   - logs.go: nutrition goals and meal/workout/sleep history
//   - chat.go: AI conversation messages
//   - messages.go: user<->trainer messages
//   - tokens.go: refresh tokens
//
// # Ordering
//
// Chat and trainer messages carry a store-assigned sequence number
// (SQLite AUTOINCREMENT). The sequence, not the wall-clock timestamp, is
// the ordering key: two appends in the same millisecond still receive
// distinct, monotonic positions. Lifestyle logs are ordered by their
// domain timestamps and listed most-recent-first for the AI briefing.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrDuplicateUser: Email already registered
//
// All methods accept context.Context for cancellation support.
package store
