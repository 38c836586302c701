// Package session provides session management for Monopolio Paisa.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//   - Pluggable persistence (JSON files, Redis, SQLite)
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own game engine plus metadata like creation time and
// last access time.
//
// Session Identifiers:
//
// Generated sessions use 4-character hex IDs for easy reference. Caller
// supplied IDs may use letters, digits, '-' and '_'. Lookups are
// case-insensitive.
//
// Persistence:
//
// SessionPersistence has three implementations sharing one JSON document
// format: FilePersistence (one file per session), RedisPersistence (redigo,
// keys under a configurable prefix) and SQLitePersistence (modernc.org/sqlite).
// LoadStoreConfig reads SESSION_STORE and friends from the environment and
// OpenPersistence builds the matching store.
//
// Usage:
//
//	cfg, _ := session.LoadStoreConfig()
//	store, closer, err := session.OpenPersistence(cfg, configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer closer.Close()
//
//	manager := session.NewManagerWithPersistence(store, session.WithLogger(logger))
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", config)
//
// Cleanup:
//
// CleanupExpiredSessions evicts idle sessions from memory and PruneDeleted
// drops sessions whose stored copy disappeared.
package session
