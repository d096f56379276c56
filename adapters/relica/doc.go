// Package relica provides Relica-backed implementations of the relay
// repositories for MySQL, PostgreSQL and SQLite.
//
// Reads and inserts go through the Relica query builder. The guarded
// mutations (atomic message append, bulk soft delete, share-token rotation)
// are issued as single raw UPDATE statements through database/sql so the
// merge stays one atomic operation at the storage layer and the affected row
// count is observable.
//
// Usage:
//
//	db, _ := sql.Open("sqlite3", "relay.db")
//	repos := relica.NewRepositories(db, "sqlite3")
//	store, _ := relay.NewTopicStore(
//	    relay.WithStoreRepositories(repos.Topic, repos.Publisher, repos.Subscriber),
//	    relay.WithStoreLogger(logger),
//	)
package relica
