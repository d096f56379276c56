// Package relay provides a real-time topic relay with a durable append
// engine: clients open websocket streams bound to a topic, exchange JSON or
// text payloads with every other stream on the same topic, and every payload
// is atomically appended to the topic's persisted message log.
//
// Works both as a library for embedding in your application AND as a
// standalone service with REST API and websocket endpoints.
//
// # Features
//
//   - Race-free appends: the message log is mutated with a single atomic
//     document-merge UPDATE, never fetch-then-store, so N concurrent appends
//     to the same topic all survive
//   - Dual-channel fan-out: per-topic channels plus one global "realtime"
//     channel broadcasting a live-topic snapshot after every mutation
//   - Soft-delete topic lifecycle with public, rotating 16-character share
//     tokens for unauthenticated read access
//   - Bearer-token (RS256) and static API key authentication behind a single
//     verify contract
//   - Repository Pattern for clean data access abstraction
//   - Options Pattern for service construction
//   - Pluggable architecture: bring your own Logger and ChangeNotifier
//   - Multi-Database Support: MySQL, PostgreSQL, SQLite via Relica adapters
//   - Embedded migrations for easy database setup
//   - Prometheus metrics for connections, fan-out and appends
//
// # Quick Start
//
// Connect, apply the schema and build the services:
//
//	import (
//	    "database/sql"
//
//	    "github.com/coregx/relay"
//	    "github.com/coregx/relay/adapters/relica"
//	    _ "github.com/mattn/go-sqlite3"
//	)
//
//	db, _ := sql.Open("sqlite3", "relay.db")
//	repos := relica.NewRepositories(db, "sqlite3")
//
//	hub := relay.NewHub(logger)
//	notifier := relay.NewHubChangeNotifier(hub, repos.Topic, logger)
//
//	store, _ := relay.NewTopicStore(
//	    relay.WithStoreRepositories(repos.Topic, repos.Publisher, repos.Subscriber),
//	    relay.WithStoreNotifier(notifier),
//	    relay.WithStoreLogger(logger),
//	)
//
//	engine, _ := relay.NewAppendEngine(
//	    relay.WithAppendRepository(repos.Topic),
//	    relay.WithAppendNotifier(notifier),
//	    relay.WithAppendLogger(logger),
//	)
//
// Create a topic and append to it:
//
//	topic, _ := store.Create(ctx)
//	_ = engine.Append(ctx, topic.ID, model.ParsePayload([]byte(`{"text":"hi"}`)))
//
// Mount the websocket gateway:
//
//	gateway, _ := relay.NewGateway(
//	    relay.WithGatewayHub(hub),
//	    relay.WithGatewayEngine(engine),
//	    relay.WithGatewayVerifier(verifier),
//	    relay.WithGatewayLogger(logger),
//	)
//	mux.Handle("/ws/", gateway)
//
// Or run the standalone server from cmd/relay-server, configured entirely
// through environment variables (12-factor style).
package relay
