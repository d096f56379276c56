package relica

import (
	"database/sql"

	"github.com/coregx/relay"
)

// Repositories holds all repository implementations.
type Repositories struct {
	Topic      relay.TopicRepository
	Publisher  relay.PublisherRepository
	Subscriber relay.SubscriberRepository
	User       relay.UserRepository
}

// NewRepositories creates all repository implementations using Relica.
//
// The db parameter should be an *sql.DB connected to MySQL, PostgreSQL, or SQLite.
// The driverName should be "mysql", "postgres", or "sqlite3".
// The table prefix defaults to "relay_" but can be customized.
func NewRepositories(db *sql.DB, driverName string) *Repositories {
	return &Repositories{
		Topic:      NewTopicRepository(db, driverName),
		Publisher:  NewPublisherRepository(db, driverName),
		Subscriber: NewSubscriberRepository(db, driverName),
		User:       NewUserRepository(db, driverName),
	}
}

// NewRepositoriesWithPrefix creates all repository implementations with a custom table prefix.
func NewRepositoriesWithPrefix(db *sql.DB, driverName, prefix string) *Repositories {
	return &Repositories{
		Topic:      NewTopicRepositoryWithPrefix(db, driverName, prefix),
		Publisher:  NewPublisherRepositoryWithPrefix(db, driverName, prefix),
		Subscriber: NewSubscriberRepositoryWithPrefix(db, driverName, prefix),
		User:       NewUserRepositoryWithPrefix(db, driverName, prefix),
	}
}
