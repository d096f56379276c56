//nolint:dupl // Repository pattern requires similar implementations for different types
package relica

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coregx/relica"

	"github.com/coregx/relay"
	"github.com/coregx/relay/model"
)

// SubscriberRepository implements relay.SubscriberRepository using Relica.
type SubscriberRepository struct {
	db          *relica.DB
	tablePrefix string
}

// NewSubscriberRepository creates a new SubscriberRepository with default table prefix.
func NewSubscriberRepository(sqlDB *sql.DB, driverName string) *SubscriberRepository {
	return &SubscriberRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: "relay_"}
}

// NewSubscriberRepositoryWithPrefix creates a new SubscriberRepository with custom table prefix.
func NewSubscriberRepositoryWithPrefix(sqlDB *sql.DB, driverName, prefix string) *SubscriberRepository {
	return &SubscriberRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: prefix}
}

func (r *SubscriberRepository) tableName() string {
	return r.tablePrefix + "subscriber"
}

// Create inserts a new subscriber row.
func (r *SubscriberRepository) Create(ctx context.Context, m model.Subscriber) (model.Subscriber, error) {
	err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Insert()
	if err != nil {
		return m, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to insert subscriber", err)
	}
	return m, nil
}

// GetByID retrieves a subscriber by id.
func (r *SubscriberRepository) GetByID(ctx context.Context, id string) (model.Subscriber, error) {
	var subscriber model.Subscriber
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("id = ?", id).
		One(&subscriber)
	if errors.Is(err, sql.ErrNoRows) {
		return subscriber, relay.ErrNoData
	}
	if err != nil {
		return subscriber, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to load subscriber", err)
	}
	return subscriber, nil
}
