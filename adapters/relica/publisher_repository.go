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

// PublisherRepository implements relay.PublisherRepository using Relica.
type PublisherRepository struct {
	db          *relica.DB
	tablePrefix string
}

// NewPublisherRepository creates a new PublisherRepository with default table prefix.
func NewPublisherRepository(sqlDB *sql.DB, driverName string) *PublisherRepository {
	return &PublisherRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: "relay_"}
}

// NewPublisherRepositoryWithPrefix creates a new PublisherRepository with custom table prefix.
func NewPublisherRepositoryWithPrefix(sqlDB *sql.DB, driverName, prefix string) *PublisherRepository {
	return &PublisherRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: prefix}
}

func (r *PublisherRepository) tableName() string {
	return r.tablePrefix + "publisher"
}

// Create inserts a new publisher row.
func (r *PublisherRepository) Create(ctx context.Context, m model.Publisher) (model.Publisher, error) {
	err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Insert()
	if err != nil {
		return m, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to insert publisher", err)
	}
	return m, nil
}

// GetByID retrieves a publisher by id.
func (r *PublisherRepository) GetByID(ctx context.Context, id string) (model.Publisher, error) {
	var publisher model.Publisher
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("id = ?", id).
		One(&publisher)
	if errors.Is(err, sql.ErrNoRows) {
		return publisher, relay.ErrNoData
	}
	if err != nil {
		return publisher, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to load publisher", err)
	}
	return publisher, nil
}
