package relica

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coregx/relica"

	"github.com/coregx/relay"
	"github.com/coregx/relay/model"
)

// UserRepository implements relay.UserRepository using Relica.
type UserRepository struct {
	db          *relica.DB
	tablePrefix string
}

// NewUserRepository creates a new UserRepository with default table prefix.
func NewUserRepository(sqlDB *sql.DB, driverName string) *UserRepository {
	return &UserRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: "relay_"}
}

// NewUserRepositoryWithPrefix creates a new UserRepository with custom table prefix.
func NewUserRepositoryWithPrefix(sqlDB *sql.DB, driverName, prefix string) *UserRepository {
	return &UserRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: prefix}
}

func (r *UserRepository) tableName() string {
	return r.tablePrefix + "user"
}

// FindByUsername retrieves a live user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("username = ? AND deleted_at IS NULL", username).
		One(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return user, relay.ErrNoData
	}
	if err != nil {
		return user, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to load user", err)
	}
	return user, nil
}

// FindByAPIKey retrieves a live user by its static API key.
func (r *UserRepository) FindByAPIKey(ctx context.Context, apiKey string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("api_key = ? AND deleted_at IS NULL", apiKey).
		One(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return user, relay.ErrNoData
	}
	if err != nil {
		return user, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to load user by api key", err)
	}
	return user, nil
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, m model.User) (model.User, error) {
	err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Insert()
	if err != nil {
		return m, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to insert user", err)
	}
	return m, nil
}
