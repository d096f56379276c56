//nolint:dupl // Repository pattern requires similar implementations for different types
package relica

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coregx/relica"

	"github.com/coregx/relay"
	"github.com/coregx/relay/model"
)

// TopicRepository implements relay.TopicRepository using Relica.
type TopicRepository struct {
	db          *relica.DB
	sqlDB       *sql.DB
	driverName  string
	tablePrefix string
}

// NewTopicRepository creates a new TopicRepository with default table prefix.
func NewTopicRepository(sqlDB *sql.DB, driverName string) *TopicRepository {
	return NewTopicRepositoryWithPrefix(sqlDB, driverName, "relay_")
}

// NewTopicRepositoryWithPrefix creates a new TopicRepository with custom table prefix.
func NewTopicRepositoryWithPrefix(sqlDB *sql.DB, driverName, prefix string) *TopicRepository {
	return &TopicRepository{
		db:          relica.WrapDB(sqlDB, driverName),
		sqlDB:       sqlDB,
		driverName:  driverName,
		tablePrefix: prefix,
	}
}

func (r *TopicRepository) tableName() string {
	return r.tablePrefix + "topic"
}

// Create inserts a new topic row.
func (r *TopicRepository) Create(ctx context.Context, m model.Topic) (model.Topic, error) {
	err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Insert()
	if err != nil {
		return m, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to insert topic", err)
	}
	return m, nil
}

// GetByID retrieves a live topic by primary id.
func (r *TopicRepository) GetByID(ctx context.Context, id string) (model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("id = ? AND deleted_at IS NULL", id).
		One(&topic)
	if errors.Is(err, sql.ErrNoRows) {
		return topic, relay.ErrNoData
	}
	if err != nil {
		return topic, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to load topic", err)
	}
	return topic, nil
}

// GetBySharedID retrieves a live topic by its public share token.
// Soft-deleted topics never resolve, whatever token they still carry.
func (r *TopicRepository) GetBySharedID(ctx context.Context, sharedID string) (model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("shared_id = ? AND deleted_at IS NULL", sharedID).
		One(&topic)
	if errors.Is(err, sql.ErrNoRows) {
		return topic, relay.ErrNoData
	}
	if err != nil {
		return topic, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to load topic by shared id", err)
	}
	return topic, nil
}

// ListLive retrieves all live topics, newest first.
func (r *TopicRepository) ListLive(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("deleted_at IS NULL").
		OrderBy("created_at DESC").
		All(&topics)
	if err != nil {
		return nil, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to list topics", err)
	}
	return topics, nil
}

// SoftDelete marks the matching live topics deleted in one UPDATE and
// returns the number of rows changed. Unknown and already-deleted ids
// simply do not match the WHERE clause.
func (r *TopicRepository) SoftDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, now, now)
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET deleted_at = ?, updated_at = ? WHERE id IN (%s) AND deleted_at IS NULL",
		r.tableName(), placeholders(len(ids)),
	)

	res, err := r.sqlDB.ExecContext(ctx, r.rebind(query), args...)
	if err != nil {
		return 0, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to delete topics", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to count deleted topics", err)
	}
	return count, nil
}

// SetSharedID rotates the share token on a live topic.
func (r *TopicRepository) SetSharedID(ctx context.Context, id, sharedID string) error {
	query := fmt.Sprintf(
		"UPDATE %s SET shared_id = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		r.tableName(),
	)

	res, err := r.sqlDB.ExecContext(ctx, r.rebind(query), sharedID, time.Now().UTC(), id)
	if err != nil {
		return relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to set shared id", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to confirm shared id update", err)
	}
	if count == 0 {
		return relay.ErrNoData
	}
	return nil
}

// AppendMessage appends one payload to the topic's content log.
//
// The append is a single document-merge UPDATE built on the driver's native
// JSON functions: the current log is never fetched into application memory,
// so concurrent appends interleave at the database and all survive. Zero
// affected rows means the topic is unknown or soft-deleted.
func (r *TopicRepository) AppendMessage(ctx context.Context, id string, payload model.Payload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return relay.NewErrorWithCause(relay.ErrCodeValidation, "failed to encode payload", err)
	}

	var query string
	switch r.driverName {
	case "postgres":
		query = fmt.Sprintf(
			`UPDATE %s SET content = jsonb_set(COALESCE(content, '{"messages": []}'::jsonb), '{messages}',`+
				` COALESCE(content->'messages', '[]'::jsonb) || jsonb_build_array(?::jsonb), true),`+
				` updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			r.tableName(),
		)
	case "mysql":
		query = fmt.Sprintf(
			`UPDATE %s SET content = JSON_ARRAY_APPEND(COALESCE(content, JSON_OBJECT('messages', JSON_ARRAY())),`+
				` '$.messages', CAST(? AS JSON)), updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			r.tableName(),
		)
	case "sqlite3":
		query = fmt.Sprintf(
			`UPDATE %s SET content = json_insert(COALESCE(content, '{"messages":[]}'), '$.messages[#]', json(?)),`+
				` updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			r.tableName(),
		)
	default:
		return relay.NewError(relay.ErrCodeConfiguration, "unsupported driver: "+r.driverName)
	}

	res, err := r.sqlDB.ExecContext(ctx, r.rebind(query), string(value), time.Now().UTC(), id)
	if err != nil {
		return relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to append message", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to confirm append", err)
	}
	if count == 0 {
		return relay.ErrNoData
	}
	return nil
}

// rebind converts ?-style placeholders to the $n form Postgres expects.
func (r *TopicRepository) rebind(query string) string {
	if r.driverName != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
