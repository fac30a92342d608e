package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps one credential row per console namespace.
type PostgresStore struct {
	db        DB
	namespace string
	now       func() time.Time
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore scopes the record to namespace.
func NewPostgresStore(db DB, namespace string, opts ...Option) *PostgresStore {
	o := buildOptions(opts)
	return &PostgresStore{db: db, namespace: namespace, now: o.now}
}

func (s *PostgresStore) Persist(ctx context.Context, record Record, ttl time.Duration) error {
	if ttl <= 0 {
		return unavailable("persist postgres record", errors.New("ttl must be positive"))
	}
	const query = `
        INSERT INTO credential_records (namespace, token, role, expires_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (namespace) DO UPDATE
        SET token = EXCLUDED.token, role = EXCLUDED.role, expires_at = EXCLUDED.expires_at, updated_at = NOW()`

	if _, err := s.db.Exec(ctx, query, s.namespace, record.Token, record.Role, record.ExpiresAt.UTC()); err != nil {
		return unavailable("persist postgres record", err)
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context) (Record, bool, error) {
	const query = `
        SELECT token, role, expires_at
        FROM credential_records WHERE namespace=$1`

	var record Record
	err := s.db.QueryRow(ctx, query, s.namespace).Scan(&record.Token, &record.Role, &record.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, unavailable("read postgres record", err)
	}
	if !record.LiveAt(s.now()) {
		return Record{}, false, nil
	}
	return record, true, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	const query = `DELETE FROM credential_records WHERE namespace=$1`
	if _, err := s.db.Exec(ctx, query, s.namespace); err != nil {
		return unavailable("clear postgres record", err)
	}
	return nil
}
