package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-jobboard-client/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const credentialSchema = `CREATE TABLE IF NOT EXISTS client_credentials (
	namespace  TEXT PRIMARY KEY,
	token      TEXT NOT NULL DEFAULT '',
	profile    JSONB,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps one credentials row per namespace.
type PostgresStore struct {
	db        DB
	namespace string
}

func NewPostgresStore(db DB, namespace string) *PostgresStore {
	return &PostgresStore{db: db, namespace: namespace}
}

// EnsureSchema creates the table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, credentialSchema)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (domain.Credentials, error) {
	var (
		creds domain.Credentials
		raw   []byte
	)
	query := `SELECT token, profile FROM client_credentials WHERE namespace = $1`
	err := s.db.QueryRow(ctx, query, s.namespace).Scan(&creds.Token, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Credentials{}, nil
		}
		return creds, err
	}
	if len(raw) > 0 && string(raw) != "null" {
		var p domain.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return creds, fmt.Errorf("credential: corrupt profile: %w", err)
		}
		creds.Profile = &p
	}
	return creds, nil
}

func (s *PostgresStore) Save(ctx context.Context, token string, profile domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	query := `INSERT INTO client_credentials (namespace, token, profile, updated_at)
              VALUES ($1, $2, $3::jsonb, now())
              ON CONFLICT (namespace) DO UPDATE
              SET token = EXCLUDED.token, profile = EXCLUDED.profile, updated_at = now()`
	_, err = s.db.Exec(ctx, query, s.namespace, token, string(raw))
	return err
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM client_credentials WHERE namespace = $1`, s.namespace)
	return err
}
