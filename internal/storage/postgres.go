package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgExecQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresKV guarda las entradas en la tabla client_storage, separadas por namespace.
type PostgresKV struct {
	db        pgExecQuerier
	namespace string
}

// NewPostgresKV acepta un *pgxpool.Pool o cualquier conexion compatible.
func NewPostgresKV(db pgExecQuerier, namespace string) *PostgresKV {
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresKV{db: db, namespace: namespace}
}

// EnsureSchema crea la tabla si no existe.
func (s *PostgresKV) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS client_storage (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (namespace, key)
		)
	`
	_, err := s.db.Exec(ctx, query)
	return err
}

func (s *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
		SELECT value
		FROM client_storage
		WHERE namespace = $1 AND key = $2
	`
	var value string
	err := s.db.QueryRow(ctx, query, s.namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetMany hace un unico upsert; la sentencia es atomica.
func (s *PostgresKV) SetMany(ctx context.Context, entries map[string]string) error {
	if err := checkKeys(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	const query = `
		INSERT INTO client_storage (namespace, key, value, updated_at)
		SELECT $1, t.key, t.value, now()
		FROM unnest($2::text[], $3::text[]) AS t(key, value)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	keys := make([]string, 0, len(entries))
	values := make([]string, 0, len(entries))
	for k, v := range entries {
		keys = append(keys, k)
		values = append(values, v)
	}
	_, err := s.db.Exec(ctx, query, s.namespace, keys, values)
	return err
}

func (s *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `
		DELETE FROM client_storage
		WHERE namespace = $1 AND key = ANY($2)
	`
	_, err := s.db.Exec(ctx, query, s.namespace, keys)
	return err
}
