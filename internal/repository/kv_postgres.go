package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV хранит записи в таблице kv_store (value - JSONB)
type PostgresKV struct {
	db *pgxpool.Pool
}

func NewPostgresKV(db *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{db: db}
}

// EnsureSchema создает таблицу, если ее еще нет
func (r *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (r *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *PostgresKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}

func (r *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	return err
}

func (r *PostgresKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT key FROM kv_store WHERE key LIKE $1 ESCAPE '\' ORDER BY key`,
		likePrefix(prefix),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// экранирует спецсимволы LIKE, чтобы префикс сравнивался буквально
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
