package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore stores every key of one namespace as a row of kv_store.
type PGStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPGStore returns a store scoped to namespace. The kv_store table must
// already exist (migrations/001_kv_store.sql).
func NewPGStore(pool *pgxpool.Pool, namespace string) *PGStore {
	if namespace == "" {
		namespace = "default"
	}
	return &PGStore{pool: pool, namespace: namespace}
}

func (s *PGStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getValue(ctx, s.pool, s.namespace, key)
}

func (s *PGStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, upsertSQL, s.namespace, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

// Update runs fn in one transaction holding a transaction-scoped advisory lock
// on the namespace. Writers of a namespace queue behind each other; plain Get
// calls outside Update never wait on the lock.
func (s *PGStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.namespace); err != nil {
		return fmt.Errorf("failed to lock namespace %s: %w", s.namespace, err)
	}

	if err := fn(&pgTx{tx: tx, namespace: s.namespace, malformedKeys: malformedKeys{}}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *PGStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM kv_store WHERE namespace = $1 ORDER BY key`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type pgTx struct {
	tx        pgx.Tx
	namespace string
	malformedKeys
}

func (t *pgTx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getValue(ctx, t.tx, t.namespace, key)
}

func (t *pgTx) Put(ctx context.Context, key string, value []byte) error {
	if _, err := t.tx.Exec(ctx, upsertSQL, t.namespace, key, string(value)); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

const upsertSQL = `
	INSERT INTO kv_store (namespace, key, value, updated_at)
	VALUES ($1, $2, $3::jsonb, now())
	ON CONFLICT (namespace, key)
	DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getValue(ctx context.Context, q rowQuerier, namespace, key string) ([]byte, bool, error) {
	var raw string
	err := q.QueryRow(ctx,
		`SELECT value::text FROM kv_store WHERE namespace = $1 AND key = $2`,
		namespace, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(raw), true, nil
}
