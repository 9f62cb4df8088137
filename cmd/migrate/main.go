// migrate applies migrations/*.sql in version order, once each. Applied files
// are recorded with a checksum; editing an applied file is an error.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"invoizo/internal/config"
	"invoizo/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	migrationsDir = "migrations"
	advisoryLock  = 7462839
)

var log = logging.New("info", "text")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("[CONFIG] failed to load")
	}
	if cfg.Database.URL == "" {
		log.Fatal("[CONFIG] DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool := connectDB(ctx, cfg.Database.URL)
	defer pool.Close()

	conn := acquireLock(ctx, pool)
	defer conn.Release()

	setupSchemaMigrations(ctx, pool)

	for _, filename := range discoverMigrations() {
		applyMigration(ctx, pool, filename)
	}

	log.Info("[DONE] all migrations processed")
}

func connectDB(ctx context.Context, url string) *pgxpool.Pool {
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.WithError(err).Fatal("[CONNECT] failed to create pool")
	}
	if err := pool.Ping(connCtx); err != nil {
		log.WithError(err).Fatal("[CONNECT] failed to ping database")
	}

	log.Info("[CONNECT] success")
	return pool
}

// acquireLock holds a session advisory lock so two migrators never overlap.
func acquireLock(ctx context.Context, pool *pgxpool.Pool) *pgxpool.Conn {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		log.WithError(err).Fatal("[LOCK] failed to acquire connection")
	}

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLock).Scan(&locked); err != nil {
		log.WithError(err).Fatal("[LOCK] failed to query advisory lock")
	}
	if !locked {
		log.Fatal("[LOCK] another migrator is currently running")
	}

	log.Info("[LOCK] success")
	return conn
}

func setupSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
	if err != nil {
		log.WithError(err).Fatal("[SETUP] failed to create schema_migrations")
	}
}

func discoverMigrations() []string {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		log.WithError(err).Fatal("[DISCOVER] failed to read migrations directory")
	}

	var filenames []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version := extractVersion(entry.Name())
		if seen[version] {
			log.WithField("version", version).Fatal("[DISCOVER] duplicate version")
		}
		seen[version] = true
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)
	return filenames
}

// extractVersion reads NNN from NNN_description.sql.
func extractVersion(filename string) string {
	version, _, ok := strings.Cut(filename, "_")
	if !ok {
		log.WithField("file", filename).Fatal("[DISCOVER] expected NNN_description.sql")
	}
	return version
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string) {
	fields := logrus.Fields{"file": filename}
	sqlBytes, err := os.ReadFile(filepath.Join(migrationsDir, filename))
	if err != nil {
		log.WithFields(fields).WithError(err).Fatal("[APPLY] failed to read file")
	}
	version := extractVersion(filename)
	sum := sha256.Sum256(sqlBytes)
	checksum := hex.EncodeToString(sum[:])

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil && existing == checksum:
		log.WithFields(fields).Info("[SKIP]")
		return
	case err == nil:
		log.WithFields(fields).Fatalf("[APPLY] checksum mismatch: recorded %s, file %s", existing, checksum)
	case !errors.Is(err, pgx.ErrNoRows):
		log.WithFields(fields).WithError(err).Fatal("[APPLY] failed to query schema_migrations")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.WithFields(fields).WithError(err).Fatal("[APPLY] failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		log.WithFields(fields).WithError(err).Fatal("[APPLY] failed to execute")
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum); err != nil {
		log.WithFields(fields).WithError(err).Fatal("[APPLY] failed to record migration")
	}
	if err := tx.Commit(ctx); err != nil {
		log.WithFields(fields).WithError(err).Fatal("[APPLY] failed to commit")
	}

	log.WithFields(fields).Info("[APPLY]")
}
