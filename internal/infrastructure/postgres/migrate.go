package postgres

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationLockKey clave del advisory lock que serializa migradores concurrentes (varias réplicas arrancando).
const migrationLockKey = 7462840

// Migrate aplica en orden los archivos NNN_descripcion.sql que aún no figuran en schema_migrations.
// Un archivo ya aplicado cuyo checksum cambió es un error: las migraciones no se editan.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("migrate: acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("migrate: lock: %w", err)
	}
	defer func() { _, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockKey) }()

	if _, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("migrate: schema_migrations: %w", err)
	}

	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("migrate: listar: %w", err)
	}
	sort.Strings(files)

	for _, path := range files {
		name := strings.TrimPrefix(path, "migrations/")
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return fmt.Errorf("migrate: nombre inválido %s (esperado NNN_descripcion.sql)", name)
		}
		body, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("migrate: leer %s: %w", name, err)
		}
		sum := sha256.Sum256(body)
		checksum := hex.EncodeToString(sum[:])

		var existing string
		err = conn.QueryRow(ctx, `SELECT checksum FROM schema_migrations WHERE version = $1`, version).Scan(&existing)
		switch {
		case err == nil:
			if existing != checksum {
				return fmt.Errorf("migrate: checksum distinto para %s", name)
			}
			log.Debug().Str("migration", name).Msg("migración ya aplicada")
			continue
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("migrate: consultar %s: %w", name, err)
		}

		if err := applyMigration(ctx, conn.Conn(), version, name, checksum, string(body)); err != nil {
			return err
		}
		log.Info().Str("migration", name).Msg("migración aplicada")
	}
	return nil
}

func applyMigration(ctx context.Context, conn *pgx.Conn, version, name, checksum, sql string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migrate: begin %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate: ejecutar %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)`,
		version, name, checksum); err != nil {
		return fmt.Errorf("migrate: registrar %s: %w", name, err)
	}
	return tx.Commit(ctx)
}
