package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationLockKey clave del advisory lock que serializa Migrate entre procesos.
const migrationLockKey = 7_405_112_001

// Migrate aplica el DDL global (idempotente) en orden de nombre de archivo.
// Es independiente del aprovisionamiento de tenants, que solo inserta filas.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("postgres.Migrate: %w", err)
	}
	slices.Sort(names)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return domain.NewStorageError("postgres.Migrate begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(migrationLockKey)); err != nil {
		return domain.NewStorageError("postgres.Migrate lock", err)
	}
	for _, name := range names {
		sql, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("postgres.Migrate %s: %w", name, err)
		}
		// Sin argumentos pgx usa el protocolo simple: un archivo puede tener varias sentencias
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			return domain.NewStorageError("postgres.Migrate "+name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError("postgres.Migrate commit", err)
	}
	return nil
}
