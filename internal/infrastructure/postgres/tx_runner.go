package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, toma el advisory lock del tenant (serializa escritores de varios
// procesos), ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, tenantID string, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.NewStorageError("postgres.Run begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", tenantID); err != nil {
		return domain.NewStorageError("postgres.Run lock", err)
	}

	if err := fn(NewProductRepository(tx), NewMovementRepository(tx)); err != nil {
		return wrapErr("Run", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError("postgres.Run commit", err)
	}
	return nil
}

// View abre una transacción REPEATABLE READ de solo lectura: todas las consultas de fn ven el
// mismo snapshot.
func (r *TxRunner) View(ctx context.Context, tenantID string, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	reportRepo repository.ReportRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.NewStorageError("postgres.View begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewProductRepository(tx), NewMovementRepository(tx), NewReportRepository(tx)); err != nil {
		return wrapErr("View", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError("postgres.View commit", err)
	}
	return nil
}
