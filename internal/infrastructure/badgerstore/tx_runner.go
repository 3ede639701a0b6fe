package badgerstore

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner implementa ports.TxRunner con transacciones de Badger: db.Update confirma si fn
// devuelve nil y descarta en cualquier otro caso; db.View lee un snapshot consistente.
type TxRunner struct {
	db *badger.DB
}

var _ ports.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner.
func NewTxRunner(db *badger.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run los escritores de un tenant ya llegan serializados por tenant.Locker; un conflicto
// residual (badger.ErrConflict) se devuelve como error de almacenamiento, sin reintento.
func (r *TxRunner) Run(ctx context.Context, tenantID string, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return storageErr("Run", err)
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return fn(&ProductRepository{txn: txn}, &MovementRepository{txn: txn})
	})
	return storageErr("Run", err)
}

func (r *TxRunner) View(ctx context.Context, tenantID string, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	reportRepo repository.ReportRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return storageErr("View", err)
	}
	err := r.db.View(func(txn *badger.Txn) error {
		return fn(&ProductRepository{txn: txn}, &MovementRepository{txn: txn}, &ReportRepository{txn: txn})
	})
	return storageErr("View", err)
}
