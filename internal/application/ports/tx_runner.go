package ports

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de almacenamiento, pasando repositorios
// atados a esa transacción. Es el único proveedor de atomicidad del motor.
type TxRunner interface {
	// Run abre una transacción de escritura acotada al tenant: Commit si fn devuelve nil,
	// Rollback en cualquier otro caso. Las implementaciones serializan escritores del mismo tenant.
	Run(ctx context.Context, tenantID string, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.MovementRepository,
	) error) error

	// View abre un snapshot de solo lectura: fn nunca observa una escritura a medio aplicar.
	View(ctx context.Context, tenantID string, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.MovementRepository,
		reportRepo repository.ReportRepository,
	) error) error
}
