package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementTotals suma de cantidades por tipo para un producto.
type MovementTotals struct {
	Inflow  int64
	Outflow int64
	Count   int64
}

// MovementRepository puerto del libro de movimientos (solo inserción; no hay update).
type MovementRepository interface {
	// Create asigna movement.ID desde la secuencia del tenant y persiste el evento.
	// No realiza aritmética de stock.
	Create(ctx context.Context, movement *entity.Movement) error
	// List devuelve los movimientos con código y nombre del producto, más recientes primero.
	List(ctx context.Context, tenantID string) ([]*entity.MovementView, error)
	ListByProduct(ctx context.Context, tenantID string, productID int64) ([]*entity.Movement, error)
	SumByProduct(ctx context.Context, tenantID string, productID int64) (MovementTotals, error)
	// DeleteByProduct elimina los movimientos de un producto (solo en la cascada de borrado).
	DeleteByProduct(ctx context.Context, tenantID string, productID int64) (int64, error)
}
