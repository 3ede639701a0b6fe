package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ApplyMovement calcula el nuevo stock tras aplicar qty unidades de tipo kind (servicio de dominio).
// Una salida mayor al stock actual se rechaza con ErrInsufficientStock: el stock nunca queda negativo.
func ApplyMovement(current int64, kind entity.MovementKind, qty int64) (int64, error) {
	if qty <= 0 {
		return current, domain.ErrInvalidQuantity
	}
	if !kind.Valid() {
		return current, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, kind)
	}
	if kind == entity.MovementOut && qty > current {
		return current, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, qty)
	}
	if kind == entity.MovementIn && qty > math.MaxInt64-current {
		return current, fmt.Errorf("%w: la entrada desborda el stock (actual %d, entrada %d)", domain.ErrInvalidInput, current, qty)
	}
	return current + kind.Delta(qty), nil
}

// ExpectedStock stock que debería tener un producto según su stock inicial y el libro.
// ExpectedStock = InitialStock + Σ entradas − Σ salidas
func ExpectedStock(initial int64, totals repository.MovementTotals) int64 {
	return initial + totals.Inflow - totals.Outflow
}
