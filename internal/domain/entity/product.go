package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo de un tenant.
// ID es local al tenant, estable y nunca se reutiliza. CurrentStock solo cambia vía movimientos;
// InitialStock es el stock declarado al crear el producto (no pasa por el libro de movimientos).
type Product struct {
	TenantID        string
	ID              int64
	Code            string // único por tenant, sensible a mayúsculas
	Name            string
	Description     string
	Location        string // ubicación física (antes "categoría")
	Model           string
	Brand           string
	Condition       string
	AcquisitionYear *int
	PurchasePrice   decimal.Decimal // precio de compra, no negativo
	CurrentStock    int64
	MinimumStock    int64
	InitialStock    int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StockValue valor del stock actual a precio de compra.
func (p *Product) StockValue() decimal.Decimal {
	return p.PurchasePrice.Mul(decimal.NewFromInt(p.CurrentStock))
}

// BelowMinimum indica si el stock actual está por debajo del mínimo propio del producto.
func (p *Product) BelowMinimum() bool {
	return p.MinimumStock > 0 && p.CurrentStock < p.MinimumStock
}
