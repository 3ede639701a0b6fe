package entity

import "time"

// MovementKind tipo de movimiento de inventario.
type MovementKind string

// Tipos de movimiento.
const (
	MovementIn  MovementKind = "IN"  // entrada
	MovementOut MovementKind = "OUT" // salida
)

// Valid indica si el tipo es uno de los soportados.
func (k MovementKind) Valid() bool {
	return k == MovementIn || k == MovementOut
}

// Delta devuelve la variación de stock que produce qty unidades de este tipo.
func (k MovementKind) Delta(qty int64) int64 {
	if k == MovementOut {
		return -qty
	}
	return qty
}

// Movement registro inmutable de un cambio de stock. Una corrección se hace con un movimiento compensatorio.
type Movement struct {
	TenantID   string
	ID         int64
	ProductID  int64
	Kind       MovementKind
	Quantity   int64 // siempre positivo
	Reason     string
	RecordedAt time.Time
}

// MovementView movimiento junto con el código y nombre del producto referenciado.
type MovementView struct {
	Movement
	ProductCode string
	ProductName string
}
