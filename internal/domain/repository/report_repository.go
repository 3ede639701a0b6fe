package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// UnspecifiedLocation agrupa los productos sin ubicación en los reportes.
const UnspecifiedLocation = "Sin ubicación"

// DashboardTotals resultado crudo de los KPIs del dashboard.
type DashboardTotals struct {
	TotalProducts  int64
	TotalMovements int64
	LowStockCount  int64
	InventoryValue decimal.Decimal // sin redondear
	MovementsToday int64
}

// LocationStockResult fila del reporte de stock por ubicación.
type LocationStockResult struct {
	Location     string
	ProductCount int64
	TotalStock   int64
	TotalValue   decimal.Decimal
}

// MovementDayResult fila del reporte de movimientos por fecha y tipo.
type MovementDayResult struct {
	Day           string // YYYY-MM-DD en la zona horaria de reporte
	Kind          entity.MovementKind
	Count         int64
	TotalQuantity int64
}

// ReportRepository consultas de solo lectura sobre catálogo y libro de un tenant.
type ReportRepository interface {
	// DashboardTotals cuenta productos con stock < threshold y movimientos en [dayStart, dayEnd).
	DashboardTotals(ctx context.Context, tenantID string, threshold int64, dayStart, dayEnd time.Time) (DashboardTotals, error)
	// LowStock productos con stock < threshold, ascendente por stock (empates por nombre e ID).
	LowStock(ctx context.Context, tenantID string, threshold int64) ([]*entity.Product, error)
	// BelowMinimum productos con stock por debajo de su propio minimum_stock.
	BelowMinimum(ctx context.Context, tenantID string) ([]*entity.Product, error)
	// StockByLocation ordenado por valor descendente; ubicación vacía como UnspecifiedLocation.
	StockByLocation(ctx context.Context, tenantID string) ([]LocationStockResult, error)
	// MovementsByDay agrupa por día (en loc) y tipo, limitado a los `days` días más recientes con movimientos.
	MovementsByDay(ctx context.Context, tenantID string, loc *time.Location, days int) ([]MovementDayResult, error)
}
