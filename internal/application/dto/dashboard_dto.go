package dto

import "github.com/shopspring/decimal"

// DashboardStatsDTO KPIs del inventario de un tenant, calculados en cada llamada.
type DashboardStatsDTO struct {
	TotalProducts       int64           `json:"total_products"`
	TotalMovements      int64           `json:"total_movements"`
	LowStockCount       int64           `json:"low_stock_count"`
	LowStockThreshold   int64           `json:"low_stock_threshold"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"` // Σ precio_compra × stock, 2 decimales
	MovementsToday      int64           `json:"movements_today"`
	DateLabel           string          `json:"date_label"` // ej: "19 de Octubre 2026"
}

// LocationStockDTO fila del reporte de stock agrupado por ubicación.
type LocationStockDTO struct {
	Location     string          `json:"location"`
	ProductCount int64           `json:"product_count"`
	TotalStock   int64           `json:"total_stock"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// MovementReportDTO fila del reporte de movimientos por fecha y tipo.
type MovementReportDTO struct {
	Date          string `json:"date"`
	Kind          string `json:"kind"`
	Count         int64  `json:"count"`
	TotalQuantity int64  `json:"total_quantity"`
}
