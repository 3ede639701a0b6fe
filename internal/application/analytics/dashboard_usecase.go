// Package analytics contiene los casos de uso de estadísticas y reportes del inventario.
// Todo se calcula en cada llamada desde el catálogo y el libro; no hay caché.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const (
	DefaultLowStockThreshold  int64 = 30
	DefaultMovementReportDays       = 30
)

// Options parámetros de los reportes.
type Options struct {
	LowStockThreshold  int64
	MovementReportDays int
}

// DashboardUseCase genera KPIs y reportes de un tenant.
//
// Fuente de datos: ReportRepository dentro de un snapshot de solo lectura (TxRunner.View),
// de modo que un reporte nunca mezcla estados antes y después de un movimiento.
type DashboardUseCase struct {
	txRunner ports.TxRunner
	clock    ports.Clock
	opts     Options
}

// NewDashboardUseCase construye el caso de uso; los campos sin configurar (cero) toman el default.
// pkg/config rechaza ceros explícitos antes de llegar aquí.
func NewDashboardUseCase(txRunner ports.TxRunner, clock ports.Clock, opts Options) *DashboardUseCase {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = DefaultLowStockThreshold
	}
	if opts.MovementReportDays <= 0 {
		opts.MovementReportDays = DefaultMovementReportDays
	}
	return &DashboardUseCase{txRunner: txRunner, clock: clock, opts: opts}
}

// LowStockThreshold umbral configurado.
func (uc *DashboardUseCase) LowStockThreshold() int64 { return uc.opts.LowStockThreshold }

// DashboardStats construye el DashboardStatsDTO del tenant.
func (uc *DashboardUseCase) DashboardStats(ctx context.Context, tenantID string) (*dto.DashboardStatsDTO, error) {
	now := uc.clock.Now()

	// ── Rango de hoy en la zona de reporte: [00:00, 00:00 del día siguiente) ──
	loc := uc.clock.Location()
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var totals repository.DashboardTotals
	err := uc.txRunner.View(ctx, tenantID, func(_ repository.ProductRepository, _ repository.MovementRepository, reportRepo repository.ReportRepository) error {
		var err error
		totals, err = reportRepo.DashboardTotals(ctx, tenantID, uc.opts.LowStockThreshold, dayStart, dayEnd)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: totales: %w", err)
	}

	return &dto.DashboardStatsDTO{
		TotalProducts:       totals.TotalProducts,
		TotalMovements:      totals.TotalMovements,
		LowStockCount:       totals.LowStockCount,
		LowStockThreshold:   uc.opts.LowStockThreshold,
		TotalInventoryValue: totals.InventoryValue.Round(2),
		MovementsToday:      totals.MovementsToday,
		DateLabel:           dayLabel(local),
	}, nil
}

// LowStockProducts productos con stock < threshold, ascendente por stock.
func (uc *DashboardUseCase) LowStockProducts(ctx context.Context, tenantID string, threshold int64) ([]*entity.Product, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: el umbral no puede ser negativo", domain.ErrInvalidInput)
	}
	var list []*entity.Product
	err := uc.txRunner.View(ctx, tenantID, func(_ repository.ProductRepository, _ repository.MovementRepository, reportRepo repository.ReportRepository) error {
		var err error
		list, err = reportRepo.LowStock(ctx, tenantID, threshold)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", err)
	}
	if list == nil {
		list = []*entity.Product{}
	}
	return list, nil
}

// ReorderProducts productos por debajo de su propio stock mínimo.
func (uc *DashboardUseCase) ReorderProducts(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	var list []*entity.Product
	err := uc.txRunner.View(ctx, tenantID, func(_ repository.ProductRepository, _ repository.MovementRepository, reportRepo repository.ReportRepository) error {
		var err error
		list, err = reportRepo.BelowMinimum(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: reposición: %w", err)
	}
	if list == nil {
		list = []*entity.Product{}
	}
	return list, nil
}

// StockReportByLocation stock y valor agrupados por ubicación, mayor valor primero.
func (uc *DashboardUseCase) StockReportByLocation(ctx context.Context, tenantID string) ([]dto.LocationStockDTO, error) {
	var rows []repository.LocationStockResult
	err := uc.txRunner.View(ctx, tenantID, func(_ repository.ProductRepository, _ repository.MovementRepository, reportRepo repository.ReportRepository) error {
		var err error
		rows, err = reportRepo.StockByLocation(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: stock por ubicación: %w", err)
	}
	out := make([]dto.LocationStockDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LocationStockDTO{
			Location:     r.Location,
			ProductCount: r.ProductCount,
			TotalStock:   r.TotalStock,
			TotalValue:   r.TotalValue.Round(2),
		})
	}
	return out, nil
}

// MovementReport conteo y cantidad por (fecha, tipo) de los días más recientes con movimientos.
func (uc *DashboardUseCase) MovementReport(ctx context.Context, tenantID string) ([]dto.MovementReportDTO, error) {
	var rows []repository.MovementDayResult
	err := uc.txRunner.View(ctx, tenantID, func(_ repository.ProductRepository, _ repository.MovementRepository, reportRepo repository.ReportRepository) error {
		var err error
		rows, err = reportRepo.MovementsByDay(ctx, tenantID, uc.clock.Location(), uc.opts.MovementReportDays)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: movimientos por fecha: %w", err)
	}
	out := make([]dto.MovementReportDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MovementReportDTO{
			Date:          r.Day,
			Kind:          string(r.Kind),
			Count:         r.Count,
			TotalQuantity: r.TotalQuantity,
		})
	}
	return out, nil
}

// dayLabel devuelve una etiqueta legible del día, ej: "19 de Octubre 2026".
func dayLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%d de %s %d", t.Day(), months[t.Month()-1], t.Year())
}
