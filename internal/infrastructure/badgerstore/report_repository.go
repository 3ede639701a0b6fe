package badgerstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ReportRepository agrega en memoria sobre el snapshot de una transacción de solo lectura.
type ReportRepository struct {
	txn *badger.Txn
}

var _ repository.ReportRepository = (*ReportRepository)(nil)

func (r *ReportRepository) DashboardTotals(ctx context.Context, tenantID string, threshold int64, dayStart, dayEnd time.Time) (repository.DashboardTotals, error) {
	products, err := loadProducts(r.txn, tenantID)
	if err != nil {
		return repository.DashboardTotals{}, storageErr("reports.DashboardTotals", err)
	}
	movements, err := loadMovements(r.txn, tenantID)
	if err != nil {
		return repository.DashboardTotals{}, storageErr("reports.DashboardTotals", err)
	}

	totals := repository.DashboardTotals{
		TotalProducts:  int64(len(products)),
		TotalMovements: int64(len(movements)),
		InventoryValue: decimal.Zero,
	}
	for _, p := range products {
		if p.CurrentStock < threshold {
			totals.LowStockCount++
		}
		totals.InventoryValue = totals.InventoryValue.Add(p.StockValue())
	}
	for _, m := range movements {
		if !m.RecordedAt.Before(dayStart) && m.RecordedAt.Before(dayEnd) {
			totals.MovementsToday++
		}
	}
	return totals, nil
}

func (r *ReportRepository) LowStock(ctx context.Context, tenantID string, threshold int64) ([]*entity.Product, error) {
	products, err := loadProducts(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("reports.LowStock", err)
	}
	out := slices.DeleteFunc(products, func(p *entity.Product) bool { return p.CurrentStock >= threshold })
	sortByStock(out)
	return out, nil
}

func (r *ReportRepository) BelowMinimum(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	products, err := loadProducts(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("reports.BelowMinimum", err)
	}
	out := slices.DeleteFunc(products, func(p *entity.Product) bool { return !p.BelowMinimum() })
	sortByStock(out)
	return out, nil
}

func (r *ReportRepository) StockByLocation(ctx context.Context, tenantID string) ([]repository.LocationStockResult, error) {
	products, err := loadProducts(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("reports.StockByLocation", err)
	}
	groups := make(map[string]*repository.LocationStockResult)
	for _, p := range products {
		loc := p.Location
		if loc == "" {
			loc = repository.UnspecifiedLocation
		}
		g, ok := groups[loc]
		if !ok {
			g = &repository.LocationStockResult{Location: loc, TotalValue: decimal.Zero}
			groups[loc] = g
		}
		g.ProductCount++
		g.TotalStock += p.CurrentStock
		g.TotalValue = g.TotalValue.Add(p.StockValue())
	}
	out := make([]repository.LocationStockResult, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b repository.LocationStockResult) int {
		return cmp.Or(b.TotalValue.Cmp(a.TotalValue), strings.Compare(a.Location, b.Location))
	})
	return out, nil
}

func (r *ReportRepository) MovementsByDay(ctx context.Context, tenantID string, loc *time.Location, days int) ([]repository.MovementDayResult, error) {
	movements, err := loadMovements(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("reports.MovementsByDay", err)
	}
	type groupKey struct {
		day  string
		kind entity.MovementKind
	}
	groups := make(map[groupKey]*repository.MovementDayResult)
	var dayList []string
	for _, m := range movements {
		day := m.RecordedAt.In(loc).Format(time.DateOnly)
		k := groupKey{day, m.Kind}
		g, ok := groups[k]
		if !ok {
			g = &repository.MovementDayResult{Day: day, Kind: m.Kind}
			groups[k] = g
			dayList = append(dayList, day)
		}
		g.Count++
		g.TotalQuantity += m.Quantity
	}

	// Días distintos más recientes primero; solo los `days` primeros
	slices.Sort(dayList)
	dayList = slices.Compact(dayList)
	slices.Reverse(dayList)
	if days > 0 && len(dayList) > days {
		dayList = dayList[:days]
	}

	out := make([]repository.MovementDayResult, 0, len(dayList)*2)
	for _, day := range dayList {
		for _, kind := range []entity.MovementKind{entity.MovementIn, entity.MovementOut} {
			if g, ok := groups[groupKey{day, kind}]; ok {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

// sortByStock stock ascendente, empates por nombre e ID.
func sortByStock(list []*entity.Product) {
	slices.SortFunc(list, func(a, b *entity.Product) int {
		return cmp.Or(cmp.Compare(a.CurrentStock, b.CurrentStock), strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}
