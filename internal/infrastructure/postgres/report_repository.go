package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para KPIs y reportes del inventario.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes. Pasar pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// DashboardTotals los cinco KPIs en una sola consulta. COALESCE devuelve cero en tenants vacíos.
func (r *ReportRepo) DashboardTotals(ctx context.Context, tenantID string, threshold int64, dayStart, dayEnd time.Time) (repository.DashboardTotals, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM products  WHERE tenant_id = $1)                                        AS total_products,
	    (SELECT COUNT(*) FROM movements WHERE tenant_id = $1)                                        AS total_movements,
	    (SELECT COUNT(*) FROM products  WHERE tenant_id = $1 AND current_stock < $2)                 AS low_stock,
	    (SELECT COALESCE(SUM(purchase_price * current_stock), 0) FROM products WHERE tenant_id = $1) AS inventory_value,
	    (SELECT COUNT(*) FROM movements WHERE tenant_id = $1 AND recorded_at >= $3 AND recorded_at < $4) AS movements_today`

	var t repository.DashboardTotals
	err := r.q.QueryRow(ctx, query, tenantID, threshold, dayStart, dayEnd).Scan(
		&t.TotalProducts,
		&t.TotalMovements,
		&t.LowStockCount,
		&t.InventoryValue,
		&t.MovementsToday,
	)
	if err != nil {
		return repository.DashboardTotals{}, wrapErr("reports.DashboardTotals", err)
	}
	return t, nil
}

// LowStock stock ascendente; empates por nombre e ID.
func (r *ReportRepo) LowStock(ctx context.Context, tenantID string, threshold int64) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND current_stock < $2
		ORDER BY current_stock, name COLLATE "C", id`
	return NewProductRepository(r.q).getMany(ctx, "reports.LowStock", query, tenantID, threshold)
}

// BelowMinimum productos con minimum_stock definido y stock por debajo de él.
func (r *ReportRepo) BelowMinimum(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND minimum_stock > 0 AND current_stock < minimum_stock
		ORDER BY current_stock, name COLLATE "C", id`
	return NewProductRepository(r.q).getMany(ctx, "reports.BelowMinimum", query, tenantID)
}

// StockByLocation agrupa por ubicación; la vacía se reporta como repository.UnspecifiedLocation.
func (r *ReportRepo) StockByLocation(ctx context.Context, tenantID string) ([]repository.LocationStockResult, error) {
	const query = `
	SELECT loc, product_count, total_stock, total_value
	FROM (
	    SELECT
	        CASE WHEN location = '' THEN $2::text ELSE location END    AS loc,
	        COUNT(*)                                                   AS product_count,
	        COALESCE(SUM(current_stock), 0)::bigint                    AS total_stock,
	        COALESCE(SUM(purchase_price * current_stock), 0)           AS total_value
	    FROM products
	    WHERE tenant_id = $1
	    GROUP BY 1
	) g
	ORDER BY total_value DESC, loc COLLATE "C"`

	rows, err := r.q.Query(ctx, query, tenantID, repository.UnspecifiedLocation)
	if err != nil {
		return nil, wrapErr("reports.StockByLocation", err)
	}
	defer rows.Close()

	var results []repository.LocationStockResult
	for rows.Next() {
		var row repository.LocationStockResult
		if err := rows.Scan(&row.Location, &row.ProductCount, &row.TotalStock, &row.TotalValue); err != nil {
			return nil, wrapErr("reports.StockByLocation scan", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("reports.StockByLocation", err)
	}
	return results, nil
}

// MovementsByDay agrupa por (día en loc, tipo) los `days` días más recientes con movimientos;
// días descendentes, IN antes que OUT.
func (r *ReportRepo) MovementsByDay(ctx context.Context, tenantID string, loc *time.Location, days int) ([]repository.MovementDayResult, error) {
	zone, zoneArg := zoneExpr(loc)
	query := fmt.Sprintf(`
	WITH dated AS (
	    SELECT to_char(recorded_at AT TIME ZONE %s, 'YYYY-MM-DD') AS day, kind, quantity
	    FROM movements
	    WHERE tenant_id = $1
	), recent AS (
	    SELECT DISTINCT day FROM dated ORDER BY day DESC LIMIT $3
	)
	SELECT d.day, d.kind, COUNT(*), SUM(d.quantity)::bigint
	FROM dated d
	JOIN recent r ON r.day = d.day
	GROUP BY d.day, d.kind
	ORDER BY d.day DESC, CASE d.kind WHEN 'IN' THEN 0 ELSE 1 END`, zone)

	var limit any
	if days > 0 {
		limit = int64(days)
	}
	rows, err := r.q.Query(ctx, query, tenantID, zoneArg, limit)
	if err != nil {
		return nil, wrapErr("reports.MovementsByDay", err)
	}
	defer rows.Close()

	var results []repository.MovementDayResult
	for rows.Next() {
		var row repository.MovementDayResult
		var kind string
		if err := rows.Scan(&row.Day, &kind, &row.Count, &row.TotalQuantity); err != nil {
			return nil, wrapErr("reports.MovementsByDay scan", err)
		}
		row.Kind = entity.MovementKind(kind)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("reports.MovementsByDay", err)
	}
	return results, nil
}

// zoneExpr expresión AT TIME ZONE para loc. Las zonas IANA se pasan por nombre; time.Local y las
// zonas fijas, que Postgres no conoce por nombre, se pasan como desplazamiento actual.
func zoneExpr(loc *time.Location) (string, any) {
	if loc == nil {
		loc = time.UTC
	}
	name := loc.String()
	if name != "Local" {
		if _, err := time.LoadLocation(name); err == nil {
			return "$2::text", name
		}
	}
	_, offset := time.Now().In(loc).Zone()
	return "make_interval(secs => $2::double precision)", float64(offset)
}
