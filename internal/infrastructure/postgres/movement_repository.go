package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento. No toca el stock del producto.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	id, err := nextSeq(ctx, r.q, m.TenantID, "movement_seq")
	if err != nil {
		return err
	}
	query := `
		INSERT INTO movements (tenant_id, id, product_id, kind, quantity, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.Exec(ctx, query, m.TenantID, id, m.ProductID, string(m.Kind), m.Quantity, m.Reason, m.RecordedAt)
	if err != nil {
		return wrapErr("movements.Create", err)
	}
	m.ID = id
	return nil
}

// List movimientos con código y nombre del producto, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, tenantID string) ([]*entity.MovementView, error) {
	query := `
		SELECT m.tenant_id, m.id, m.product_id, m.kind, m.quantity, m.reason, m.recorded_at,
		       COALESCE(p.code, ''), COALESCE(p.name, '')
		FROM movements m
		LEFT JOIN products p ON p.tenant_id = m.tenant_id AND p.id = m.product_id
		WHERE m.tenant_id = $1
		ORDER BY m.recorded_at DESC, m.id DESC`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, wrapErr("movements.List", err)
	}
	defer rows.Close()

	var list []*entity.MovementView
	for rows.Next() {
		var v entity.MovementView
		var kind string
		if err := rows.Scan(
			&v.TenantID, &v.ID, &v.ProductID, &kind, &v.Quantity, &v.Reason, &v.RecordedAt,
			&v.ProductCode, &v.ProductName,
		); err != nil {
			return nil, wrapErr("movements.List scan", err)
		}
		v.Kind = entity.MovementKind(kind)
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("movements.List", err)
	}
	return list, nil
}

func (r *MovementRepo) ListByProduct(ctx context.Context, tenantID string, productID int64) ([]*entity.Movement, error) {
	query := `
		SELECT tenant_id, id, product_id, kind, quantity, reason, recorded_at
		FROM movements
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY recorded_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, tenantID, productID)
	if err != nil {
		return nil, wrapErr("movements.ListByProduct", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Movement, error) {
		var m entity.Movement
		var kind string
		err := row.Scan(&m.TenantID, &m.ID, &m.ProductID, &kind, &m.Quantity, &m.Reason, &m.RecordedAt)
		m.Kind = entity.MovementKind(kind)
		return &m, err
	})
	if err != nil {
		return nil, wrapErr("movements.ListByProduct", err)
	}
	return list, nil
}

func (r *MovementRepo) SumByProduct(ctx context.Context, tenantID string, productID int64) (repository.MovementTotals, error) {
	query := `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE kind = 'IN'), 0)::bigint,
		       COALESCE(SUM(quantity) FILTER (WHERE kind = 'OUT'), 0)::bigint,
		       COUNT(*)
		FROM movements
		WHERE tenant_id = $1 AND product_id = $2`
	var t repository.MovementTotals
	if err := r.q.QueryRow(ctx, query, tenantID, productID).Scan(&t.Inflow, &t.Outflow, &t.Count); err != nil {
		return repository.MovementTotals{}, wrapErr("movements.SumByProduct", err)
	}
	return t, nil
}

func (r *MovementRepo) DeleteByProduct(ctx context.Context, tenantID string, productID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM movements WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID)
	if err != nil {
		return 0, wrapErr("movements.DeleteByProduct", err)
	}
	return tag.RowsAffected(), nil
}
