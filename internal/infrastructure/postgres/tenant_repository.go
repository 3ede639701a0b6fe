package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo metadatos de tenant_storage (usable con pool o tx).
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

func (r *TenantRepo) Get(ctx context.Context, tenantID string) (*entity.TenantStorage, error) {
	query := `
		SELECT tenant_id, fields, product_seq, movement_seq, created_at, updated_at
		FROM tenant_storage WHERE tenant_id = $1`
	var t entity.TenantStorage
	err := r.q.QueryRow(ctx, query, tenantID).Scan(&t.TenantID, &t.Fields, &t.ProductSeq, &t.MovementSeq, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("tenants.Get", err)
	}
	return &t, nil
}

// CreateIfAbsent ON CONFLICT DO NOTHING: dos procesos que aprovisionan a la vez no fallan.
func (r *TenantRepo) CreateIfAbsent(ctx context.Context, t *entity.TenantStorage) (bool, error) {
	query := `
		INSERT INTO tenant_storage (tenant_id, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, t.TenantID, t.Fields, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return false, wrapErr("tenants.CreateIfAbsent", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AddFields agrega al final los campos que falten, conservando el orden recibido.
func (r *TenantRepo) AddFields(ctx context.Context, tenantID string, fields []string) error {
	query := `
		UPDATE tenant_storage
		SET fields = fields || ARRAY(
		        SELECT f FROM unnest($2::text[]) WITH ORDINALITY AS u(f, n)
		        WHERE NOT (f = ANY(tenant_storage.fields))
		        ORDER BY n),
		    updated_at = now()
		WHERE tenant_id = $1`
	tag, err := r.q.Exec(ctx, query, tenantID, fields)
	if err != nil {
		return wrapErr("tenants.AddFields", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotProvisioned
	}
	return nil
}

func (r *TenantRepo) ListTenantIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT tenant_id FROM tenant_storage ORDER BY tenant_id COLLATE "C"`)
	if err != nil {
		return nil, wrapErr("tenants.ListTenantIDs", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapErr("tenants.ListTenantIDs", err)
	}
	return ids, nil
}
