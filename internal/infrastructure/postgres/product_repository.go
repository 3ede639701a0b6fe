package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `tenant_id, id, code, name, description, location, model, brand, condition,
	acquisition_year, purchase_price, current_stock, minimum_stock, initial_stock, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create toma el siguiente ID de la secuencia del tenant y persiste el producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	id, err := nextSeq(ctx, r.q, p.TenantID, "product_seq")
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		p.TenantID, id, p.Code, p.Name, p.Description, p.Location, p.Model, p.Brand, p.Condition,
		p.AcquisitionYear, p.PurchasePrice, p.CurrentStock, p.MinimumStock, p.InitialStock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return wrapErr("products.Create", err)
	}
	p.ID = id
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = $2`
	return r.getOne(ctx, "products.GetByID", query, tenantID, id)
}

func (r *ProductRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND code = $2`
	return r.getOne(ctx, "products.GetByCode", query, tenantID, code)
}

// GetForUpdate bloquea la fila (FOR UPDATE) hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	return r.getOne(ctx, "products.GetForUpdate", query, tenantID, id)
}

// Update persiste los campos descriptivos; current_stock e initial_stock no se tocan.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET code = $3, name = $4, description = $5, location = $6, model = $7, brand = $8, condition = $9,
		    acquisition_year = $10, purchase_price = $11, minimum_stock = $12, updated_at = $13
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		p.TenantID, p.ID, p.Code, p.Name, p.Description, p.Location, p.Model, p.Brand, p.Condition,
		p.AcquisitionYear, p.PurchasePrice, p.MinimumStock, p.UpdatedAt,
	)
	if err != nil {
		return wrapErr("products.Update", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, tenantID string, id int64, stock int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET current_stock = $3 WHERE tenant_id = $1 AND id = $2`, tenantID, id, stock)
	if err != nil {
		return wrapErr("products.UpdateStock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, tenantID string, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return wrapErr("products.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List orden binario por nombre (COLLATE "C") para coincidir con el backend embebido.
func (r *ProductRepo) List(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 ORDER BY name COLLATE "C", id`
	return r.getMany(ctx, "products.List", query, tenantID)
}

// Search subcadena sin distinguir mayúsculas (lower + position, sin comodines de LIKE).
func (r *ProductRepo) Search(ctx context.Context, tenantID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1
		  AND ($2::text = '' OR position(lower($2::text) in lower(code)) > 0
		                     OR position(lower($2::text) in lower(name)) > 0
		                     OR position(lower($2::text) in lower(description)) > 0)
		  AND ($3::text = '' OR location = $3::text)
		ORDER BY name COLLATE "C", id`
	return r.getMany(ctx, "products.Search", query, tenantID, filter.Query, filter.Location)
}

func (r *ProductRepo) ListLocations(ctx context.Context, tenantID string) ([]string, error) {
	query := `
		SELECT location FROM products
		WHERE tenant_id = $1 AND location <> ''
		GROUP BY location
		ORDER BY location COLLATE "C"`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, wrapErr("products.ListLocations", err)
	}
	locations, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapErr("products.ListLocations", err)
	}
	return locations, nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

func (r *ProductRepo) getMany(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr(op+" scan", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.TenantID, &p.ID, &p.Code, &p.Name, &p.Description, &p.Location, &p.Model, &p.Brand, &p.Condition,
		&p.AcquisitionYear, &p.PurchasePrice, &p.CurrentStock, &p.MinimumStock, &p.InitialStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// nextSeq incrementa la secuencia indicada de tenant_storage. La fila queda bloqueada hasta el
// fin de la transacción, por lo que los IDs no se repiten ni se reutilizan.
func nextSeq(ctx context.Context, q Querier, tenantID, column string) (int64, error) {
	var query string
	switch column {
	case "product_seq":
		query = `UPDATE tenant_storage SET product_seq = product_seq + 1 WHERE tenant_id = $1 RETURNING product_seq`
	case "movement_seq":
		query = `UPDATE tenant_storage SET movement_seq = movement_seq + 1 WHERE tenant_id = $1 RETURNING movement_seq`
	default:
		return 0, errors.New("postgres.nextSeq: secuencia desconocida " + column)
	}
	var id int64
	if err := q.QueryRow(ctx, query, tenantID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrTenantNotProvisioned
		}
		return 0, wrapErr("nextSeq", err)
	}
	return id, nil
}
