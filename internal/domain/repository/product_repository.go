package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductFilter criterios de búsqueda en el catálogo.
// Query vacío coincide con todo; Location vacío no filtra.
type ProductFilter struct {
	Query    string // subcadena sin distinguir mayúsculas sobre código, nombre o descripción
	Location string // coincidencia exacta
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las operaciones están acotadas al tenant; ninguna recorre datos de otro tenant.
// Los métodos Get* devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	// Create asigna product.ID desde la secuencia del tenant y persiste el producto.
	// Devuelve domain.ErrDuplicateCode si el código ya existe en el tenant.
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, tenantID string, id int64) (*entity.Product, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.Product, error)
	// GetForUpdate igual que GetByID pero bloquea el registro hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, tenantID string, id int64) (*entity.Product, error)
	// Update persiste los campos descriptivos; no modifica CurrentStock ni InitialStock.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock fija el stock actual (solo lo usa el coordinador de stock).
	UpdateStock(ctx context.Context, tenantID string, id int64, stock int64) error
	Delete(ctx context.Context, tenantID string, id int64) error
	// List ordena por nombre y luego por ID ascendente.
	List(ctx context.Context, tenantID string) ([]*entity.Product, error)
	Search(ctx context.Context, tenantID string, filter ProductFilter) ([]*entity.Product, error)
	ListLocations(ctx context.Context, tenantID string) ([]string, error)
}
