package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/tenant"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD del catálogo de un tenant. El stock se maneja vía movimientos.
// Las mutaciones se serializan por tenant y corren en una sola transacción (check + insert atómico).
type ProductUseCase struct {
	txRunner ports.TxRunner
	locker   *tenant.Locker
	clock    ports.Clock
	metrics  ports.Metrics
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, locker *tenant.Locker, clock ports.Clock, metrics ports.Metrics) *ProductUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ProductUseCase{txRunner: txRunner, locker: locker, clock: clock, metrics: metrics}
}

// Create crea un producto y devuelve su ID local al tenant. CurrentStock es el stock inicial declarado.
func (uc *ProductUseCase) Create(ctx context.Context, tenantID string, in dto.CreateProductRequest) (int64, error) {
	in = normalizeCreate(in)
	if err := dto.Validate(in); err != nil {
		return 0, err
	}
	if in.PurchasePrice.IsNegative() {
		return 0, fmt.Errorf("%w: precio de compra negativo", domain.ErrInvalidInput)
	}

	now := uc.clock.Now()
	product := &entity.Product{
		TenantID:        tenantID,
		Code:            in.Code,
		Name:            in.Name,
		Description:     in.Description,
		Location:        in.Location,
		Model:           in.Model,
		Brand:           in.Brand,
		Condition:       in.Condition,
		AcquisitionYear: in.AcquisitionYear,
		PurchasePrice:   in.PurchasePrice,
		CurrentStock:    in.CurrentStock,
		MinimumStock:    in.MinimumStock,
		InitialStock:    in.CurrentStock,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	unlock := uc.locker.Lock(tenantID)
	defer unlock()

	err := uc.txRunner.Run(ctx, tenantID, func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		existing, err := productRepo.GetByCode(ctx, tenantID, product.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateCode
		}
		return productRepo.Create(ctx, product)
	})
	if err != nil {
		return 0, err
	}
	uc.metrics.CatalogMutation("create")
	return product.ID, nil
}

// Update actualiza los campos descriptivos de un producto. No permite modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID string, id int64, in dto.UpdateProductRequest) error {
	in, err := normalizeUpdate(in)
	if err != nil {
		return err
	}
	if err := dto.Validate(in); err != nil {
		return err
	}
	if in.PurchasePrice != nil && in.PurchasePrice.IsNegative() {
		return fmt.Errorf("%w: precio de compra negativo", domain.ErrInvalidInput)
	}

	unlock := uc.locker.Lock(tenantID)
	defer unlock()

	err = uc.txRunner.Run(ctx, tenantID, func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		product, err := productRepo.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Code != nil && *in.Code != product.Code {
			other, err := productRepo.GetByCode(ctx, tenantID, *in.Code)
			if err != nil {
				return err
			}
			if other != nil && other.ID != product.ID {
				return domain.ErrDuplicateCode
			}
			product.Code = *in.Code
		}
		applyUpdate(product, in)
		product.UpdatedAt = uc.clock.Now()
		return productRepo.Update(ctx, product)
	})
	if err != nil {
		return err
	}
	uc.metrics.CatalogMutation("update")
	return nil
}

// Delete elimina el producto y, antes, todos sus movimientos (sin huérfanos en el libro).
func (uc *ProductUseCase) Delete(ctx context.Context, tenantID string, id int64) error {
	unlock := uc.locker.Lock(tenantID)
	defer unlock()

	err := uc.txRunner.Run(ctx, tenantID, func(productRepo repository.ProductRepository, movementRepo repository.MovementRepository) error {
		product, err := productRepo.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if _, err := movementRepo.DeleteByProduct(ctx, tenantID, id); err != nil {
			return err
		}
		return productRepo.Delete(ctx, tenantID, id)
	})
	if err != nil {
		return err
	}
	uc.metrics.CatalogMutation("delete")
	return nil
}

// GetByID obtiene un producto; (nil, nil) si no existe en el tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	var product *entity.Product
	err := uc.txRunner.View(ctx, tenantID, func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		var err error
		product, err = productRepo.GetByID(ctx, tenantID, id)
		return err
	})
	return product, err
}

// List lista el catálogo ordenado por nombre (empates por ID).
func (uc *ProductUseCase) List(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	var list []*entity.Product
	err := uc.txRunner.View(ctx, tenantID, func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		var err error
		list, err = productRepo.List(ctx, tenantID)
		return err
	})
	return nonNil(list), err
}

// Search busca por código, nombre o descripción (sin distinguir mayúsculas), con filtro opcional de ubicación.
func (uc *ProductUseCase) Search(ctx context.Context, tenantID string, in dto.SearchProductsRequest) ([]*entity.Product, error) {
	filter := repository.ProductFilter{
		Query:    strings.TrimSpace(in.Query),
		Location: strings.TrimSpace(in.Location),
	}
	var list []*entity.Product
	err := uc.txRunner.View(ctx, tenantID, func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		var err error
		list, err = productRepo.Search(ctx, tenantID, filter)
		return err
	})
	return nonNil(list), err
}

// ListLocations ubicaciones distintas no vacías, en orden ascendente.
func (uc *ProductUseCase) ListLocations(ctx context.Context, tenantID string) ([]string, error) {
	var locations []string
	err := uc.txRunner.View(ctx, tenantID, func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		var err error
		locations, err = productRepo.ListLocations(ctx, tenantID)
		return err
	})
	if locations == nil {
		locations = []string{}
	}
	return locations, err
}

func normalizeCreate(in dto.CreateProductRequest) dto.CreateProductRequest {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Model = strings.TrimSpace(in.Model)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Condition = strings.TrimSpace(in.Condition)
	return in
}

func normalizeUpdate(in dto.UpdateProductRequest) (dto.UpdateProductRequest, error) {
	for _, s := range []*string{in.Code, in.Name, in.Description, in.Location, in.Model, in.Brand, in.Condition} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	if in.Code != nil && *in.Code == "" {
		return in, fmt.Errorf("%w: code vacío", domain.ErrInvalidInput)
	}
	if in.Name != nil && *in.Name == "" {
		return in, fmt.Errorf("%w: name vacío", domain.ErrInvalidInput)
	}
	return in, nil
}

func applyUpdate(p *entity.Product, in dto.UpdateProductRequest) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Model != nil {
		p.Model = *in.Model
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Condition != nil {
		p.Condition = *in.Condition
	}
	if in.ClearAcquisitionYear {
		p.AcquisitionYear = nil
	} else if in.AcquisitionYear != nil {
		year := *in.AcquisitionYear
		p.AcquisitionYear = &year
	}
	if in.PurchasePrice != nil {
		p.PurchasePrice = *in.PurchasePrice
	}
	if in.MinimumStock != nil {
		p.MinimumStock = *in.MinimumStock
	}
}

func nonNil(list []*entity.Product) []*entity.Product {
	if list == nil {
		return []*entity.Product{}
	}
	return list
}
