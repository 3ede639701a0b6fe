package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/tenant"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// RegisterMovementUseCase es el coordinador de stock: el único camino por el que se confirman
// movimientos. Bloquea el tenant, lee el producto con bloqueo de fila, valida, agrega el
// movimiento y ajusta el stock en la misma transacción (Commit o Rollback de ambos).
type RegisterMovementUseCase struct {
	txRunner ports.TxRunner
	locker   *tenant.Locker
	products *usecase.ProductUseCase
	clock    ports.Clock
	metrics  ports.Metrics
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner ports.TxRunner,
	locker *tenant.Locker,
	products *usecase.ProductUseCase,
	clock ports.Clock,
	metrics ports.Metrics,
) *RegisterMovementUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		locker:   locker,
		products: products,
		clock:    clock,
		metrics:  metrics,
	}
}

// CreateProduct delega en el catálogo. El stock inicial es un punto de partida declarado,
// no un movimiento del libro.
func (uc *RegisterMovementUseCase) CreateProduct(ctx context.Context, tenantID string, in dto.CreateProductRequest) (int64, error) {
	return uc.products.Create(ctx, tenantID, in)
}

// RecordMovement registra una entrada o salida y devuelve el ID del movimiento.
// Una salida mayor al stock actual se rechaza con ErrInsufficientStock sin escribir nada.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, in dto.RecordMovementRequest) (int64, error) {
	if in.Quantity <= 0 {
		uc.metrics.MovementRejected("invalid_quantity")
		return 0, domain.ErrInvalidQuantity
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if err := dto.Validate(in); err != nil {
		uc.metrics.MovementRejected("invalid_input")
		return 0, err
	}

	mov := &entity.Movement{
		TenantID:   in.TenantID,
		ProductID:  in.ProductID,
		Kind:       in.Kind,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
		RecordedAt: uc.clock.Now(),
	}

	unlock := uc.locker.Lock(in.TenantID)
	defer unlock()

	err := uc.txRunner.Run(ctx, in.TenantID, func(productRepo repository.ProductRepository, movementRepo repository.MovementRepository) error {
		// Bloquea la fila del producto hasta el Commit para que dos salidas no lean el mismo stock
		product, err := productRepo.GetForUpdate(ctx, in.TenantID, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		newStock, err := inventory.ApplyMovement(product.CurrentStock, in.Kind, in.Quantity)
		if err != nil {
			return err
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
		return productRepo.UpdateStock(ctx, in.TenantID, in.ProductID, newStock)
	})
	if err != nil {
		uc.metrics.MovementRejected(rejectReason(err))
		return 0, err
	}
	uc.metrics.MovementRecorded(string(in.Kind), in.Quantity)
	return mov.ID, nil
}

// ListMovements libro del tenant con código y nombre de producto, más recientes primero.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, tenantID string) ([]*entity.MovementView, error) {
	var list []*entity.MovementView
	err := uc.txRunner.View(ctx, tenantID, func(_ repository.ProductRepository, movementRepo repository.MovementRepository, _ repository.ReportRepository) error {
		var err error
		list, err = movementRepo.List(ctx, tenantID)
		return err
	})
	if list == nil {
		list = []*entity.MovementView{}
	}
	return list, err
}

// ListProductMovements movimientos de un producto, más recientes primero.
func (uc *RegisterMovementUseCase) ListProductMovements(ctx context.Context, tenantID string, productID int64) ([]*entity.Movement, error) {
	var list []*entity.Movement
	err := uc.txRunner.View(ctx, tenantID, func(productRepo repository.ProductRepository, movementRepo repository.MovementRepository, _ repository.ReportRepository) error {
		product, err := productRepo.GetByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		list, err = movementRepo.ListByProduct(ctx, tenantID, productID)
		return err
	})
	if list == nil {
		list = []*entity.Movement{}
	}
	return list, err
}

// Reconcile recalcula el stock de un producto desde el libro y lo compara con el guardado.
func (uc *RegisterMovementUseCase) Reconcile(ctx context.Context, tenantID string, productID int64) (*dto.ReconcileResult, error) {
	var result *dto.ReconcileResult
	err := uc.txRunner.View(ctx, tenantID, func(productRepo repository.ProductRepository, movementRepo repository.MovementRepository, _ repository.ReportRepository) error {
		product, err := productRepo.GetByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		result, err = reconcileProduct(ctx, movementRepo, product)
		return err
	})
	return result, err
}

// ReconcileAll reconcilia todo el catálogo del tenant en un mismo snapshot.
func (uc *RegisterMovementUseCase) ReconcileAll(ctx context.Context, tenantID string) ([]dto.ReconcileResult, error) {
	results := []dto.ReconcileResult{}
	err := uc.txRunner.View(ctx, tenantID, func(productRepo repository.ProductRepository, movementRepo repository.MovementRepository, _ repository.ReportRepository) error {
		products, err := productRepo.List(ctx, tenantID)
		if err != nil {
			return err
		}
		for _, p := range products {
			r, err := reconcileProduct(ctx, movementRepo, p)
			if err != nil {
				return err
			}
			results = append(results, *r)
		}
		return nil
	})
	return results, err
}

func reconcileProduct(ctx context.Context, movementRepo repository.MovementRepository, p *entity.Product) (*dto.ReconcileResult, error) {
	totals, err := movementRepo.SumByProduct(ctx, p.TenantID, p.ID)
	if err != nil {
		return nil, err
	}
	expected := inventory.ExpectedStock(p.InitialStock, totals)
	return &dto.ReconcileResult{
		ProductID:     p.ID,
		Code:          p.Code,
		InitialStock:  p.InitialStock,
		Inflow:        totals.Inflow,
		Outflow:       totals.Outflow,
		Movements:     totals.Count,
		ExpectedStock: expected,
		CurrentStock:  p.CurrentStock,
		Consistent:    expected == p.CurrentStock,
	}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "storage"
	}
}
