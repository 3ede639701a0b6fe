// Package ledger expone el motor de inventario multi-tenant como una sola fachada.
//
// Cada operación resuelve primero el área del tenant (aprovisionamiento perezoso, una vez por
// tenant y proceso) y luego delega en el caso de uso correspondiente: catálogo, coordinador de
// stock o agregador de reportes.
package ledger

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/tenant"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Deps dependencias del motor.
type Deps struct {
	TxRunner   ports.TxRunner
	TenantRepo repository.TenantRepository
	Clock      ports.Clock
	Metrics    ports.Metrics
	Logger     *logger.Logger
	Reports    analytics.Options
}

// Service fachada del motor.
type Service struct {
	provisioner *tenant.Provisioner
	products    *usecase.ProductUseCase
	movements   *inventory.RegisterMovementUseCase
	dashboard   *analytics.DashboardUseCase
	log         *logger.Logger
}

// NewService arma los casos de uso sobre el almacenamiento indicado.
func NewService(d Deps) *Service {
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	if d.Clock == nil {
		d.Clock = ports.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	locker := tenant.NewLocker()
	products := usecase.NewProductUseCase(d.TxRunner, locker, d.Clock, d.Metrics)
	return &Service{
		provisioner: tenant.NewProvisioner(d.TenantRepo, d.Clock, d.Metrics),
		products:    products,
		movements:   inventory.NewRegisterMovementUseCase(d.TxRunner, locker, products, d.Clock, d.Metrics),
		dashboard:   analytics.NewDashboardUseCase(d.TxRunner, d.Clock, d.Reports),
		log:         d.Logger,
	}
}

// ── Tenants ───────────────────────────────────────────────────────────────────

// EnsureTenant crea el área del tenant si no existe. Idempotente.
func (s *Service) EnsureTenant(ctx context.Context, tenantID string) (bool, error) {
	created, err := s.provisioner.EnsureTenantStorage(ctx, tenantID)
	if err != nil {
		return false, s.fail(err, "ensure_tenant", tenantID)
	}
	if created {
		s.log.Info().Str("tenant", tenantID).Msg("almacenamiento de tenant creado")
	}
	return created, nil
}

// MigrateTenant agrega los campos faltantes al área del tenant.
func (s *Service) MigrateTenant(ctx context.Context, tenantID string) ([]string, error) {
	added, err := s.provisioner.MigrateTenantStorage(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "migrate_tenant", tenantID)
	}
	if len(added) > 0 {
		s.log.Info().Str("tenant", tenantID).Strs("added", added).Msg("tenant migrado")
	}
	return added, nil
}

// MigrateAll migra todos los tenants aprovisionados.
func (s *Service) MigrateAll(ctx context.Context) (*tenant.MigrationReport, error) {
	report, err := s.provisioner.MigrateAll(ctx)
	if report != nil {
		s.log.Info().Int("tenants", len(report.Tenants)).Int("migrated", report.Migrated).Int("failed", report.Failed).Msg("migración de tenants")
	}
	if err != nil {
		return report, s.fail(err, "migrate_all", "")
	}
	return report, nil
}

// VerifyTenant devuelve el layout almacenado del tenant.
func (s *Service) VerifyTenant(ctx context.Context, tenantID string) (*entity.TenantStorage, error) {
	st, err := s.provisioner.Verify(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "verify_tenant", tenantID)
	}
	return st, nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// CreateProduct crea un producto y devuelve su ID.
func (s *Service) CreateProduct(ctx context.Context, tenantID string, in dto.CreateProductRequest) (int64, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return 0, err
	}
	id, err := s.movements.CreateProduct(ctx, tenantID, in)
	if err != nil {
		return 0, s.fail(err, "create_product", tenantID)
	}
	s.log.Debug().Str("tenant", tenantID).Int64("product_id", id).Str("code", in.Code).Msg("producto creado")
	return id, nil
}

// UpdateProduct actualiza los datos descriptivos de un producto. El stock no se edita aquí.
func (s *Service) UpdateProduct(ctx context.Context, tenantID string, id int64, in dto.UpdateProductRequest) error {
	if err := s.ensure(ctx, tenantID); err != nil {
		return err
	}
	if err := s.products.Update(ctx, tenantID, id, in); err != nil {
		return s.fail(err, "update_product", tenantID)
	}
	s.log.Debug().Str("tenant", tenantID).Int64("product_id", id).Msg("producto actualizado")
	return nil
}

// DeleteProduct elimina el producto y sus movimientos. false si no existía.
func (s *Service) DeleteProduct(ctx context.Context, tenantID string, id int64) (bool, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return false, err
	}
	err := s.products.Delete(ctx, tenantID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, s.fail(err, "delete_product", tenantID)
	}
	s.log.Debug().Str("tenant", tenantID).Int64("product_id", id).Msg("producto eliminado")
	return true, nil
}

// GetProduct nil, nil si el producto no existe.
func (s *Service) GetProduct(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, s.fail(err, "get_product", tenantID)
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	list, err := s.products.List(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "list_products", tenantID)
	}
	return list, nil
}

// SearchProducts búsqueda sin distinguir mayúsculas sobre código, nombre y descripción.
func (s *Service) SearchProducts(ctx context.Context, tenantID, query, location string) ([]*entity.Product, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	list, err := s.products.Search(ctx, tenantID, dto.SearchProductsRequest{Query: query, Location: location})
	if err != nil {
		return nil, s.fail(err, "search_products", tenantID)
	}
	return list, nil
}

func (s *Service) ListLocations(ctx context.Context, tenantID string) ([]string, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	list, err := s.products.ListLocations(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "list_locations", tenantID)
	}
	return list, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────

// RecordMovement registra una entrada o salida y devuelve el ID del movimiento.
func (s *Service) RecordMovement(ctx context.Context, tenantID string, productID int64, kind entity.MovementKind, quantity int64, reason string) (int64, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return 0, err
	}
	id, err := s.movements.RecordMovement(ctx, dto.RecordMovementRequest{
		TenantID:  tenantID,
		ProductID: productID,
		Kind:      kind,
		Quantity:  quantity,
		Reason:    reason,
	})
	if err != nil {
		return 0, s.fail(err, "record_movement", tenantID)
	}
	s.log.Debug().Str("tenant", tenantID).Int64("product_id", productID).Str("kind", string(kind)).
		Int64("quantity", quantity).Int64("movement_id", id).Msg("movimiento registrado")
	return id, nil
}

func (s *Service) ListMovements(ctx context.Context, tenantID string) ([]*entity.MovementView, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	list, err := s.movements.ListMovements(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "list_movements", tenantID)
	}
	return list, nil
}

// ListProductMovements historial de un producto.
func (s *Service) ListProductMovements(ctx context.Context, tenantID string, productID int64) ([]*entity.Movement, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	list, err := s.movements.ListProductMovements(ctx, tenantID, productID)
	if err != nil {
		return nil, s.fail(err, "list_product_movements", tenantID)
	}
	return list, nil
}

// Reconcile compara el stock guardado de un producto con el recalculado desde el libro.
func (s *Service) Reconcile(ctx context.Context, tenantID string, productID int64) (*dto.ReconcileResult, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	r, err := s.movements.Reconcile(ctx, tenantID, productID)
	if err != nil {
		return nil, s.fail(err, "reconcile", tenantID)
	}
	if !r.Consistent {
		s.log.Warn().Str("tenant", tenantID).Int64("product_id", productID).
			Int64("expected", r.ExpectedStock).Int64("current", r.CurrentStock).Msg("stock inconsistente con el libro")
	}
	return r, nil
}

// ReconcileAll reconcilia todos los productos del tenant.
func (s *Service) ReconcileAll(ctx context.Context, tenantID string) ([]dto.ReconcileResult, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	results, err := s.movements.ReconcileAll(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "reconcile_all", tenantID)
	}
	for _, r := range results {
		if !r.Consistent {
			s.log.Warn().Str("tenant", tenantID).Int64("product_id", r.ProductID).
				Int64("expected", r.ExpectedStock).Int64("current", r.CurrentStock).Msg("stock inconsistente con el libro")
		}
	}
	return results, nil
}

// ── Reportes ──────────────────────────────────────────────────────────────────

func (s *Service) DashboardStats(ctx context.Context, tenantID string) (*dto.DashboardStatsDTO, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	stats, err := s.dashboard.DashboardStats(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "dashboard_stats", tenantID)
	}
	return stats, nil
}

// LowStockProducts usa el umbral configurado cuando threshold es nil.
func (s *Service) LowStockProducts(ctx context.Context, tenantID string, threshold *int64) ([]*entity.Product, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	t := s.dashboard.LowStockThreshold()
	if threshold != nil {
		t = *threshold
	}
	list, err := s.dashboard.LowStockProducts(ctx, tenantID, t)
	if err != nil {
		return nil, s.fail(err, "low_stock_products", tenantID)
	}
	return list, nil
}

func (s *Service) ReorderProducts(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	list, err := s.dashboard.ReorderProducts(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "reorder_products", tenantID)
	}
	return list, nil
}

func (s *Service) StockReportByLocation(ctx context.Context, tenantID string) ([]dto.LocationStockDTO, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	rows, err := s.dashboard.StockReportByLocation(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "stock_report_by_location", tenantID)
	}
	return rows, nil
}

func (s *Service) MovementReport(ctx context.Context, tenantID string) ([]dto.MovementReportDTO, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	rows, err := s.dashboard.MovementReport(ctx, tenantID)
	if err != nil {
		return nil, s.fail(err, "movement_report", tenantID)
	}
	return rows, nil
}

// ensure aprovisionamiento perezoso del tenant.
func (s *Service) ensure(ctx context.Context, tenantID string) error {
	if err := s.provisioner.Ensure(ctx, tenantID); err != nil {
		return s.fail(err, "provision", tenantID)
	}
	return nil
}

// fail registra fallos de almacenamiento en warn y devuelve el error sin modificar.
func (s *Service) fail(err error, op, tenantID string) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		s.log.Warn().Err(err).Str("op", op).Str("tenant", tenantID).Msg("fallo de almacenamiento")
	}
	return err
}
