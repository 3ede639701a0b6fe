package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/tenant"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/badgerstore"
)

var bogota = time.FixedZone("COT", -5*3600)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time           { return c.now }
func (c fixedClock) Location() *time.Location { return c.now.Location() }

// seed crea un tenant con tres productos y movimientos en tres días distintos (hora de Bogotá).
func seed(t *testing.T) (*badgerstore.TxRunner, fixedClock) {
	t.Helper()
	db, err := badgerstore.Open(badgerstore.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := fixedClock{now: time.Date(2026, 10, 19, 8, 30, 0, 0, bogota)}
	ctx := context.Background()
	require.NoError(t, tenant.NewProvisioner(badgerstore.NewTenantRepository(db), clock, nil).Ensure(ctx, "t1"))
	runner := badgerstore.NewTxRunner(db)

	products := []*entity.Product{
		{TenantID: "t1", Code: "A", Name: "Alicate", Location: "Bodega 1", PurchasePrice: decimal.RequireFromString("10.005"), CurrentStock: 100},
		{TenantID: "t1", Code: "B", Name: "Brocha", Location: "Bodega 2", PurchasePrice: decimal.RequireFromString("2.50"), CurrentStock: 4, MinimumStock: 5},
		{TenantID: "t1", Code: "C", Name: "Cincel", PurchasePrice: decimal.RequireFromString("1"), CurrentStock: 29, MinimumStock: 10},
	}
	at := func(day, hour int) time.Time { return time.Date(2026, 10, day, hour, 0, 0, 0, bogota) }
	movements := []*entity.Movement{
		{Kind: entity.MovementIn, Quantity: 3, RecordedAt: at(17, 9)},
		{Kind: entity.MovementIn, Quantity: 2, RecordedAt: at(18, 23)},
		{Kind: entity.MovementOut, Quantity: 1, RecordedAt: at(18, 10)},
		{Kind: entity.MovementOut, Quantity: 4, RecordedAt: at(19, 0)},
		{Kind: entity.MovementOut, Quantity: 6, RecordedAt: at(19, 8)},
	}
	err = runner.Run(ctx, "t1", func(productRepo repository.ProductRepository, movementRepo repository.MovementRepository) error {
		for _, p := range products {
			p.CreatedAt, p.UpdatedAt = clock.now, clock.now
			if err := productRepo.Create(ctx, p); err != nil {
				return err
			}
		}
		for _, m := range movements {
			m.TenantID, m.ProductID = "t1", products[0].ID
			if err := movementRepo.Create(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return runner, clock
}

func TestDashboardStats(t *testing.T) {
	runner, clock := seed(t)
	uc := analytics.NewDashboardUseCase(runner, clock, analytics.Options{})

	stats, err := uc.DashboardStats(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(5), stats.TotalMovements)
	assert.Equal(t, int64(2), stats.LowStockCount, "stock < 30")
	assert.Equal(t, analytics.DefaultLowStockThreshold, stats.LowStockThreshold)
	// 100×10.005 + 4×2.50 + 29×1 = 1039.5
	assert.True(t, stats.TotalInventoryValue.Equal(decimal.RequireFromString("1039.5")), stats.TotalInventoryValue.String())
	assert.Equal(t, int64(2), stats.MovementsToday)
	assert.Equal(t, "19 de Octubre 2026", stats.DateLabel)
}

func TestDashboardStats_EmptyTenant(t *testing.T) {
	db, err := badgerstore.Open(badgerstore.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	clock := fixedClock{now: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, tenant.NewProvisioner(badgerstore.NewTenantRepository(db), clock, nil).Ensure(context.Background(), "vacío"))

	uc := analytics.NewDashboardUseCase(badgerstore.NewTxRunner(db), clock, analytics.Options{LowStockThreshold: 5})
	stats, err := uc.DashboardStats(context.Background(), "vacío")
	require.NoError(t, err)
	assert.Equal(t, "2 de Enero 2026", stats.DateLabel)
	assert.Equal(t, int64(5), stats.LowStockThreshold)
	assert.Zero(t, stats.TotalProducts)
	assert.Zero(t, stats.MovementsToday)
	assert.True(t, stats.TotalInventoryValue.IsZero())
}

func TestLowStockProducts(t *testing.T) {
	runner, clock := seed(t)
	uc := analytics.NewDashboardUseCase(runner, clock, analytics.Options{})
	ctx := context.Background()

	list, err := uc.LowStockProducts(ctx, "t1", 30)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Code, "ascendente por stock")
	assert.Equal(t, "C", list[1].Code)

	list, err = uc.LowStockProducts(ctx, "t1", 4)
	require.NoError(t, err)
	assert.Empty(t, list, "el umbral es estricto")

	_, err = uc.LowStockProducts(ctx, "t1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReorderProducts(t *testing.T) {
	runner, clock := seed(t)
	uc := analytics.NewDashboardUseCase(runner, clock, analytics.Options{})

	list, err := uc.ReorderProducts(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Code)
}

func TestStockReportByLocation(t *testing.T) {
	runner, clock := seed(t)
	uc := analytics.NewDashboardUseCase(runner, clock, analytics.Options{})

	rows, err := uc.StockReportByLocation(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Bodega 1", rows[0].Location)
	assert.True(t, rows[0].TotalValue.Equal(decimal.RequireFromString("1000.5")), rows[0].TotalValue.String())
	assert.Equal(t, repository.UnspecifiedLocation, rows[1].Location)
	assert.Equal(t, int64(29), rows[1].TotalStock)
	assert.Equal(t, "Bodega 2", rows[2].Location)
	assert.Equal(t, int64(1), rows[2].ProductCount)
}

func TestMovementReport(t *testing.T) {
	runner, clock := seed(t)
	ctx := context.Background()

	uc := analytics.NewDashboardUseCase(runner, clock, analytics.Options{})
	rows, err := uc.MovementReport(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []dto.MovementReportDTO{
		{Date: "2026-10-19", Kind: "OUT", Count: 2, TotalQuantity: 10},
		{Date: "2026-10-18", Kind: "IN", Count: 1, TotalQuantity: 2},
		{Date: "2026-10-18", Kind: "OUT", Count: 1, TotalQuantity: 1},
		{Date: "2026-10-17", Kind: "IN", Count: 1, TotalQuantity: 3},
	}, rows)

	limited := analytics.NewDashboardUseCase(runner, clock, analytics.Options{MovementReportDays: 2})
	rows, err = limited.MovementReport(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-10-18", rows[2].Date)

	utc := analytics.NewDashboardUseCase(runner, fixedClock{now: clock.now.UTC()}, analytics.Options{})
	rows, err = utc.MovementReport(ctx, "t1")
	require.NoError(t, err)
	// En UTC la entrada de las 23:00 del 18 cae el 19
	assert.Equal(t, dto.MovementReportDTO{Date: "2026-10-19", Kind: "IN", Count: 1, TotalQuantity: 2}, rows[0])
}
