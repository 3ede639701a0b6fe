package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// openTestDB abre una instancia en memoria que se cierra al terminar el test.
func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func provision(t *testing.T, db *badger.DB, tenantID string, fields []string) {
	t.Helper()
	created, err := NewTenantRepository(db).CreateIfAbsent(context.Background(), &entity.TenantStorage{
		TenantID:  tenantID,
		Fields:    fields,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, created)
}

func createProduct(t *testing.T, runner *TxRunner, p *entity.Product) int64 {
	t.Helper()
	err := runner.Run(context.Background(), p.TenantID, func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		return productRepo.Create(context.Background(), p)
	})
	require.NoError(t, err)
	return p.ID
}

func addMovement(t *testing.T, runner *TxRunner, m *entity.Movement) int64 {
	t.Helper()
	err := runner.Run(context.Background(), m.TenantID, func(_ repository.ProductRepository, movementRepo repository.MovementRepository) error {
		return movementRepo.Create(context.Background(), m)
	})
	require.NoError(t, err)
	return m.ID
}

// ── Claves ────────────────────────────────────────────────────────────────────

func TestTenantFromMetaKey(t *testing.T) {
	id, ok := tenantFromMetaKey(metaKey("42"))
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = tenantFromMetaKey(productKey("42", 1))
	assert.False(t, ok, "una clave de producto no es de metadatos")
	_, ok = tenantFromMetaKey([]byte("t//meta"))
	assert.False(t, ok)
}

func TestProductKeysSortNumerically(t *testing.T) {
	assert.Less(t, string(productKey("a", 9)), string(productKey("a", 10)))
	id, err := movementIDFromIndexKey(productMovementKey("a", 3, 1234))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), id)
}

// ── Tenants ───────────────────────────────────────────────────────────────────

func TestTenantRepository_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewTenantRepository(db)
	ctx := context.Background()

	st, err := repo.Get(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, st, "tenant no aprovisionado debe devolver nil")

	provision(t, db, "7", entity.LegacyProductFieldSet)

	created, err := repo.CreateIfAbsent(ctx, &entity.TenantStorage{TenantID: "7", Fields: entity.ProductFieldSet})
	require.NoError(t, err)
	assert.False(t, created, "la segunda creación es idempotente")

	st, err = repo.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, entity.LegacyProductFieldSet, st.Fields, "CreateIfAbsent no sobrescribe un área existente")

	require.NoError(t, repo.AddFields(ctx, "7", []string{entity.FieldLocation, entity.FieldCode}))
	st, err = repo.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, entity.LegacyProductFieldSet...), entity.FieldLocation), st.Fields)

	err = repo.AddFields(ctx, "nope", []string{entity.FieldLocation})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	provision(t, db, "3", entity.ProductFieldSet)
	ids, err := repo.ListTenantIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "7"}, ids)
}

func TestTenantRepository_ConcurrentCreate(t *testing.T) {
	db := openTestDB(t)
	repo := NewTenantRepository(db)

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := repo.CreateIfAbsent(context.Background(), &entity.TenantStorage{TenantID: "x", Fields: entity.ProductFieldSet})
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, createdCount, "solo una llamada debe crear el área")
}

// ── Productos ─────────────────────────────────────────────────────────────────

func TestProductRepository_CreateAndLookup(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)

	year := 2020
	id := createProduct(t, runner, &entity.Product{
		TenantID: "1", Code: "A1", Name: "Taladro", Location: "Bodega",
		AcquisitionYear: &year, PurchasePrice: decimal.RequireFromString("12.50"),
		CurrentStock: 5, InitialStock: 5,
	})
	assert.Equal(t, int64(1), id)

	err := runner.View(context.Background(), "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		p, err := productRepo.GetByCode(context.Background(), "1", "A1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Taladro", p.Name)
		assert.Equal(t, "1", p.TenantID)
		assert.True(t, decimal.RequireFromString("12.5").Equal(p.PurchasePrice))
		require.NotNil(t, p.AcquisitionYear)
		assert.Equal(t, 2020, *p.AcquisitionYear)

		missing, err := productRepo.GetByID(context.Background(), "1", 99)
		assert.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestProductRepository_DuplicateCodeAndUnprovisioned(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "A1", Name: "X"})

	err := runner.Run(context.Background(), "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		return productRepo.Create(context.Background(), &entity.Product{TenantID: "1", Code: "A1", Name: "Y"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	err = runner.Run(context.Background(), "2", func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		return productRepo.Create(context.Background(), &entity.Product{TenantID: "2", Code: "A1", Name: "Y"})
	})
	assert.ErrorIs(t, err, domain.ErrTenantNotProvisioned)
}

func TestProductRepository_UpdateMovesCodeIndex(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	id := createProduct(t, runner, &entity.Product{TenantID: "1", Code: "OLD", Name: "X", CurrentStock: 4, InitialStock: 4})
	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "TAKEN", Name: "Z"})
	ctx := context.Background()

	err := runner.Run(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		p, err := productRepo.GetForUpdate(ctx, "1", id)
		require.NoError(t, err)
		p.Code = "NEW"
		p.CurrentStock = 999 // Update no toca el stock
		return productRepo.Update(ctx, p)
	})
	require.NoError(t, err)

	err = runner.Run(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		p, err := productRepo.GetByID(ctx, "1", id)
		require.NoError(t, err)
		p.Code = "TAKEN"
		return productRepo.Update(ctx, p)
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	err = runner.View(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		old, err := productRepo.GetByCode(ctx, "1", "OLD")
		require.NoError(t, err)
		assert.Nil(t, old, "el código anterior queda libre")
		p, err := productRepo.GetByCode(ctx, "1", "NEW")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, int64(4), p.CurrentStock)
		return nil
	})
	require.NoError(t, err)
}

func TestProductRepository_IDsNeverReused(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	ctx := context.Background()

	first := createProduct(t, runner, &entity.Product{TenantID: "1", Code: "A", Name: "A"})
	err := runner.Run(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		return productRepo.Delete(ctx, "1", first)
	})
	require.NoError(t, err)

	second := createProduct(t, runner, &entity.Product{TenantID: "1", Code: "A", Name: "A"})
	assert.Greater(t, second, first, "un ID borrado no se reutiliza y el código queda libre")

	st, err := NewTenantRepository(db).Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.ProductSeq)
}

func TestProductRepository_SearchLowercasesLikePostgres(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	ctx := context.Background()

	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "M-1", Name: "Straße"})

	err := runner.View(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		found, err := productRepo.Search(ctx, "1", repository.ProductFilter{Query: "STRAßE"})
		require.NoError(t, err)
		assert.Len(t, found, 1)

		found, err = productRepo.Search(ctx, "1", repository.ProductFilter{Query: "strasse"})
		require.NoError(t, err)
		assert.Empty(t, found, "sin plegado completo: ß no equivale a ss")
		return nil
	})
	require.NoError(t, err)
}

func TestProductRepository_ListSearchLocations(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	ctx := context.Background()

	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "B-1", Name: "Sierra", Location: "Taller"})
	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "A-1", Name: "Árbol de levas", Description: "repuesto", Location: "Bodega"})
	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "A-2", Name: "Sierra", Description: "ÁRBOL", Location: "Bodega"})
	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "C-1", Name: "Cinta"})

	err := runner.View(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		list, err := productRepo.List(ctx, "1")
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, []string{"C-1", "B-1", "A-2", "Árbol de levas"}, []string{list[0].Code, list[1].Code, list[2].Code, list[3].Name},
			"orden por nombre y luego por ID")

		found, err := productRepo.Search(ctx, "1", repository.ProductFilter{Query: "árbol"})
		require.NoError(t, err)
		require.Len(t, found, 2, "la búsqueda ignora mayúsculas, también en caracteres acentuados")

		found, err = productRepo.Search(ctx, "1", repository.ProductFilter{Query: "sierra", Location: "Bodega"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "A-2", found[0].Code)

		found, err = productRepo.Search(ctx, "1", repository.ProductFilter{})
		require.NoError(t, err)
		assert.Len(t, found, 4, "consulta vacía coincide con todo")

		locations, err := productRepo.ListLocations(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Bodega", "Taller"}, locations)
		return nil
	})
	require.NoError(t, err)
}

func TestProductRepository_LegacyRecordReadsZeroValues(t *testing.T) {
	db := openTestDB(t)
	provision(t, db, "old", entity.LegacyProductFieldSet)
	legacy := []byte(`{"id":1,"code":"L1","name":"Viejo","description":"","purchase_price":"3","current_stock":8,"minimum_stock":2,"created_at":"2024-01-02T10:00:00Z"}`)
	require.NoError(t, db.Update(func(txn *badger.Txn) error { return txn.Set(productKey("old", 1), legacy) }))

	err := NewTxRunner(db).View(context.Background(), "old", func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		p, err := productRepo.GetByID(context.Background(), "old", 1)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "", p.Location)
		assert.Nil(t, p.AcquisitionYear)
		assert.Equal(t, int64(0), p.InitialStock)
		assert.Equal(t, int64(8), p.CurrentStock)
		return nil
	})
	require.NoError(t, err)
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func TestMovementRepository_ListOrderAndCascade(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	ctx := context.Background()

	a := createProduct(t, runner, &entity.Product{TenantID: "1", Code: "A", Name: "Alfa"})
	b := createProduct(t, runner, &entity.Product{TenantID: "1", Code: "B", Name: "Beta"})
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	addMovement(t, runner, &entity.Movement{TenantID: "1", ProductID: a, Kind: entity.MovementIn, Quantity: 5, RecordedAt: t0})
	addMovement(t, runner, &entity.Movement{TenantID: "1", ProductID: b, Kind: entity.MovementIn, Quantity: 1, RecordedAt: t0})
	addMovement(t, runner, &entity.Movement{TenantID: "1", ProductID: a, Kind: entity.MovementOut, Quantity: 2, RecordedAt: t0.Add(time.Hour)})

	err := runner.View(ctx, "1", func(_ repository.ProductRepository, movementRepo repository.MovementRepository, _ repository.ReportRepository) error {
		list, err := movementRepo.List(ctx, "1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ID, list[1].ID, list[2].ID}, "recorded_at desc, empates por ID desc")
		assert.Equal(t, "Alfa", list[0].ProductName)
		assert.Equal(t, "B", list[1].ProductCode)

		totals, err := movementRepo.SumByProduct(ctx, "1", a)
		require.NoError(t, err)
		assert.Equal(t, repository.MovementTotals{Inflow: 5, Outflow: 2, Count: 2}, totals)
		return nil
	})
	require.NoError(t, err)

	err = runner.Run(ctx, "1", func(productRepo repository.ProductRepository, movementRepo repository.MovementRepository) error {
		n, err := movementRepo.DeleteByProduct(ctx, "1", a)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return productRepo.Delete(ctx, "1", a)
	})
	require.NoError(t, err)

	err = runner.View(ctx, "1", func(_ repository.ProductRepository, movementRepo repository.MovementRepository, _ repository.ReportRepository) error {
		list, err := movementRepo.List(ctx, "1")
		require.NoError(t, err)
		require.Len(t, list, 1, "no quedan movimientos huérfanos")
		assert.Equal(t, b, list[0].ProductID)
		return nil
	})
	require.NoError(t, err)
}

func TestMovementRepository_RejectsNonPositiveQuantity(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)

	err := runner.Run(context.Background(), "1", func(_ repository.ProductRepository, movementRepo repository.MovementRepository) error {
		return movementRepo.Create(context.Background(), &entity.Movement{TenantID: "1", ProductID: 1, Kind: entity.MovementIn, Quantity: 0})
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTxRunner_RollbackOnError(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	ctx := context.Background()
	boom := errors.New("boom")

	err := runner.Run(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
		require.NoError(t, productRepo.Create(ctx, &entity.Product{TenantID: "1", Code: "A", Name: "A"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable, "un error desconocido se reporta como fallo de almacenamiento")

	err = runner.View(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		list, err := productRepo.List(ctx, "1")
		require.NoError(t, err)
		assert.Empty(t, list, "nada se confirma si fn falla")
		return nil
	})
	require.NoError(t, err)
}

func TestTxRunner_CanceledContext(t *testing.T) {
	runner := NewTxRunner(openTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.Run(ctx, "1", func(repository.ProductRepository, repository.MovementRepository) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

// ── Reportes ──────────────────────────────────────────────────────────────────

func TestReportRepository_Aggregates(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	provision(t, db, "1", entity.ProductFieldSet)
	ctx := context.Background()

	a := createProduct(t, runner, &entity.Product{TenantID: "1", Code: "A", Name: "A", Location: "Bodega", PurchasePrice: decimal.NewFromInt(10), CurrentStock: 5, MinimumStock: 10})
	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "B", Name: "B", PurchasePrice: decimal.RequireFromString("2.5"), CurrentStock: 40})
	createProduct(t, runner, &entity.Product{TenantID: "1", Code: "C", Name: "C", Location: "Bodega", PurchasePrice: decimal.NewFromInt(1), CurrentStock: 3})

	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	addMovement(t, runner, &entity.Movement{TenantID: "1", ProductID: a, Kind: entity.MovementIn, Quantity: 1, RecordedAt: dayStart.Add(-time.Minute)})
	addMovement(t, runner, &entity.Movement{TenantID: "1", ProductID: a, Kind: entity.MovementIn, Quantity: 2, RecordedAt: dayStart})
	addMovement(t, runner, &entity.Movement{TenantID: "1", ProductID: a, Kind: entity.MovementOut, Quantity: 3, RecordedAt: dayStart.Add(5 * time.Hour)})

	err := runner.View(ctx, "1", func(_ repository.ProductRepository, _ repository.MovementRepository, reportRepo repository.ReportRepository) error {
		totals, err := reportRepo.DashboardTotals(ctx, "1", 30, dayStart, dayStart.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(3), totals.TotalProducts)
		assert.Equal(t, int64(3), totals.TotalMovements)
		assert.Equal(t, int64(2), totals.LowStockCount)
		assert.Equal(t, int64(2), totals.MovementsToday, "el rango de hoy es [inicio, fin)")
		assert.Equal(t, "153", totals.InventoryValue.String())

		low, err := reportRepo.LowStock(ctx, "1", 30)
		require.NoError(t, err)
		require.Len(t, low, 2)
		assert.Equal(t, "C", low[0].Code, "stock ascendente")

		below, err := reportRepo.BelowMinimum(ctx, "1")
		require.NoError(t, err)
		require.Len(t, below, 1)
		assert.Equal(t, a, below[0].ID)

		byLoc, err := reportRepo.StockByLocation(ctx, "1")
		require.NoError(t, err)
		require.Len(t, byLoc, 2)
		assert.Equal(t, repository.UnspecifiedLocation, byLoc[0].Location)
		assert.Equal(t, "100", byLoc[0].TotalValue.String())
		assert.Equal(t, "Bodega", byLoc[1].Location)
		assert.Equal(t, int64(2), byLoc[1].ProductCount)
		assert.Equal(t, int64(8), byLoc[1].TotalStock)

		days, err := reportRepo.MovementsByDay(ctx, "1", time.UTC, 30)
		require.NoError(t, err)
		assert.Equal(t, []repository.MovementDayResult{
			{Day: "2026-03-02", Kind: entity.MovementIn, Count: 1, TotalQuantity: 2},
			{Day: "2026-03-02", Kind: entity.MovementOut, Count: 1, TotalQuantity: 3},
			{Day: "2026-03-01", Kind: entity.MovementIn, Count: 1, TotalQuantity: 1},
		}, days)

		limited, err := reportRepo.MovementsByDay(ctx, "1", time.UTC, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 2, "solo el día más reciente")

		bogota := time.FixedZone("COT", -5*3600)
		shifted, err := reportRepo.MovementsByDay(ctx, "1", bogota, 30)
		require.NoError(t, err)
		assert.Equal(t, []repository.MovementDayResult{
			{Day: "2026-03-02", Kind: entity.MovementOut, Count: 1, TotalQuantity: 3},
			{Day: "2026-03-01", Kind: entity.MovementIn, Count: 2, TotalQuantity: 3},
		}, shifted, "el día se calcula en la zona de reporte")
		return nil
	})
	require.NoError(t, err)
}

func TestTenantIsolation(t *testing.T) {
	db := openTestDB(t)
	runner := NewTxRunner(db)
	ctx := context.Background()
	for _, tenant := range []string{"1", "10"} {
		provision(t, db, tenant, entity.ProductFieldSet)
		for i := 0; i < 3; i++ {
			createProduct(t, runner, &entity.Product{TenantID: tenant, Code: fmt.Sprintf("P%d", i), Name: tenant})
		}
	}
	err := runner.View(ctx, "1", func(productRepo repository.ProductRepository, _ repository.MovementRepository, _ repository.ReportRepository) error {
		list, err := productRepo.List(ctx, "1")
		require.NoError(t, err)
		assert.Len(t, list, 3, "el prefijo t/1/ no debe incluir datos de t/10/")
		for _, p := range list {
			assert.Equal(t, "1", p.Name)
		}
		return nil
	})
	require.NoError(t, err)
}
