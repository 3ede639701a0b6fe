package badgerstore

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TenantRepository metadatos de tenant en Badger. Cada operación abre su propia transacción.
type TenantRepository struct {
	db *badger.DB
}

var _ repository.TenantRepository = (*TenantRepository)(nil)

// NewTenantRepository construye el repositorio.
func NewTenantRepository(db *badger.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Get(ctx context.Context, tenantID string) (*entity.TenantStorage, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("tenants.Get", err)
	}
	var out *entity.TenantStorage
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = readTenant(txn, tenantID)
		return err
	})
	if err != nil {
		return nil, storageErr("tenants.Get", err)
	}
	return out, nil
}

// CreateIfAbsent si otro escritor crea el mismo tenant a la vez, el perdedor recibe ErrConflict
// y se resuelve releyendo: el área ya existe y created es false.
func (r *TenantRepository) CreateIfAbsent(ctx context.Context, storage *entity.TenantStorage) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storageErr("tenants.CreateIfAbsent", err)
	}
	created := false
	err := r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(metaKey(storage.TenantID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		created = true
		return setJSON(txn, metaKey(storage.TenantID), tenantRecord{
			Fields:    storage.Fields,
			CreatedAt: storage.CreatedAt,
			UpdatedAt: storage.UpdatedAt,
		})
	})
	if errors.Is(err, badger.ErrConflict) {
		existing, gerr := r.Get(ctx, storage.TenantID)
		if gerr == nil && existing != nil {
			return false, nil
		}
	}
	if err != nil {
		return false, storageErr("tenants.CreateIfAbsent", err)
	}
	return created, nil
}

func (r *TenantRepository) AddFields(ctx context.Context, tenantID string, fields []string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("tenants.AddFields", err)
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		var rec tenantRecord
		found, err := getJSON(txn, metaKey(tenantID), &rec)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrTenantNotProvisioned
		}
		changed := false
		for _, f := range fields {
			if !slices.Contains(rec.Fields, f) {
				rec.Fields = append(rec.Fields, f)
				changed = true
			}
		}
		if !changed {
			return nil
		}
		rec.UpdatedAt = now()
		return setJSON(txn, metaKey(tenantID), rec)
	})
	return storageErr("tenants.AddFields", err)
}

func (r *TenantRepository) ListTenantIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("tenants.ListTenantIDs", err)
	}
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		for _, k := range keysWithPrefix(txn, []byte(tenantRoot)) {
			if id, ok := tenantFromMetaKey(k); ok {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("tenants.ListTenantIDs", err)
	}
	slices.Sort(ids)
	return ids, nil
}

func readTenant(txn *badger.Txn, tenantID string) (*entity.TenantStorage, error) {
	var rec tenantRecord
	found, err := getJSON(txn, metaKey(tenantID), &rec)
	if err != nil || !found {
		return nil, err
	}
	productSeq, err := readSeq(txn, productSeqKey(tenantID))
	if err != nil {
		return nil, err
	}
	movementSeq, err := readSeq(txn, movementSeqKey(tenantID))
	if err != nil {
		return nil, err
	}
	return &entity.TenantStorage{
		TenantID:    tenantID,
		Fields:      rec.Fields,
		ProductSeq:  productSeq,
		MovementSeq: movementSeq,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}
