package badgerstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// MovementRepository implementa repository.MovementRepository sobre una transacción de Badger.
type MovementRepository struct {
	txn *badger.Txn
}

var _ repository.MovementRepository = (*MovementRepository)(nil)

func (r *MovementRepository) Create(ctx context.Context, m *entity.Movement) error {
	if m.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	id, err := nextSeq(r.txn, m.TenantID, movementSeqKey(m.TenantID))
	if err != nil {
		return storageErr("movements.Create", err)
	}
	m.ID = id
	if err := setJSON(r.txn, movementKey(m.TenantID, id), toMovementRecord(m)); err != nil {
		return storageErr("movements.Create", err)
	}
	if err := r.txn.Set(productMovementKey(m.TenantID, m.ProductID, id), nil); err != nil {
		return storageErr("movements.Create", err)
	}
	return nil
}

func (r *MovementRepository) List(ctx context.Context, tenantID string) ([]*entity.MovementView, error) {
	movements, err := loadMovements(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("movements.List", err)
	}
	products := make(map[int64]*productRecord)
	out := make([]*entity.MovementView, 0, len(movements))
	for _, m := range movements {
		p, ok := products[m.ProductID]
		if !ok {
			var rec productRecord
			found, err := getJSON(r.txn, productKey(tenantID, m.ProductID), &rec)
			if err != nil {
				return nil, storageErr("movements.List", err)
			}
			if found {
				p = &rec
			}
			products[m.ProductID] = p
		}
		view := &entity.MovementView{Movement: *m}
		if p != nil {
			view.ProductCode = p.Code
			view.ProductName = p.Name
		}
		out = append(out, view)
	}
	return out, nil
}

func (r *MovementRepository) ListByProduct(ctx context.Context, tenantID string, productID int64) ([]*entity.Movement, error) {
	keys := keysWithPrefix(r.txn, productMovementsPrefix(tenantID, productID))
	out := make([]*entity.Movement, 0, len(keys))
	for _, k := range keys {
		id, err := movementIDFromIndexKey(k)
		if err != nil {
			return nil, storageErr("movements.ListByProduct", err)
		}
		var rec movementRecord
		found, err := getJSON(r.txn, movementKey(tenantID, id), &rec)
		if err != nil {
			return nil, storageErr("movements.ListByProduct", err)
		}
		if found {
			out = append(out, rec.toEntity(tenantID))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MovementRepository) SumByProduct(ctx context.Context, tenantID string, productID int64) (repository.MovementTotals, error) {
	list, err := r.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return repository.MovementTotals{}, err
	}
	var totals repository.MovementTotals
	for _, m := range list {
		switch m.Kind {
		case entity.MovementIn:
			totals.Inflow += m.Quantity
		case entity.MovementOut:
			totals.Outflow += m.Quantity
		}
		totals.Count++
	}
	return totals, nil
}

func (r *MovementRepository) DeleteByProduct(ctx context.Context, tenantID string, productID int64) (int64, error) {
	keys := keysWithPrefix(r.txn, productMovementsPrefix(tenantID, productID))
	var n int64
	for _, k := range keys {
		id, err := movementIDFromIndexKey(k)
		if err != nil {
			return n, storageErr("movements.DeleteByProduct", err)
		}
		if err := r.txn.Delete(movementKey(tenantID, id)); err != nil {
			return n, storageErr("movements.DeleteByProduct", err)
		}
		if err := r.txn.Delete(k); err != nil {
			return n, storageErr("movements.DeleteByProduct", err)
		}
		n++
	}
	return n, nil
}

// loadMovements todos los movimientos del tenant, más recientes primero.
func loadMovements(txn *badger.Txn, tenantID string) ([]*entity.Movement, error) {
	var list []*entity.Movement
	err := eachJSON(txn, movementPrefix(tenantID), func(val []byte) error {
		var rec movementRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		list = append(list, rec.toEntity(tenantID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

// sortNewestFirst recorded_at descendente, empates por ID descendente.
func sortNewestFirst(list []*entity.Movement) {
	slices.SortFunc(list, func(a, b *entity.Movement) int {
		return cmp.Or(b.RecordedAt.Compare(a.RecordedAt), cmp.Compare(b.ID, a.ID))
	})
}

// movementIDFromIndexKey último segmento de t/<tenant>/pm/<product>/<movement>.
func movementIDFromIndexKey(key []byte) (int64, error) {
	const width = 20
	if len(key) < width {
		return 0, errMalformedKey
	}
	return parseID(key[len(key)-width:])
}
