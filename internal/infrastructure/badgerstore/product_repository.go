package badgerstore

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ProductRepository implementa repository.ProductRepository sobre una transacción de Badger.
type ProductRepository struct {
	txn *badger.Txn
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	ck := codeKey(p.TenantID, p.Code)
	if _, err := r.txn.Get(ck); err == nil {
		return domain.ErrDuplicateCode
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return storageErr("products.Create", err)
	}
	id, err := nextSeq(r.txn, p.TenantID, productSeqKey(p.TenantID))
	if err != nil {
		return storageErr("products.Create", err)
	}
	p.ID = id
	if err := setJSON(r.txn, productKey(p.TenantID, id), toProductRecord(p)); err != nil {
		return storageErr("products.Create", err)
	}
	if err := r.txn.Set(ck, []byte(strconv.FormatInt(id, 10))); err != nil {
		return storageErr("products.Create", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	var rec productRecord
	found, err := getJSON(r.txn, productKey(tenantID, id), &rec)
	if err != nil {
		return nil, storageErr("products.GetByID", err)
	}
	if !found {
		return nil, nil
	}
	return rec.toEntity(tenantID), nil
}

func (r *ProductRepository) GetByCode(ctx context.Context, tenantID, code string) (*entity.Product, error) {
	item, err := r.txn.Get(codeKey(tenantID, code))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("products.GetByCode", err)
	}
	var id int64
	err = item.Value(func(val []byte) error {
		var perr error
		id, perr = strconv.ParseInt(string(val), 10, 64)
		return perr
	})
	if err != nil {
		return nil, storageErr("products.GetByCode", err)
	}
	return r.GetByID(ctx, tenantID, id)
}

// GetForUpdate la lectura queda registrada en la transacción; un escritor concurrente
// sobre la misma clave provoca badger.ErrConflict en el Commit.
func (r *ProductRepository) GetForUpdate(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	var stored productRecord
	found, err := getJSON(r.txn, productKey(p.TenantID, p.ID), &stored)
	if err != nil {
		return storageErr("products.Update", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	if stored.Code != p.Code {
		newKey := codeKey(p.TenantID, p.Code)
		if _, err := r.txn.Get(newKey); err == nil {
			return domain.ErrDuplicateCode
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return storageErr("products.Update", err)
		}
		if err := r.txn.Delete(codeKey(p.TenantID, stored.Code)); err != nil {
			return storageErr("products.Update", err)
		}
		if err := r.txn.Set(newKey, []byte(strconv.FormatInt(p.ID, 10))); err != nil {
			return storageErr("products.Update", err)
		}
	}
	rec := toProductRecord(p)
	rec.CurrentStock = stored.CurrentStock
	rec.InitialStock = stored.InitialStock
	rec.CreatedAt = stored.CreatedAt
	if err := setJSON(r.txn, productKey(p.TenantID, p.ID), rec); err != nil {
		return storageErr("products.Update", err)
	}
	return nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, tenantID string, id int64, stock int64) error {
	var rec productRecord
	found, err := getJSON(r.txn, productKey(tenantID, id), &rec)
	if err != nil {
		return storageErr("products.UpdateStock", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	rec.CurrentStock = stock
	if err := setJSON(r.txn, productKey(tenantID, id), rec); err != nil {
		return storageErr("products.UpdateStock", err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	var rec productRecord
	found, err := getJSON(r.txn, productKey(tenantID, id), &rec)
	if err != nil {
		return storageErr("products.Delete", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	if err := r.txn.Delete(codeKey(tenantID, rec.Code)); err != nil {
		return storageErr("products.Delete", err)
	}
	if err := r.txn.Delete(productKey(tenantID, id)); err != nil {
		return storageErr("products.Delete", err)
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	list, err := loadProducts(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("products.List", err)
	}
	sortByName(list)
	return list, nil
}

// Search coincidencia por subcadena en minúsculas Unicode (x/text/cases), igual que lower() en
// PostgreSQL: "ß" y "ss" no se consideran equivalentes.
func (r *ProductRepository) Search(ctx context.Context, tenantID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	all, err := loadProducts(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("products.Search", err)
	}
	lower := cases.Lower(language.Und)
	q := lower.String(filter.Query)
	out := make([]*entity.Product, 0, len(all))
	for _, p := range all {
		if filter.Location != "" && p.Location != filter.Location {
			continue
		}
		if q != "" &&
			!strings.Contains(lower.String(p.Code), q) &&
			!strings.Contains(lower.String(p.Name), q) &&
			!strings.Contains(lower.String(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	sortByName(out)
	return out, nil
}

func (r *ProductRepository) ListLocations(ctx context.Context, tenantID string) ([]string, error) {
	all, err := loadProducts(r.txn, tenantID)
	if err != nil {
		return nil, storageErr("products.ListLocations", err)
	}
	var locations []string
	for _, p := range all {
		if p.Location != "" {
			locations = append(locations, p.Location)
		}
	}
	slices.Sort(locations)
	return slices.Compact(locations), nil
}

func loadProducts(txn *badger.Txn, tenantID string) ([]*entity.Product, error) {
	var list []*entity.Product
	err := eachJSON(txn, productPrefix(tenantID), func(val []byte) error {
		var rec productRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		list = append(list, rec.toEntity(tenantID))
		return nil
	})
	return list, err
}

// sortByName orden del catálogo: nombre (byte a byte) y luego ID.
func sortByName(list []*entity.Product) {
	slices.SortFunc(list, func(a, b *entity.Product) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}
