// Package badgerstore implementa el almacenamiento del motor sobre BadgerDB embebido.
//
// Un único keyspace particionado por tenant; toda clave de un tenant empieza por t/<tenant>/:
//
//	t/<tenant>/meta                     esquema registrado (entity.TenantStorage sin secuencias)
//	t/<tenant>/seq/p, t/<tenant>/seq/m  últimos IDs de producto y movimiento
//	t/<tenant>/p/<id>                   producto
//	t/<tenant>/c/<code>                 índice único de código -> ID de producto
//	t/<tenant>/m/<id>                   movimiento
//	t/<tenant>/pm/<product>/<movement>  índice de movimientos por producto
//
// Los IDs van con ceros a la izquierda para que el orden de claves sea el orden numérico.
package badgerstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Options apertura de la base.
type Options struct {
	Dir      string
	InMemory bool
}

// Open abre BadgerDB en Dir o en memoria. El llamador cierra la base.
func Open(opts Options) (*badger.DB, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, fmt.Errorf("badgerstore: directorio vacío")
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts.Logger = nil
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, domain.NewStorageError("badgerstore.Open", err)
	}
	return db, nil
}

// ── Claves ────────────────────────────────────────────────────────────────────

const tenantRoot = "t/"

func tenantPrefix(tenantID string) string { return tenantRoot + tenantID + "/" }

func metaKey(tenantID string) []byte       { return []byte(tenantPrefix(tenantID) + "meta") }
func productSeqKey(tenantID string) []byte { return []byte(tenantPrefix(tenantID) + "seq/p") }
func movementSeqKey(tenantID string) []byte {
	return []byte(tenantPrefix(tenantID) + "seq/m")
}

func productPrefix(tenantID string) []byte { return []byte(tenantPrefix(tenantID) + "p/") }
func productKey(tenantID string, id int64) []byte {
	return []byte(tenantPrefix(tenantID) + "p/" + formatID(id))
}

func codeKey(tenantID, code string) []byte { return []byte(tenantPrefix(tenantID) + "c/" + code) }

func movementPrefix(tenantID string) []byte { return []byte(tenantPrefix(tenantID) + "m/") }
func movementKey(tenantID string, id int64) []byte {
	return []byte(tenantPrefix(tenantID) + "m/" + formatID(id))
}

func productMovementsPrefix(tenantID string, productID int64) []byte {
	return []byte(tenantPrefix(tenantID) + "pm/" + formatID(productID) + "/")
}
func productMovementKey(tenantID string, productID, movementID int64) []byte {
	return []byte(tenantPrefix(tenantID) + "pm/" + formatID(productID) + "/" + formatID(movementID))
}

func formatID(id int64) string { return fmt.Sprintf("%020d", id) }

// tenantFromMetaKey extrae el tenant de una clave t/<tenant>/meta.
func tenantFromMetaKey(key []byte) (string, bool) {
	s := string(key)
	if !strings.HasPrefix(s, tenantRoot) || !strings.HasSuffix(s, "/meta") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(s, tenantRoot), "/meta")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// ── Codificación ──────────────────────────────────────────────────────────────

// getJSON decodifica el valor de key en dst; found=false si la clave no existe.
func getJSON(txn *badger.Txn, key []byte, dst any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// readSeq devuelve el último ID asignado (0 si nunca se asignó).
func readSeq(txn *badger.Txn, key []byte) (int64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int64
	err = item.Value(func(val []byte) error {
		var perr error
		n, perr = strconv.ParseInt(string(val), 10, 64)
		return perr
	})
	return n, err
}

// nextSeq incrementa la secuencia del tenant. Falla con ErrTenantNotProvisioned si el área no existe.
func nextSeq(txn *badger.Txn, tenantID string, key []byte) (int64, error) {
	if _, err := txn.Get(metaKey(tenantID)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, domain.ErrTenantNotProvisioned
		}
		return 0, err
	}
	last, err := readSeq(txn, key)
	if err != nil {
		return 0, err
	}
	next := last + 1
	if err := txn.Set(key, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	return next, nil
}

// keysWithPrefix recoge las claves con el prefijo. Cierra el iterador antes de volver:
// una transacción de escritura admite un solo iterador activo.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// eachJSON decodifica cada valor bajo el prefijo con decode.
func eachJSON(txn *badger.Txn, prefix []byte, decode func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}

func storageErr(op string, err error) error {
	return domain.NewStorageError("badgerstore."+op, err)
}

var errMalformedKey = errors.New("clave mal formada")

func parseID(b []byte) (int64, error) {
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errMalformedKey, b)
	}
	return id, nil
}

// now marca de tiempo de los cambios de metadatos.
var now = func() time.Time { return time.Now().UTC() }
