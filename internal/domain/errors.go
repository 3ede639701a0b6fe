package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicateCode      = errors.New("el código ya existe para este inventario")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")

	// ErrTenantNotProvisioned se reporta como ErrNotFound: el área del tenant no existe.
	ErrTenantNotProvisioned = fmt.Errorf("%w: almacenamiento del tenant no aprovisionado", ErrNotFound)
	// ErrInvalidQuantity cantidad no positiva en un movimiento.
	ErrInvalidQuantity = fmt.Errorf("%w: la cantidad debe ser mayor a 0", ErrInvalidInput)
)

// StorageError envuelve un fallo del proveedor de almacenamiento (conexión, transacción, consulta).
// errors.Is(err, ErrStorageUnavailable) es verdadero para cualquier *StorageError.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError construye el error; si err ya es un error de dominio se devuelve tal cual.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStorageUnavailable.Error(), e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorageUnavailable).
func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// IsDomainError indica si err ya es un error tipado del motor.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrStorageUnavailable)
}
