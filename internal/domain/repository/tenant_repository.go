package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// TenantRepository puerto para el área de almacenamiento de cada tenant.
type TenantRepository interface {
	// Get devuelve (nil, nil) si el tenant no está aprovisionado.
	Get(ctx context.Context, tenantID string) (*entity.TenantStorage, error)
	// CreateIfAbsent crea el área si no existe; created indica si se creó en esta llamada.
	CreateIfAbsent(ctx context.Context, storage *entity.TenantStorage) (created bool, err error)
	// AddFields agrega campos al esquema registrado del tenant sin tocar los registros existentes.
	AddFields(ctx context.Context, tenantID string, fields []string) error
	ListTenantIDs(ctx context.Context) ([]string, error)
}
