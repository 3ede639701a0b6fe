// Package tenant aprovisiona y migra el área de almacenamiento de cada tenant y serializa
// sus escritores dentro del proceso.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const maxTenantIDLen = 64

// Migration resultado de migrar un tenant.
type Migration struct {
	TenantID string   `json:"tenant_id"`
	Added    []string `json:"added"`
	Error    string   `json:"error,omitempty"`
}

// MigrationReport resultado de MigrateAll.
type MigrationReport struct {
	Tenants  []Migration `json:"tenants"`
	Migrated int         `json:"migrated"` // tenants con al menos un campo agregado
	Failed   int         `json:"failed"`
}

// Provisioner garantiza que el área de un tenant exista y tenga el conjunto de campos actual
// antes de que cualquier otro componente la use.
type Provisioner struct {
	repo    repository.TenantRepository
	clock   ports.Clock
	metrics ports.Metrics

	ready sync.Map // tenantID -> struct{}: ya aprovisionado y migrado en este proceso
}

// NewProvisioner construye el aprovisionador.
func NewProvisioner(repo repository.TenantRepository, clock ports.Clock, metrics ports.Metrics) *Provisioner {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Provisioner{repo: repo, clock: clock, metrics: metrics}
}

// ValidateTenantID rechaza identificadores vacíos, demasiado largos o con caracteres de control.
func ValidateTenantID(tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenant vacío", domain.ErrInvalidInput)
	}
	if len(tenantID) > maxTenantIDLen {
		return fmt.Errorf("%w: tenant de más de %d bytes", domain.ErrInvalidInput, maxTenantIDLen)
	}
	for _, r := range tenantID {
		if unicode.IsControl(r) || r == '/' {
			return fmt.Errorf("%w: tenant con caracteres no permitidos", domain.ErrInvalidInput)
		}
	}
	return nil
}

// EnsureTenantStorage crea el área vacía del tenant si no existe. Idempotente; nunca borra datos.
func (p *Provisioner) EnsureTenantStorage(ctx context.Context, tenantID string) (bool, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return false, err
	}
	now := p.clock.Now()
	created, err := p.repo.CreateIfAbsent(ctx, &entity.TenantStorage{
		TenantID:  tenantID,
		Fields:    slices.Clone(entity.ProductFieldSet),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return false, err
	}
	if created {
		p.metrics.TenantProvisioned()
	}
	return created, nil
}

// MigrateTenantStorage agrega al esquema del tenant los campos opcionales que falten.
// Nunca elimina ni renombra campos ni reescribe registros: los productos existentes leen
// el valor cero del campo nuevo. Devuelve los campos agregados.
func (p *Provisioner) MigrateTenantStorage(ctx context.Context, tenantID string) ([]string, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	storage, err := p.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, fmt.Errorf("migrar %q: %w", tenantID, domain.ErrTenantNotProvisioned)
	}
	missing := storage.MissingFields()
	if len(missing) == 0 {
		return nil, nil
	}
	if err := p.repo.AddFields(ctx, tenantID, missing); err != nil {
		return nil, err
	}
	return missing, nil
}

// Ensure aprovisiona y migra el tenant la primera vez que se usa en este proceso.
func (p *Provisioner) Ensure(ctx context.Context, tenantID string) error {
	if _, ok := p.ready.Load(tenantID); ok {
		return nil
	}
	if _, err := p.EnsureTenantStorage(ctx, tenantID); err != nil {
		return err
	}
	if _, err := p.MigrateTenantStorage(ctx, tenantID); err != nil {
		return err
	}
	p.ready.Store(tenantID, struct{}{})
	return nil
}

// Verify devuelve el esquema almacenado del tenant.
func (p *Provisioner) Verify(ctx context.Context, tenantID string) (*entity.TenantStorage, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	storage, err := p.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, domain.ErrTenantNotProvisioned
	}
	return storage, nil
}

// MigrateAll migra todos los tenants aprovisionados. Un fallo en un tenant no detiene a los demás;
// todos los fallos se devuelven unidos y también quedan en el reporte.
func (p *Provisioner) MigrateAll(ctx context.Context) (*MigrationReport, error) {
	ids, err := p.repo.ListTenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	report := &MigrationReport{Tenants: make([]Migration, 0, len(ids))}
	var errs []error
	for _, id := range ids {
		m := Migration{TenantID: id}
		added, err := p.MigrateTenantStorage(ctx, id)
		switch {
		case err != nil:
			m.Error = err.Error()
			report.Failed++
			errs = append(errs, fmt.Errorf("tenant %s: %w", id, err))
		case len(added) > 0:
			m.Added = added
			report.Migrated++
		}
		report.Tenants = append(report.Tenants, m)
	}
	return report, errors.Join(errs...)
}
