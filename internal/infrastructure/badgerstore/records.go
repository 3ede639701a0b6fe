package badgerstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Registros persistidos. Un campo ausente en un registro antiguo se decodifica con su valor cero.

type tenantRecord struct {
	Fields    []string  `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type productRecord struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Location        string          `json:"location,omitempty"`
	Model           string          `json:"model,omitempty"`
	Brand           string          `json:"brand,omitempty"`
	Condition       string          `json:"condition,omitempty"`
	AcquisitionYear *int            `json:"acquisition_year,omitempty"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	CurrentStock    int64           `json:"current_stock"`
	MinimumStock    int64           `json:"minimum_stock"`
	InitialStock    int64           `json:"initial_stock,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type movementRecord struct {
	ID         int64               `json:"id"`
	ProductID  int64               `json:"product_id"`
	Kind       entity.MovementKind `json:"kind"`
	Quantity   int64               `json:"quantity"`
	Reason     string              `json:"reason"`
	RecordedAt time.Time           `json:"recorded_at"`
}

func toProductRecord(p *entity.Product) productRecord {
	return productRecord{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Description:     p.Description,
		Location:        p.Location,
		Model:           p.Model,
		Brand:           p.Brand,
		Condition:       p.Condition,
		AcquisitionYear: p.AcquisitionYear,
		PurchasePrice:   p.PurchasePrice,
		CurrentStock:    p.CurrentStock,
		MinimumStock:    p.MinimumStock,
		InitialStock:    p.InitialStock,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r productRecord) toEntity(tenantID string) *entity.Product {
	return &entity.Product{
		TenantID:        tenantID,
		ID:              r.ID,
		Code:            r.Code,
		Name:            r.Name,
		Description:     r.Description,
		Location:        r.Location,
		Model:           r.Model,
		Brand:           r.Brand,
		Condition:       r.Condition,
		AcquisitionYear: r.AcquisitionYear,
		PurchasePrice:   r.PurchasePrice,
		CurrentStock:    r.CurrentStock,
		MinimumStock:    r.MinimumStock,
		InitialStock:    r.InitialStock,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toMovementRecord(m *entity.Movement) movementRecord {
	return movementRecord{
		ID:         m.ID,
		ProductID:  m.ProductID,
		Kind:       m.Kind,
		Quantity:   m.Quantity,
		Reason:     m.Reason,
		RecordedAt: m.RecordedAt,
	}
}

func (r movementRecord) toEntity(tenantID string) *entity.Movement {
	return &entity.Movement{
		TenantID:   tenantID,
		ID:         r.ID,
		ProductID:  r.ProductID,
		Kind:       r.Kind,
		Quantity:   r.Quantity,
		Reason:     r.Reason,
		RecordedAt: r.RecordedAt,
	}
}
