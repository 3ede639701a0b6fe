package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RecordMovementRequest entrada del coordinador de stock para registrar una entrada o salida.
type RecordMovementRequest struct {
	TenantID  string              `json:"-"`
	ProductID int64               `json:"product_id" validate:"required,gt=0"`
	Kind      entity.MovementKind `json:"kind" validate:"required,oneof=IN OUT"`
	Quantity  int64               `json:"quantity"`
	Reason    string              `json:"reason" validate:"max=500"`
}

// ReconcileResult compara el stock guardado con el reconstruido desde el libro.
type ReconcileResult struct {
	ProductID     int64  `json:"product_id"`
	Code          string `json:"code"`
	InitialStock  int64  `json:"initial_stock"`
	Inflow        int64  `json:"inflow"`
	Outflow       int64  `json:"outflow"`
	Movements     int64  `json:"movements"`
	ExpectedStock int64  `json:"expected_stock"`
	CurrentStock  int64  `json:"current_stock"`
	Consistent    bool   `json:"consistent"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductCode string    `json:"product_code,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Kind        string    `json:"kind"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ToMovementResponses mapea la vista del libro; nunca devuelve nil.
func ToMovementResponses(list []*entity.MovementView) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			ProductCode: m.ProductCode,
			ProductName: m.ProductName,
			Kind:        string(m.Kind),
			Quantity:    m.Quantity,
			Reason:      m.Reason,
			RecordedAt:  m.RecordedAt,
		})
	}
	return out
}

// TenantStorageResponse layout almacenado de un tenant.
type TenantStorageResponse struct {
	TenantID    string    `json:"tenant_id"`
	Fields      []string  `json:"fields"`
	Missing     []string  `json:"missing_fields"`
	ProductSeq  int64     `json:"product_seq"`
	MovementSeq int64     `json:"movement_seq"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToTenantStorageResponse mapea los metadatos del tenant.
func ToTenantStorageResponse(t *entity.TenantStorage) TenantStorageResponse {
	missing := t.MissingFields()
	if missing == nil {
		missing = []string{}
	}
	return TenantStorageResponse{
		TenantID:    t.TenantID,
		Fields:      t.Fields,
		Missing:     missing,
		ProductSeq:  t.ProductSeq,
		MovementSeq: t.MovementSeq,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
