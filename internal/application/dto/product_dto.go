package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. CurrentStock es el stock inicial declarado.
type CreateProductRequest struct {
	Code            string          `json:"code" validate:"required,max=100"`
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=2000"`
	Location        string          `json:"location" validate:"max=200"`
	Model           string          `json:"model" validate:"max=200"`
	Brand           string          `json:"brand" validate:"max=200"`
	Condition       string          `json:"condition" validate:"max=100"`
	AcquisitionYear *int            `json:"acquisition_year" validate:"omitempty,min=1900,max=2200"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	CurrentStock    int64           `json:"current_stock" validate:"min=0"`
	MinimumStock    int64           `json:"minimum_stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto. El stock no se edita aquí (solo vía movimientos).
type UpdateProductRequest struct {
	Code                 *string          `json:"code" validate:"omitempty,min=1,max=100"`
	Name                 *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description          *string          `json:"description" validate:"omitempty,max=2000"`
	Location             *string          `json:"location" validate:"omitempty,max=200"`
	Model                *string          `json:"model" validate:"omitempty,max=200"`
	Brand                *string          `json:"brand" validate:"omitempty,max=200"`
	Condition            *string          `json:"condition" validate:"omitempty,max=100"`
	AcquisitionYear      *int             `json:"acquisition_year" validate:"omitempty,min=1900,max=2200"`
	ClearAcquisitionYear bool             `json:"clear_acquisition_year"`
	PurchasePrice        *decimal.Decimal `json:"purchase_price"`
	MinimumStock         *int64           `json:"minimum_stock" validate:"omitempty,min=0"`
}

// SearchProductsRequest criterios de consulta del catálogo.
type SearchProductsRequest struct {
	Query    string `json:"q"`
	Location string `json:"location"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Location        string          `json:"location"`
	Model           string          `json:"model"`
	Brand           string          `json:"brand"`
	Condition       string          `json:"condition"`
	AcquisitionYear *int            `json:"acquisition_year"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	CurrentStock    int64           `json:"current_stock"`
	MinimumStock    int64           `json:"minimum_stock"`
	InitialStock    int64           `json:"initial_stock"`
	StockValue      decimal.Decimal `json:"stock_value"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToProductResponse mapea la entidad a la respuesta.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
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
		StockValue:      p.StockValue().Round(2),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProductResponses mapea una lista; nunca devuelve nil.
func ToProductResponses(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToProductResponse(p))
	}
	return out
}
