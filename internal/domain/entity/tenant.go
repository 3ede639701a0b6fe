package entity

import (
	"slices"
	"time"
)

// Campos del producto. Los primeros forman el esquema inicial; el resto se agregó después
// y las migraciones los añaden a tenants antiguos con su valor cero como default.
const (
	FieldCode            = "code"
	FieldName            = "name"
	FieldDescription     = "description"
	FieldPurchasePrice   = "purchase_price"
	FieldCurrentStock    = "current_stock"
	FieldMinimumStock    = "minimum_stock"
	FieldCreatedAt       = "created_at"
	FieldLocation        = "location"
	FieldModel           = "model"
	FieldBrand           = "brand"
	FieldCondition       = "condition"
	FieldAcquisitionYear = "acquisition_year"
	FieldInitialStock    = "initial_stock"
)

// LegacyProductFieldSet esquema de la primera versión (tablas por usuario sin ubicación ni marca).
var LegacyProductFieldSet = []string{
	FieldCode, FieldName, FieldDescription, FieldPurchasePrice,
	FieldCurrentStock, FieldMinimumStock, FieldCreatedAt,
}

// ProductFieldSet conjunto de campos esperado actualmente, en orden de aparición.
var ProductFieldSet = append(slices.Clone(LegacyProductFieldSet),
	FieldLocation, FieldModel, FieldBrand, FieldCondition, FieldAcquisitionYear, FieldInitialStock,
)

// TenantStorage metadatos del área de catálogo y libro de un tenant.
type TenantStorage struct {
	TenantID    string
	Fields      []string
	ProductSeq  int64 // último ID de producto asignado
	MovementSeq int64 // último ID de movimiento asignado
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MissingFields devuelve los campos de ProductFieldSet ausentes en el esquema almacenado.
func (t *TenantStorage) MissingFields() []string {
	var missing []string
	for _, f := range ProductFieldSet {
		if !slices.Contains(t.Fields, f) {
			missing = append(missing, f)
		}
	}
	return missing
}
