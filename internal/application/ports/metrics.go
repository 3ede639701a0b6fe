package ports

// Metrics puerto de instrumentación del motor. Las implementaciones no deben bloquear.
type Metrics interface {
	MovementRecorded(kind string, quantity int64)
	MovementRejected(reason string)
	CatalogMutation(op string)
	TenantProvisioned()
}

// NopMetrics descarta todas las mediciones.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(string, int64) {}
func (NopMetrics) MovementRejected(string)        {}
func (NopMetrics) CatalogMutation(string)         {}
func (NopMetrics) TenantProvisioned()             {}
