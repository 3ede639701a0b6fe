// Package metrics implementa ports.Metrics con Prometheus.
//
// Métricas:
//   - ledger_movements_total{kind}: movimientos confirmados por tipo
//   - ledger_movement_units_total{kind}: unidades movidas por tipo
//   - ledger_movements_rejected_total{reason}: movimientos rechazados (stock insuficiente, entrada inválida...)
//   - ledger_catalog_mutations_total{op}: altas, cambios y bajas del catálogo
//   - ledger_tenants_provisioned_total: áreas de tenant creadas por este proceso
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
)

const namespace = "ledger"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus contadores del motor registrados en un Registerer propio.
type Prometheus struct {
	movements     *prometheus.CounterVec
	movementUnits *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	catalog       *prometheus.CounterVec
	provisioned   prometheus.Counter
}

// New registra los contadores en reg. Con nil se usa prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Prometheus{
		movements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Total de movimientos de inventario confirmados",
		}, []string{"kind"}),
		movementUnits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_units_total",
			Help:      "Total de unidades movidas",
		}, []string{"kind"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_rejected_total",
			Help:      "Total de movimientos rechazados por motivo",
		}, []string{"reason"}),
		catalog: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_mutations_total",
			Help:      "Total de altas, cambios y bajas de productos",
		}, []string{"op"}),
		provisioned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenants_provisioned_total",
			Help:      "Total de áreas de tenant creadas",
		}),
	}
}

func (m *Prometheus) MovementRecorded(kind string, quantity int64) {
	m.movements.WithLabelValues(kind).Inc()
	m.movementUnits.WithLabelValues(kind).Add(float64(quantity))
}

func (m *Prometheus) MovementRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Prometheus) CatalogMutation(op string) {
	m.catalog.WithLabelValues(op).Inc()
}

func (m *Prometheus) TenantProvisioned() {
	m.provisioned.Inc()
}

// WriteTextfile vuelca las métricas de g en path con el formato del textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
