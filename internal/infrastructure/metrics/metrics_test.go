package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MovementRecorded("IN", 5)
	m.MovementRecorded("IN", 2)
	m.MovementRecorded("OUT", 1)
	m.MovementRejected("insufficient_stock")
	m.CatalogMutation("create")
	m.TenantProvisioned()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("IN")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.movementUnits.WithLabelValues("IN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("OUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalog.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.provisioned))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, n, "series: 2 movements + 2 units + rejected + catalog + provisioned")
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	}, "cada registro admite su propio juego de contadores")
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CatalogMutation("delete")

	path := filepath.Join(t.TempDir(), "ledger.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ledger_catalog_mutations_total{op="delete"} 1`)
}
