package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 30, cfg.Report.LowStockThreshold)
	assert.Equal(t, 30, cfg.Report.MovementReportDays)
	assert.Equal(t, "Local", cfg.Report.Timezone)
	assert.False(t, cfg.Badger.InMemory)
	assert.Equal(t, "postgres://postgres:@localhost:5432/inventario?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "Badger")
	v.Set("BADGER_IN_MEMORY", "true")
	v.Set("LOW_STOCK_THRESHOLD", "10")
	v.Set("REPORT_TIMEZONE", "UTC")
	v.Set("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, DriverBadger, cfg.Storage.Driver)
	assert.True(t, cfg.Badger.InMemory)
	assert.Equal(t, 10, cfg.Report.LowStockThreshold)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString(), "DATABASE_URL tiene prioridad")

	loc, err := cfg.Report.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver desconocido", "STORAGE_DRIVER", "sqlite"},
		{"zona horaria inexistente", "REPORT_TIMEZONE", "Marte/Olympus"},
		{"umbral negativo", "LOW_STOCK_THRESHOLD", "-1"},
		{"umbral cero", "LOW_STOCK_THRESHOLD", "0"},
		{"días de reporte en cero", "MOVEMENT_REPORT_DAYS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss:w/rd", DBName: "d", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss%3Aw%2Frd@h:5432/d?sslmode=require", c.DSN())
}
