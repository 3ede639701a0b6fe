package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/badgerstore"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// openEngine abre el backend configurado y arma el servicio. close libera el almacenamiento.
func openEngine(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*ledger.Service, func(), error) {
	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, nil, err
	}
	deps := ledger.Deps{
		Clock:   ports.SystemClock{Loc: loc},
		Metrics: metrics.New(reg),
		Logger:  log,
		Reports: analytics.Options{
			LowStockThreshold:  int64(cfg.Report.LowStockThreshold),
			MovementReportDays: cfg.Report.MovementReportDays,
		},
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Debug().Str("dsn", postgres.DescribeDSN(cfg.DB)).Msg("conectado a PostgreSQL")
		deps.TxRunner = postgres.NewTxRunner(pool)
		deps.TenantRepo = postgres.NewTenantRepository(pool)
		return ledger.NewService(deps), pool.Close, nil

	case config.DriverBadger:
		db, err := badgerstore.Open(badgerstore.Options{Dir: cfg.Badger.Dir, InMemory: cfg.Badger.InMemory})
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("dir", cfg.Badger.Dir).Bool("in_memory", cfg.Badger.InMemory).Msg("BadgerDB abierto")
		deps.TxRunner = badgerstore.NewTxRunner(db)
		deps.TenantRepo = badgerstore.NewTenantRepository(db)
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar BadgerDB")
			}
		}
		return ledger.NewService(deps), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("driver de almacenamiento no soportado: %q", cfg.Storage.Driver)
	}
}
