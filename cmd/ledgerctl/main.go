// ledgerctl herramienta de mantenimiento del motor de inventario: aprovisiona y migra tenants,
// verifica su esquema, reconcilia stock contra el libro y emite reportes en JSON.
//
// Uso: go run ./cmd/ledgerctl <comando> [argumentos]
// El backend se elige con STORAGE_DRIVER (postgres | badger). Si METRICS_TEXTFILE está definido,
// al terminar se escriben las métricas del proceso en ese archivo.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(os.Stderr, usage)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		return 1
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	svc, closeFn, err := openEngine(ctx, cfg, log, reg)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("abrir almacenamiento")
		return 1
	}
	defer closeFn()

	runErr := run(ctx, svc, args, os.Stdout)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			log.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("escribir métricas")
		}
	}

	switch {
	case runErr == nil:
		return 0
	case errors.Is(runErr, errUsage):
		fmt.Fprintf(os.Stderr, "%v\n\n%s", runErr, usage)
		return 2
	default:
		log.Error().Err(runErr).Str("command", args[0]).Msg("comando fallido")
		return 1
	}
}
