package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
)

var errUsage = errors.New("uso inválido")

const usage = `Uso: ledgerctl <comando> [argumentos]

Comandos:
  tenant-new                       genera un tenant (UUID) y aprovisiona su área
  provision <tenant>               crea el área del tenant si no existe
  migrate [tenant]                 agrega campos faltantes a un tenant o a todos
  verify <tenant>                  muestra el esquema almacenado del tenant
  stats <tenant>                   KPIs del inventario
  low-stock <tenant> [umbral]      productos con stock bajo el umbral
  reorder <tenant>                 productos bajo su stock mínimo
  report-stock <tenant>            stock y valor por ubicación
  report-movements <tenant>        movimientos por fecha y tipo
  reconcile <tenant> [producto]    compara el stock con el libro de movimientos
  products <tenant> [consulta]     lista o busca productos
  movements <tenant>               libro de movimientos
`

// run ejecuta un comando y escribe el resultado como JSON indentado en out.
func run(ctx context.Context, svc *ledger.Service, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	tenantArg := func() (string, error) {
		if len(rest) < 1 || rest[0] == "" {
			return "", fmt.Errorf("%w: %s requiere <tenant>", errUsage, cmd)
		}
		return rest[0], nil
	}

	var result any
	switch cmd {
	case "tenant-new":
		id := uuid.NewString()
		created, err := svc.EnsureTenant(ctx, id)
		if err != nil {
			return err
		}
		result = map[string]any{"tenant_id": id, "created": created}

	case "provision":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		created, err := svc.EnsureTenant(ctx, tenant)
		if err != nil {
			return err
		}
		result = map[string]any{"tenant_id": tenant, "created": created}

	case "migrate":
		if len(rest) == 0 {
			report, err := svc.MigrateAll(ctx)
			if report != nil {
				if werr := writeJSON(out, report); werr != nil {
					return werr
				}
			}
			return err
		}
		added, err := svc.MigrateTenant(ctx, rest[0])
		if err != nil {
			return err
		}
		if added == nil {
			added = []string{}
		}
		result = map[string]any{"tenant_id": rest[0], "added": added}

	case "verify":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		st, err := svc.VerifyTenant(ctx, tenant)
		if err != nil {
			return err
		}
		result = dto.ToTenantStorageResponse(st)

	case "stats":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		if result, err = svc.DashboardStats(ctx, tenant); err != nil {
			return err
		}

	case "low-stock":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		var threshold *int64
		if len(rest) > 1 {
			n, err := strconv.ParseInt(rest[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: umbral %q", errUsage, rest[1])
			}
			threshold = &n
		}
		list, err := svc.LowStockProducts(ctx, tenant, threshold)
		if err != nil {
			return err
		}
		result = dto.ToProductResponses(list)

	case "reorder":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		list, err := svc.ReorderProducts(ctx, tenant)
		if err != nil {
			return err
		}
		result = dto.ToProductResponses(list)

	case "report-stock":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		if result, err = svc.StockReportByLocation(ctx, tenant); err != nil {
			return err
		}

	case "report-movements":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		if result, err = svc.MovementReport(ctx, tenant); err != nil {
			return err
		}

	case "reconcile":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		if len(rest) > 1 {
			id, err := strconv.ParseInt(rest[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: producto %q", errUsage, rest[1])
			}
			if result, err = svc.Reconcile(ctx, tenant, id); err != nil {
				return err
			}
			break
		}
		if result, err = svc.ReconcileAll(ctx, tenant); err != nil {
			return err
		}

	case "products":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		query := ""
		if len(rest) > 1 {
			query = rest[1]
		}
		list, err := svc.SearchProducts(ctx, tenant, query, "")
		if err != nil {
			return err
		}
		result = dto.ToProductResponses(list)

	case "movements":
		tenant, err := tenantArg()
		if err != nil {
			return err
		}
		list, err := svc.ListMovements(ctx, tenant)
		if err != nil {
			return err
		}
		result = dto.ToMovementResponses(list)

	default:
		return fmt.Errorf("%w: comando desconocido %q", errUsage, cmd)
	}
	return writeJSON(out, result)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
