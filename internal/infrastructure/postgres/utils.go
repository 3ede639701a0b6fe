package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}

// isCheckViolation restricciones CHECK (23514): stock o precio negativos, cantidad no positiva.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// wrapErr traduce errores de pgx al vocabulario del dominio con prefijo de operación.
// Los errores que ya son de dominio pasan sin cambios.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsDomainError(err):
		return err
	case isUniqueViolation(err):
		return domain.ErrDuplicateCode
	case isCheckViolation(err):
		return domain.ErrInvalidInput
	default:
		return domain.NewStorageError("postgres."+op, err)
	}
}
