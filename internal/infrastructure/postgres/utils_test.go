package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestWrapErr_KeepsDomainErrors(t *testing.T) {
	// El mensaje incluye "123505": no debe confundirse con un código SQLSTATE.
	_, insufficient := inventory.ApplyMovement(10, entity.MovementOut, 123505)
	wrapped := wrapErr("Run", insufficient)
	assert.ErrorIs(t, wrapped, domain.ErrInsufficientStock)
	assert.NotErrorIs(t, wrapped, domain.ErrDuplicateCode)

	invalid := fmt.Errorf("%w: referencia 23505", domain.ErrInvalidInput)
	assert.Same(t, invalid, wrapErr("View", invalid))
}

func TestWrapErr_TranslatesPgErrors(t *testing.T) {
	assert.Nil(t, wrapErr("Run", nil))
	assert.ErrorIs(t, wrapErr("products.Create", &pgconn.PgError{Code: "23505"}), domain.ErrDuplicateCode)
	assert.ErrorIs(t, wrapErr("products.UpdateStock", &pgconn.PgError{Code: "23514"}), domain.ErrInvalidInput)

	err := wrapErr("products.List", errors.New("conexión cerrada 23505"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, domain.ErrDuplicateCode)
}
