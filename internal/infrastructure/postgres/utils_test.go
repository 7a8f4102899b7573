package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerpro/repuestos-api/internal/domain"
)

func TestClasificacionErroresPostgres(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "usuarios_username_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "movimientos_registrado_por_fkey"}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert usuario: %w", unique)))
	assert.False(t, isUniqueViolation(fk))

	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("delete usuario: %w", fk)))
	assert.False(t, isForeignKeyViolation(unique))
	assert.False(t, isForeignKeyViolation(errors.New("otra cosa")))
}

// errQuerier devuelve siempre el mismo error en Exec; suficiente para
// probar la traducción de códigos pg a errores de dominio.
type errQuerier struct{ err error }

func (q errQuerier) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, q.err
}
func (q errQuerier) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, q.err
}
func (q errQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row { return nil }

// Eliminar un usuario referenciado por el libro de movimientos no debe
// filtrarse como error interno: la violación de clave foránea se
// traduce a un conflicto de dominio.
func TestUsuarioDelete_ReferenciadoEsConflicto(t *testing.T) {
	repo := NewUsuarioRepository(errQuerier{err: &pgconn.PgError{
		Code:           "23503",
		ConstraintName: "movimientos_registrado_por_fkey",
	}})

	err := repo.Delete("user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUsuarioReferenciado)
}

func TestNormalizarBusqueda(t *testing.T) {
	assert.Equal(t, "dano", normalizarBusqueda("Dañó"))
	assert.Equal(t, "filtro aceite", normalizarBusqueda("  Fíltro Acéite "))
	assert.Equal(t, "bujia ngk", normalizarBusqueda("BUJÍA NGK"))
}
