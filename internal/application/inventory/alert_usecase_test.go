package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

func alertaAbierta(alertas *memAlertas, id, repuestoID, estado string, creada time.Time) {
	_ = alertas.Create(&entity.Alerta{
		ID:            id,
		RepuestoID:    repuestoID,
		StockActual:   2,
		StockMinimo:   5,
		Estado:        estado,
		FechaCreacion: creada,
	})
}

func TestAlerta_EvaluarAbreSoloBajoMinimo(t *testing.T) {
	repuestos := newMemRepuestos(repuestoBase()) // stock 10, mínimo 5
	alertas := newMemAlertas()
	uc := inventory.NewAlertaUseCase(alertas, repuestos)

	require.NoError(t, uc.Evaluar(testRepuestoID))
	assert.Empty(t, alertas.items, "con stock sobre el mínimo no hay alerta")

	_ = repuestos.UpdateStock(testRepuestoID, 3)
	require.NoError(t, uc.Evaluar(testRepuestoID))
	assert.Len(t, alertas.items, 1, "bajo el mínimo debe abrirse una alerta")
}

func TestAlerta_MarcarNotificadaSoloDesdePendiente(t *testing.T) {
	alertas := newMemAlertas()
	uc := inventory.NewAlertaUseCase(alertas, newMemRepuestos())
	alertaAbierta(alertas, "a1", testRepuestoID, entity.AlertaPendiente, time.Now())

	a, err := uc.MarcarNotificada("a1")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertaNotificada, a.Estado)

	// Segunda notificación: ya no está PENDIENTE.
	_, err = uc.MarcarNotificada("a1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAlerta_ResolverEstampaUsuarioYFecha(t *testing.T) {
	alertas := newMemAlertas()
	uc := inventory.NewAlertaUseCase(alertas, newMemRepuestos())
	alertaAbierta(alertas, "a1", testRepuestoID, entity.AlertaNotificada, time.Now())

	a, err := uc.MarcarResuelta("a1", testUserID, "se repuso stock")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertaResuelta, a.Estado)
	assert.Equal(t, testUserID, a.ResueltaPor)
	require.NotNil(t, a.FechaResolucion)
	assert.Equal(t, "se repuso stock", a.Observaciones)
}

// Resolver no es idempotente: la segunda resolución falla.
func TestAlerta_ResolverDosVecesFalla(t *testing.T) {
	alertas := newMemAlertas()
	uc := inventory.NewAlertaUseCase(alertas, newMemRepuestos())
	alertaAbierta(alertas, "a1", testRepuestoID, entity.AlertaPendiente, time.Now())

	_, err := uc.MarcarResuelta("a1", testUserID, "")
	require.NoError(t, err)

	_, err = uc.MarcarResuelta("a1", testUserID, "")
	assert.ErrorIs(t, err, domain.ErrAlertaTerminal)

	_, err = uc.Ignorar("a1", testUserID, "")
	assert.ErrorIs(t, err, domain.ErrAlertaTerminal)
}

func TestAlerta_IgnorarEsTerminal(t *testing.T) {
	alertas := newMemAlertas()
	uc := inventory.NewAlertaUseCase(alertas, newMemRepuestos())
	alertaAbierta(alertas, "a1", testRepuestoID, entity.AlertaPendiente, time.Now())

	a, err := uc.Ignorar("a1", testUserID, "falso positivo")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertaIgnorada, a.Estado)
	assert.True(t, entity.EstadoAlertaTerminal(a.Estado))
}

// El listado pone las PENDIENTE primero y ordena por fecha dentro del grupo.
func TestAlerta_ListarPendientesPrimero(t *testing.T) {
	alertas := newMemAlertas()
	uc := inventory.NewAlertaUseCase(alertas, newMemRepuestos())

	base := time.Now()
	alertaAbierta(alertas, "vieja-resuelta", "r1", entity.AlertaResuelta, base.Add(-3*time.Hour))
	alertaAbierta(alertas, "pendiente-vieja", "r2", entity.AlertaPendiente, base.Add(-2*time.Hour))
	alertaAbierta(alertas, "pendiente-nueva", "r3", entity.AlertaPendiente, base.Add(-1*time.Hour))

	out, total, err := uc.Listar(repository.AlertaFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, out, 3)
	assert.Equal(t, "pendiente-nueva", out[0].ID)
	assert.Equal(t, "pendiente-vieja", out[1].ID)
	assert.Equal(t, "vieja-resuelta", out[2].ID)
}
