package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

func nuevoGuard(reps ...*entity.Repuesto) (*inventory.DeletionGuard, *memRepuestos, *memMovimientos, *memAlertas) {
	repuestos := newMemRepuestos(reps...)
	movs := newMemMovimientos()
	alertas := newMemAlertas()
	tx := &memTxRunner{repuestos: repuestos, movs: movs, alertas: alertas}
	guard := inventory.NewDeletionGuard(tx, repuestos, movs, alertas, 30*24*time.Hour, 5*time.Minute)
	return guard, repuestos, movs, alertas
}

func TestTextoConfirmacion(t *testing.T) {
	assert.Equal(t, "ELIMINAR FILTRO DE ACEITE XYZ",
		inventory.TextoConfirmacion("Filtro de Aceite XYZ", false))
	assert.Equal(t, "FORZAR ELIMINACIÓN FILTRO DE ACEITE XYZ",
		inventory.TextoConfirmacion("Filtro de Aceite XYZ", true))
}

// Un repuesto con stock, movimientos recientes o alertas pendientes no
// puede eliminarse por la vía normal; cada condición llega tipada.
func TestValidarEliminacion_BloqueosTipados(t *testing.T) {
	guard, _, movs, alertas := nuevoGuard(repuestoBase()) // stock 10
	_ = movs.Create(&entity.Movimiento{
		ID: "m1", RepuestoID: testRepuestoID,
		TipoMovimiento: entity.MovimientoEntrada, Cantidad: 1,
		FechaMovimiento: time.Now(), RegistradoPor: testUserID,
	})
	_ = alertas.Create(&entity.Alerta{
		ID: "a1", RepuestoID: testRepuestoID,
		Estado: entity.AlertaPendiente, FechaCreacion: time.Now(),
	})

	out, err := guard.ValidarEliminacion(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)
	assert.False(t, out.CanDelete)

	tipos := make([]string, 0, len(out.ValidationErrors))
	for _, item := range out.ValidationErrors {
		tipos = append(tipos, item.Type)
	}
	assert.ElementsMatch(t, []string{"stock_actual", "movimientos_recientes", "alertas_pendientes"}, tipos)
}

// Movimientos históricos (fuera de la ventana) solo generan advertencia.
func TestValidarEliminacion_HistoricoSoloAdvierte(t *testing.T) {
	rep := repuestoBase()
	rep.StockActual = 0
	guard, _, movs, _ := nuevoGuard(rep)
	_ = movs.Create(&entity.Movimiento{
		ID: "m1", RepuestoID: testRepuestoID,
		TipoMovimiento: entity.MovimientoSalidaUso, Cantidad: 1,
		FechaMovimiento: time.Now().Add(-90 * 24 * time.Hour), RegistradoPor: testUserID,
	})

	out, err := guard.ValidarEliminacion(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)
	assert.True(t, out.CanDelete, "el histórico no bloquea")
	assert.Empty(t, out.ValidationErrors)
	assert.NotEmpty(t, out.Warnings, "pero sí se advierte la pérdida del historial")
}

// El rol con eliminación forzada nunca se bloquea: recibe el impacto.
func TestValidarEliminacion_ForzadaInformaImpacto(t *testing.T) {
	guard, _, movs, alertas := nuevoGuard(repuestoBase())
	_ = movs.Create(&entity.Movimiento{
		ID: "m1", RepuestoID: testRepuestoID,
		TipoMovimiento: entity.MovimientoEntrada, Cantidad: 1,
		FechaMovimiento: time.Now(), RegistradoPor: testUserID,
	})
	_ = alertas.Create(&entity.Alerta{
		ID: "a1", RepuestoID: testRepuestoID,
		Estado: entity.AlertaPendiente, FechaCreacion: time.Now(),
	})

	out, err := guard.ValidarEliminacion(testRepuestoID, entity.RoleSuperAdmin)
	require.NoError(t, err)
	assert.True(t, out.CanDelete)
	require.NotNil(t, out.ImpactWarning)
	assert.Equal(t, 10, out.ImpactWarning.StockActual)
	assert.Equal(t, 1, out.ImpactWarning.TotalMovimientos)
	assert.Equal(t, 1, out.ImpactWarning.AlertasPendientes)
}

// Flujo completo en dos fases: solicitar emite el desafío, confirmar
// con el texto exacto elimina.
func TestConfirmar_FlujoNormal(t *testing.T) {
	rep := repuestoBase()
	rep.StockActual = 0
	guard, repuestos, _, _ := nuevoGuard(rep)

	desafio, err := guard.Solicitar(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)
	assert.Equal(t, "ELIMINAR FILTRO DE ACEITE XYZ", desafio.ExpectedText)
	assert.False(t, desafio.Forced)

	out, err := guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleEncargadoBodega)
	require.NoError(t, err)
	assert.False(t, out.ForcedDeletion)

	quedo, _ := repuestos.GetByID(testRepuestoID)
	assert.Nil(t, quedo, "el repuesto debe haberse eliminado")
}

// La comparación del texto es exacta: minúsculas o espacios extra fallan.
func TestConfirmar_TextoInexacto(t *testing.T) {
	rep := repuestoBase()
	rep.StockActual = 0
	guard, repuestos, _, _ := nuevoGuard(rep)

	casos := []string{
		"eliminar filtro de aceite xyz",
		"ELIMINAR FILTRO DE ACEITE XYZ ",
		" ELIMINAR FILTRO DE ACEITE XYZ",
		"ELIMINAR FILTRO DE ACEITE",
	}
	for _, texto := range casos {
		desafio, err := guard.Solicitar(testRepuestoID, entity.RoleEncargadoBodega)
		require.NoError(t, err)

		_, err = guard.Confirmar(context.Background(), desafio.Token, texto, entity.RoleEncargadoBodega)
		assert.ErrorIs(t, err, domain.ErrConfirmacionInvalida, "texto: %q", texto)
	}
	quedo, _ := repuestos.GetByID(testRepuestoID)
	assert.NotNil(t, quedo, "ninguna confirmación inválida debe eliminar")
}

// El token es de un solo uso.
func TestConfirmar_TokenConsumido(t *testing.T) {
	rep := repuestoBase()
	rep.StockActual = 0
	guard, _, _, _ := nuevoGuard(rep)

	desafio, err := guard.Solicitar(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)

	// Primer intento con texto incorrecto consume el token.
	_, err = guard.Confirmar(context.Background(), desafio.Token, "no", entity.RoleEncargadoBodega)
	require.ErrorIs(t, err, domain.ErrConfirmacionInvalida)

	_, err = guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleEncargadoBodega)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el token ya fue consumido")
}

// El desafío expira según su TTL.
func TestConfirmar_DesafioExpirado(t *testing.T) {
	rep := repuestoBase()
	rep.StockActual = 0
	repuestos := newMemRepuestos(rep)
	movs := newMemMovimientos()
	alertas := newMemAlertas()
	tx := &memTxRunner{repuestos: repuestos, movs: movs, alertas: alertas}
	guard := inventory.NewDeletionGuard(tx, repuestos, movs, alertas, 30*24*time.Hour, time.Nanosecond)

	desafio, err := guard.Solicitar(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleEncargadoBodega)
	assert.ErrorIs(t, err, domain.ErrDesafioExpirado)
}

// La eliminación normal se revalida del lado del servidor aunque el
// cliente consiga un desafío: si aparece stock, se bloquea.
func TestConfirmar_RevalidaEnServidor(t *testing.T) {
	rep := repuestoBase()
	rep.StockActual = 0
	guard, repuestos, _, _ := nuevoGuard(rep)

	desafio, err := guard.Solicitar(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)

	// Entre solicitar y confirmar, entra stock.
	_ = repuestos.UpdateStock(testRepuestoID, 4)

	_, err = guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleEncargadoBodega)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok, "debe bloquearse con error de validación")
	assert.Contains(t, ve.Fields, "stock_actual")
}

// La eliminación forzada arrasa en cascada y reporta lo eliminado.
func TestEliminar_ForzadaCascada(t *testing.T) {
	guard, repuestos, movs, alertas := nuevoGuard(repuestoBase()) // stock 10
	for _, id := range []string{"m1", "m2", "m3"} {
		_ = movs.Create(&entity.Movimiento{
			ID: id, RepuestoID: testRepuestoID,
			TipoMovimiento: entity.MovimientoEntrada, Cantidad: 1,
			FechaMovimiento: time.Now(), RegistradoPor: testUserID,
		})
	}
	_ = alertas.Create(&entity.Alerta{
		ID: "a1", RepuestoID: testRepuestoID,
		Estado: entity.AlertaPendiente, FechaCreacion: time.Now(),
	})

	desafio, err := guard.Solicitar(testRepuestoID, entity.RoleSuperAdmin)
	require.NoError(t, err)
	assert.True(t, desafio.Forced)
	assert.Equal(t, "FORZAR ELIMINACIÓN FILTRO DE ACEITE XYZ", desafio.ExpectedText)

	out, err := guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleSuperAdmin)
	require.NoError(t, err)
	assert.True(t, out.ForcedDeletion)
	require.NotNil(t, out.DeletedItems)
	assert.Equal(t, 10, out.DeletedItems.StockPerdido)
	assert.Equal(t, 3, out.DeletedItems.Movimientos)
	assert.Equal(t, 1, out.DeletedItems.Alertas)

	quedo, _ := repuestos.GetByID(testRepuestoID)
	assert.Nil(t, quedo)
	assert.Empty(t, movs.items)
	assert.Empty(t, alertas.items)
}

// El modo del desafío queda fijado al solicitarlo: si un rol sin
// privilegio forzado pidió el texto "ELIMINAR ...", confirmarlo con un
// SUPER_ADMIN no lo convierte en eliminación forzada.
func TestConfirmar_ModoFijadoAlSolicitar(t *testing.T) {
	guard, repuestos, _, _ := nuevoGuard(repuestoBase()) // stock 10

	desafio, err := guard.Solicitar(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)
	require.False(t, desafio.Forced)
	require.Equal(t, "ELIMINAR FILTRO DE ACEITE XYZ", desafio.ExpectedText)

	// Con stock presente, la vía normal se bloquea aunque confirme un
	// rol con privilegio forzado.
	_, err = guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleSuperAdmin)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok, "debe bloquearse como eliminación normal")
	assert.Contains(t, ve.Fields, "stock_actual")

	quedo, _ := repuestos.GetByID(testRepuestoID)
	require.NotNil(t, quedo, "sin texto FORZAR no hay cascada")

	// Sin condiciones bloqueantes, la confirmación cruzada elimina por
	// la vía normal, nunca como forzada.
	_ = repuestos.UpdateStock(testRepuestoID, 0)
	desafio, err = guard.Solicitar(testRepuestoID, entity.RoleEncargadoBodega)
	require.NoError(t, err)

	out, err := guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleSuperAdmin)
	require.NoError(t, err)
	assert.False(t, out.ForcedDeletion)
	assert.Nil(t, out.DeletedItems)
}

// Un desafío forzado exige el privilegio forzado también al confirmar.
func TestConfirmar_DesafioForzadoExigePrivilegio(t *testing.T) {
	guard, repuestos, _, _ := nuevoGuard(repuestoBase())

	desafio, err := guard.Solicitar(testRepuestoID, entity.RoleSuperAdmin)
	require.NoError(t, err)
	require.True(t, desafio.Forced)

	_, err = guard.Confirmar(context.Background(), desafio.Token, desafio.ExpectedText, entity.RoleEncargadoBodega)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	quedo, _ := repuestos.GetByID(testRepuestoID)
	assert.NotNil(t, quedo)
}

// Un rol sin capacidad de eliminar no puede ni solicitar el desafío.
func TestSolicitar_RolSinCapacidad(t *testing.T) {
	guard, _, _, _ := nuevoGuard(repuestoBase())

	for _, role := range []string{entity.RoleTecnico, entity.RoleSupervisor} {
		_, err := guard.Solicitar(testRepuestoID, role)
		assert.ErrorIs(t, err, domain.ErrForbidden, role)
	}
}
