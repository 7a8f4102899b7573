package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// DeletionGuard valida y ejecuta la eliminación de repuestos.
//
// Para roles sin privilegio de eliminación forzada, la eliminación se
// bloquea si hay stock, movimientos recientes o alertas abiertas. Para
// SUPER_ADMIN la validación se omite y se entrega un resumen de impacto
// informativo; la eliminación forzada arrastra en cascada movimientos y
// alertas.
//
// La confirmación es un two-phase commit: Solicitar emite un desafío
// con el texto exacto esperado y Confirmar exige coincidencia literal
// (sensible a mayúsculas y espacios) antes de tocar la base.
type DeletionGuard struct {
	txRunner     TxRunner
	repuestoRepo repository.RepuestoRepository
	movRepo      repository.MovimientoRepository
	alertaRepo   repository.AlertaRepository

	ventanaRecientes time.Duration
	ttlDesafio       time.Duration

	mu       sync.Mutex
	desafios map[string]desafioEliminacion
}

type desafioEliminacion struct {
	repuestoID   string
	expectedText string
	forced       bool
	expira       time.Time
}

// NewDeletionGuard construye la guardia.
func NewDeletionGuard(
	txRunner TxRunner,
	repuestoRepo repository.RepuestoRepository,
	movRepo repository.MovimientoRepository,
	alertaRepo repository.AlertaRepository,
	ventanaRecientes, ttlDesafio time.Duration,
) *DeletionGuard {
	if ventanaRecientes <= 0 {
		ventanaRecientes = 30 * 24 * time.Hour
	}
	if ttlDesafio <= 0 {
		ttlDesafio = 5 * time.Minute
	}
	return &DeletionGuard{
		txRunner:         txRunner,
		repuestoRepo:     repuestoRepo,
		movRepo:          movRepo,
		alertaRepo:       alertaRepo,
		ventanaRecientes: ventanaRecientes,
		ttlDesafio:       ttlDesafio,
		desafios:         map[string]desafioEliminacion{},
	}
}

// TextoConfirmacion devuelve el texto literal que el usuario debe
// escribir para confirmar la eliminación del repuesto.
func TextoConfirmacion(nombre string, forced bool) string {
	if forced {
		return "FORZAR ELIMINACIÓN " + strings.ToUpper(nombre)
	}
	return "ELIMINAR " + strings.ToUpper(nombre)
}

// impactoEliminacion resume el estado del repuesto frente a una
// eliminación: stock, movimientos y alertas asociados.
type impactoEliminacion struct {
	repuesto     *entity.Repuesto
	totalMov     int
	recientes    int
	totalAlertas int
	pendientes   int
}

func (g *DeletionGuard) medirImpacto(repuestoID string) (*impactoEliminacion, error) {
	repuesto, err := g.repuestoRepo.GetByID(repuestoID)
	if err != nil {
		return nil, err
	}
	if repuesto == nil {
		return nil, domain.ErrNotFound
	}

	totalMov, err := g.movRepo.CountByRepuesto(repuestoID)
	if err != nil {
		return nil, err
	}
	recientes, err := g.movRepo.CountByRepuestoSince(repuestoID, time.Now().Add(-g.ventanaRecientes))
	if err != nil {
		return nil, err
	}
	totalAlertas, pendientes, err := g.alertaRepo.CountByRepuesto(repuestoID)
	if err != nil {
		return nil, err
	}
	return &impactoEliminacion{
		repuesto:     repuesto,
		totalMov:     totalMov,
		recientes:    recientes,
		totalAlertas: totalAlertas,
		pendientes:   pendientes,
	}, nil
}

// bloqueos devuelve las condiciones que impiden la eliminación normal.
func (i *impactoEliminacion) bloqueos() []dto.ValidationItem {
	var items []dto.ValidationItem
	if i.repuesto.StockActual > 0 {
		items = append(items, dto.ValidationItem{
			Type:    "stock_actual",
			Message: fmt.Sprintf("el repuesto tiene %d %s en stock", i.repuesto.StockActual, i.repuesto.UnidadMedida),
		})
	}
	if i.recientes > 0 {
		items = append(items, dto.ValidationItem{
			Type:    "movimientos_recientes",
			Message: fmt.Sprintf("existen %d movimientos recientes", i.recientes),
		})
	}
	if i.pendientes > 0 {
		items = append(items, dto.ValidationItem{
			Type:    "alertas_pendientes",
			Message: fmt.Sprintf("existen %d alertas pendientes", i.pendientes),
		})
	}
	return items
}

// ValidarEliminacion evalúa las condiciones de eliminación para el rol.
func (g *DeletionGuard) ValidarEliminacion(repuestoID, role string) (*dto.ValidateDeleteResponse, error) {
	imp, err := g.medirImpacto(repuestoID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ValidateDeleteResponse{UserRole: role}

	if entity.TieneCapacidad(role, entity.CapEliminacionForzada) {
		// Eliminación forzada: nunca se bloquea, solo se informa el impacto.
		resp.CanDelete = true
		resp.ImpactWarning = &dto.ImpactWarning{
			StockActual:          imp.repuesto.StockActual,
			TotalMovimientos:     imp.totalMov,
			MovimientosRecientes: imp.recientes,
			TotalAlertas:         imp.totalAlertas,
			AlertasPendientes:    imp.pendientes,
		}
		return resp, nil
	}

	resp.ValidationErrors = imp.bloqueos()
	if imp.totalMov > 0 {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("se perderá el historial de %d movimientos", imp.totalMov))
	}
	resp.CanDelete = len(resp.ValidationErrors) == 0
	return resp, nil
}

// Solicitar emite un desafío de confirmación. El texto esperado depende
// del privilegio del rol; el token expira y es de un solo uso.
func (g *DeletionGuard) Solicitar(repuestoID, role string) (*dto.DeleteChallengeResponse, error) {
	if !entity.TieneCapacidad(role, entity.CapEliminarRepuestos) {
		return nil, domain.ErrForbidden
	}
	repuesto, err := g.repuestoRepo.GetByID(repuestoID)
	if err != nil {
		return nil, err
	}
	if repuesto == nil {
		return nil, domain.ErrNotFound
	}

	forced := entity.TieneCapacidad(role, entity.CapEliminacionForzada)
	expected := TextoConfirmacion(repuesto.Nombre, forced)
	token := uuid.New().String()
	expira := time.Now().Add(g.ttlDesafio)

	g.mu.Lock()
	g.purgarExpiradosLocked(time.Now())
	g.desafios[token] = desafioEliminacion{
		repuestoID:   repuestoID,
		expectedText: expected,
		forced:       forced,
		expira:       expira,
	}
	g.mu.Unlock()

	return &dto.DeleteChallengeResponse{
		Token:        token,
		ExpectedText: expected,
		Forced:       forced,
		ExpiresAt:    expira,
	}, nil
}

// Confirmar consume el desafío: exige coincidencia byte a byte del
// texto escrito, revalida las condiciones del lado del servidor y
// recién entonces elimina. El modo (normal o forzado) queda fijado al
// solicitar el desafío: confirmar con un rol más privilegiado no
// convierte un texto "ELIMINAR" en una eliminación forzada.
func (g *DeletionGuard) Confirmar(ctx context.Context, token, typedText, role string) (*dto.DeleteResultResponse, error) {
	g.mu.Lock()
	d, ok := g.desafios[token]
	if ok {
		delete(g.desafios, token)
	}
	g.mu.Unlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	if time.Now().After(d.expira) {
		return nil, domain.ErrDesafioExpirado
	}
	// Comparación exacta: mayúsculas, acentos y espacios cuentan.
	if typedText != d.expectedText {
		return nil, domain.ErrConfirmacionInvalida
	}
	return g.eliminar(ctx, d.repuestoID, role, d.forced)
}

// Eliminar ejecuta la eliminación aplicando la guardia del lado del
// servidor (la validación del cliente es consultiva, nunca autoritativa).
func (g *DeletionGuard) Eliminar(ctx context.Context, repuestoID, role string) (*dto.DeleteResultResponse, error) {
	return g.eliminar(ctx, repuestoID, role, entity.TieneCapacidad(role, entity.CapEliminacionForzada))
}

func (g *DeletionGuard) eliminar(ctx context.Context, repuestoID, role string, forced bool) (*dto.DeleteResultResponse, error) {
	if !entity.TieneCapacidad(role, entity.CapEliminarRepuestos) {
		return nil, domain.ErrForbidden
	}
	// Un desafío forzado solo lo confirma quien tiene el privilegio.
	if forced && !entity.TieneCapacidad(role, entity.CapEliminacionForzada) {
		return nil, domain.ErrForbidden
	}
	if !forced {
		imp, err := g.medirImpacto(repuestoID)
		if err != nil {
			return nil, err
		}
		if bloqueos := imp.bloqueos(); len(bloqueos) > 0 {
			ve := domain.NewValidationError()
			for _, item := range bloqueos {
				ve.Add(item.Type, item.Message)
			}
			return nil, ve
		}
	}

	var resultado *dto.DeleteResultResponse
	err := g.txRunner.Run(ctx, func(
		repuestoRepo repository.RepuestoRepository,
		movRepo repository.MovimientoRepository,
		alertaRepo repository.AlertaRepository,
	) error {
		repuesto, err := repuestoRepo.GetByIDForUpdate(repuestoID)
		if err != nil {
			return err
		}
		if repuesto == nil {
			return domain.ErrNotFound
		}
		movEliminados, err := movRepo.DeleteByRepuesto(repuestoID)
		if err != nil {
			return err
		}
		alertasEliminadas, err := alertaRepo.DeleteByRepuesto(repuestoID)
		if err != nil {
			return err
		}
		if err := repuestoRepo.Delete(repuestoID); err != nil {
			return err
		}
		resultado = &dto.DeleteResultResponse{
			Message:        fmt.Sprintf("Repuesto %q eliminado", repuesto.Nombre),
			ForcedDeletion: forced,
		}
		if forced {
			resultado.DeletedItems = &dto.DeletedItems{
				StockPerdido: repuesto.StockActual,
				Movimientos:  movEliminados,
				Alertas:      alertasEliminadas,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// purgarExpiradosLocked limpia desafíos vencidos; llamar con mu tomado.
func (g *DeletionGuard) purgarExpiradosLocked(now time.Time) {
	for token, d := range g.desafios {
		if now.After(d.expira) {
			delete(g.desafios, token)
		}
	}
}
