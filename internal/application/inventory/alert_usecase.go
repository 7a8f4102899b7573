package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// evaluarAlerta abre una alerta PENDIENTE si el repuesto está por debajo
// de su mínimo de seguridad y no existe ya una alerta abierta. Un
// repuesto tiene como máximo una alerta abierta a la vez.
func evaluarAlerta(alertaRepo repository.AlertaRepository, repuesto *entity.Repuesto, now time.Time) error {
	if repuesto.StockActual >= repuesto.StockMinimoSeguridad {
		return nil
	}
	abierta, err := alertaRepo.GetAbiertaPorRepuesto(repuesto.ID)
	if err != nil {
		return err
	}
	if abierta != nil {
		return nil
	}
	return alertaRepo.Create(&entity.Alerta{
		ID:            uuid.New().String(),
		RepuestoID:    repuesto.ID,
		StockActual:   repuesto.StockActual,
		StockMinimo:   repuesto.StockMinimoSeguridad,
		Estado:        entity.AlertaPendiente,
		FechaCreacion: now,
	})
}

// AlertaUseCase gestiona el ciclo de vida de las alertas de stock bajo:
// PENDIENTE → NOTIFICADA → RESUELTA | IGNORADA.
type AlertaUseCase struct {
	alertaRepo   repository.AlertaRepository
	repuestoRepo repository.RepuestoRepository
}

// NewAlertaUseCase construye el caso de uso.
func NewAlertaUseCase(alertaRepo repository.AlertaRepository, repuestoRepo repository.RepuestoRepository) *AlertaUseCase {
	return &AlertaUseCase{alertaRepo: alertaRepo, repuestoRepo: repuestoRepo}
}

// Evaluar revisa un repuesto y abre alerta si corresponde (punto de
// entrada para reevaluaciones manuales; el motor de movimientos evalúa
// dentro de su propia transacción).
func (uc *AlertaUseCase) Evaluar(repuestoID string) error {
	repuesto, err := uc.repuestoRepo.GetByID(repuestoID)
	if err != nil {
		return err
	}
	if repuesto == nil {
		return domain.ErrNotFound
	}
	return evaluarAlerta(uc.alertaRepo, repuesto, time.Now())
}

// Listar devuelve alertas: PENDIENTE primero, luego el resto; dentro de
// cada grupo, las más recientes primero.
func (uc *AlertaUseCase) Listar(filter repository.AlertaFilter) ([]*entity.Alerta, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.alertaRepo.List(filter)
}

// MarcarNotificada transiciona PENDIENTE → NOTIFICADA.
func (uc *AlertaUseCase) MarcarNotificada(alertaID string) (*entity.Alerta, error) {
	alerta, err := uc.alertaRepo.GetByID(alertaID)
	if err != nil {
		return nil, err
	}
	if alerta == nil {
		return nil, domain.ErrNotFound
	}
	if alerta.Estado != entity.AlertaPendiente {
		return nil, domain.ErrConflict
	}
	alerta.Estado = entity.AlertaNotificada
	if err := uc.alertaRepo.Update(alerta); err != nil {
		return nil, err
	}
	return alerta, nil
}

// MarcarResuelta cierra la alerta como RESUELTA, estampando fecha y
// usuario. Resolver no es idempotente: una alerta terminal falla.
func (uc *AlertaUseCase) MarcarResuelta(alertaID, userID, observaciones string) (*entity.Alerta, error) {
	return uc.cerrar(alertaID, userID, observaciones, entity.AlertaResuelta)
}

// Ignorar cierra la alerta como IGNORADA (terminal).
func (uc *AlertaUseCase) Ignorar(alertaID, userID, observaciones string) (*entity.Alerta, error) {
	return uc.cerrar(alertaID, userID, observaciones, entity.AlertaIgnorada)
}

func (uc *AlertaUseCase) cerrar(alertaID, userID, observaciones, estado string) (*entity.Alerta, error) {
	alerta, err := uc.alertaRepo.GetByID(alertaID)
	if err != nil {
		return nil, err
	}
	if alerta == nil {
		return nil, domain.ErrNotFound
	}
	if entity.EstadoAlertaTerminal(alerta.Estado) {
		return nil, domain.ErrAlertaTerminal
	}
	now := time.Now()
	alerta.Estado = estado
	alerta.FechaResolucion = &now
	alerta.ResueltaPor = userID
	if observaciones != "" {
		alerta.Observaciones = observaciones
	}
	if err := uc.alertaRepo.Update(alerta); err != nil {
		return nil, err
	}
	return alerta, nil
}
