package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// RegistrarMovimientoUseCase registra movimientos del libro de stock de
// forma transaccional, con bloqueo de fila (SELECT FOR UPDATE) sobre el
// repuesto y Commit/Rollback. El libro es append-only: cada registro
// lleva las instantáneas stock_anterior/stock_posterior.
type RegistrarMovimientoUseCase struct {
	txRunner TxRunner
	movRepo  repository.MovimientoRepository
}

// NewRegistrarMovimientoUseCase construye el caso de uso.
func NewRegistrarMovimientoUseCase(txRunner TxRunner, movRepo repository.MovimientoRepository) *RegistrarMovimientoUseCase {
	return &RegistrarMovimientoUseCase{txRunner: txRunner, movRepo: movRepo}
}

// MovimientoInput entrada para registrar un movimiento.
type MovimientoInput struct {
	UserID         string
	RepuestoID     string
	TipoMovimiento string
	Cantidad       int
	AutorizadoPor  string
	Proveedor      string
	NumeroFactura  string
	NumeroOT       string
	Observaciones  string
	CostoUnitario  *decimal.Decimal
}

func validarMovimiento(in MovimientoInput) error {
	ve := domain.NewValidationError()
	if in.RepuestoID == "" {
		ve.Add("repuesto_id", "el repuesto es requerido")
	}
	if !entity.TipoMovimientoValido(in.TipoMovimiento) {
		ve.Add("tipo_movimiento", "tipo de movimiento inválido")
	}
	if in.Cantidad <= 0 {
		ve.Add("cantidad", "la cantidad debe ser mayor a cero")
	}
	if entity.EsAjuste(in.TipoMovimiento) {
		if in.Observaciones == "" {
			ve.Add("observaciones", "las observaciones son obligatorias para ajustes")
		}
		if in.AutorizadoPor == "" {
			ve.Add("autorizado_por", "los ajustes requieren un usuario autorizador")
		}
	}
	if in.CostoUnitario != nil && in.CostoUnitario.LessThan(decimal.Zero) {
		ve.Add("costo_unitario", "el costo unitario no puede ser negativo")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Registrar valida la entrada, inicia una transacción, bloquea la fila
// del repuesto, aplica la convención de signos del tipo y persiste el
// movimiento junto con el nuevo stock. Si el movimiento decrementa el
// stock por debajo del mínimo de seguridad, abre (si no existe) una
// alerta PENDIENTE dentro de la misma transacción. Un incremento nunca
// resuelve alertas automáticamente.
func (uc *RegistrarMovimientoUseCase) Registrar(ctx context.Context, in MovimientoInput) (*entity.Movimiento, error) {
	if err := validarMovimiento(in); err != nil {
		return nil, err
	}

	var registrado *entity.Movimiento
	err := uc.txRunner.Run(ctx, func(
		repuestoRepo repository.RepuestoRepository,
		movRepo repository.MovimientoRepository,
		alertaRepo repository.AlertaRepository,
	) error {
		mov, err := registrarEnTx(repuestoRepo, movRepo, alertaRepo, in, time.Now())
		if err != nil {
			return err
		}
		registrado = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registrado, nil
}

// registrarEnTx ejecuta el registro con repositorios ya atados a una
// transacción (lo comparte la entrada masiva, que agrupa varias líneas
// en una sola tx).
func registrarEnTx(
	repuestoRepo repository.RepuestoRepository,
	movRepo repository.MovimientoRepository,
	alertaRepo repository.AlertaRepository,
	in MovimientoInput,
	now time.Time,
) (*entity.Movimiento, error) {
	repuesto, err := repuestoRepo.GetByIDForUpdate(in.RepuestoID)
	if err != nil {
		return nil, err
	}
	if repuesto == nil {
		return nil, domain.ErrNotFound
	}

	signo := entity.SignoMovimiento(in.TipoMovimiento)
	stockAnterior := repuesto.StockActual
	stockPosterior := stockAnterior + signo*in.Cantidad

	if stockPosterior < 0 {
		return nil, domain.ErrInsufficientStock
	}

	costo := in.CostoUnitario
	if costo == nil {
		costo = repuesto.CostoUnitario
	}
	var valorTotal *decimal.Decimal
	if costo != nil {
		v := costo.Mul(decimal.NewFromInt(int64(in.Cantidad)))
		valorTotal = &v
	}

	mov := &entity.Movimiento{
		ID:                   uuid.New().String(),
		RepuestoID:           in.RepuestoID,
		TipoMovimiento:       in.TipoMovimiento,
		Cantidad:             in.Cantidad,
		StockAnterior:        stockAnterior,
		StockPosterior:       stockPosterior,
		FechaMovimiento:      now,
		RegistradoPor:        in.UserID,
		AutorizadoPor:        in.AutorizadoPor,
		Proveedor:            in.Proveedor,
		NumeroFactura:        in.NumeroFactura,
		NumeroOT:             in.NumeroOT,
		Observaciones:        in.Observaciones,
		ValorTotalMovimiento: valorTotal,
	}

	if signo != 0 {
		if err := repuestoRepo.UpdateStock(repuesto.ID, stockPosterior); err != nil {
			return nil, err
		}
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}

	// Solo las disminuciones abren alertas; subir el stock por encima
	// del mínimo no resuelve la alerta existente.
	if signo < 0 && stockPosterior < repuesto.StockMinimoSeguridad {
		repuesto.StockActual = stockPosterior
		if err := evaluarAlerta(alertaRepo, repuesto, now); err != nil {
			return nil, err
		}
	}
	return mov, nil
}

// EntradaRepuestos registra una entrada masiva: todas las líneas se
// aplican como ENTRADA en una única transacción; si una falla, ninguna
// queda registrada.
func (uc *RegistrarMovimientoUseCase) EntradaRepuestos(ctx context.Context, userID string, req dto.EntradaRepuestosRequest) ([]*entity.Movimiento, error) {
	if len(req.Items) == 0 {
		return nil, domain.NewValidationError().Add("items", "debe incluir al menos un repuesto")
	}
	for _, item := range req.Items {
		if item.RepuestoID == "" {
			return nil, domain.NewValidationError().Add("items", "cada línea requiere repuesto_id")
		}
		if item.Cantidad <= 0 {
			return nil, domain.NewValidationError().Add("cantidad", "la cantidad debe ser mayor a cero")
		}
	}

	var registrados []*entity.Movimiento
	err := uc.txRunner.Run(ctx, func(
		repuestoRepo repository.RepuestoRepository,
		movRepo repository.MovimientoRepository,
		alertaRepo repository.AlertaRepository,
	) error {
		now := time.Now()
		for _, item := range req.Items {
			mov, err := registrarEnTx(repuestoRepo, movRepo, alertaRepo, MovimientoInput{
				UserID:         userID,
				RepuestoID:     item.RepuestoID,
				TipoMovimiento: entity.MovimientoEntrada,
				Cantidad:       item.Cantidad,
				Proveedor:      req.Proveedor,
				NumeroFactura:  req.NumeroFactura,
				Observaciones:  req.Observaciones,
				CostoUnitario:  item.CostoUnitario,
			}, now)
			if err != nil {
				return err
			}
			registrados = append(registrados, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registrados, nil
}

// Listar devuelve el historial filtrado con el total para paginar.
func (uc *RegistrarMovimientoUseCase) Listar(filter repository.MovimientoFilter) ([]*entity.Movimiento, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.movRepo.List(filter)
}

// Estadisticas agrega el historial según el filtro.
func (uc *RegistrarMovimientoUseCase) Estadisticas(filter repository.MovimientoFilter) (*repository.EstadisticasMovimientos, error) {
	return uc.movRepo.Estadisticas(filter)
}

// ResumenUsuario agrega los movimientos registrados por un usuario.
func (uc *RegistrarMovimientoUseCase) ResumenUsuario(userID string) (*repository.EstadisticasMovimientos, error) {
	return uc.movRepo.Estadisticas(repository.MovimientoFilter{RegistradoPor: userID})
}
