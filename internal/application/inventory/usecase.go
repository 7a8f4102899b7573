package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// RepuestoUseCase CRUD de repuestos, estadísticas del panel y ajuste de
// stock (delegado al motor de movimientos: el stock nunca se fija a mano).
type RepuestoUseCase struct {
	repuestoRepo repository.RepuestoRepository
	movimientos  *RegistrarMovimientoUseCase
}

// NewRepuestoUseCase construye el caso de uso.
func NewRepuestoUseCase(repuestoRepo repository.RepuestoRepository, movimientos *RegistrarMovimientoUseCase) *RepuestoUseCase {
	return &RepuestoUseCase{repuestoRepo: repuestoRepo, movimientos: movimientos}
}

func validarDatosRepuesto(nombre, unidad string, stockMinimo int, costo *decimal.Decimal) *domain.ValidationError {
	ve := domain.NewValidationError()
	if strings.TrimSpace(nombre) == "" {
		ve.Add("nombre", "el nombre es requerido")
	}
	if !entity.UnidadMedidaValida(unidad) {
		ve.Add("unidad_medida", "unidad de medida inválida")
	}
	if stockMinimo < 0 {
		ve.Add("stock_minimo_seguridad", "el stock mínimo no puede ser negativo")
	}
	if costo != nil && costo.LessThan(decimal.Zero) {
		ve.Add("costo_unitario", "el costo unitario no puede ser negativo")
	}
	return ve
}

// Crear registra un repuesto nuevo con stock cero.
func (uc *RepuestoUseCase) Crear(in dto.CreateRepuestoRequest) (*entity.Repuesto, error) {
	ve := validarDatosRepuesto(in.Nombre, in.UnidadMedida, in.StockMinimoSeguridad, in.CostoUnitario)
	if in.CodigoBarras != "" {
		existente, err := uc.repuestoRepo.GetByCodigoBarras(in.CodigoBarras)
		if err != nil {
			return nil, err
		}
		if existente != nil {
			ve.Add("codigo_barras", "el código de barras ya está registrado")
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	now := time.Now()
	repuesto := &entity.Repuesto{
		ID:                   uuid.New().String(),
		Nombre:               strings.TrimSpace(in.Nombre),
		Descripcion:          in.Descripcion,
		Marca:                in.Marca,
		Modelo:               in.Modelo,
		CodigoBarras:         in.CodigoBarras,
		UnidadMedida:         in.UnidadMedida,
		StockMinimoSeguridad: in.StockMinimoSeguridad,
		CostoUnitario:        in.CostoUnitario,
		StockActual:          0,
		Activo:               true,
		FechaCreacion:        now,
		FechaActualizacion:   now,
	}
	if err := uc.repuestoRepo.Create(repuesto); err != nil {
		return nil, err
	}
	return repuesto, nil
}

// Obtener devuelve un repuesto por ID.
func (uc *RepuestoUseCase) Obtener(id string) (*entity.Repuesto, error) {
	repuesto, err := uc.repuestoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if repuesto == nil {
		return nil, domain.ErrNotFound
	}
	return repuesto, nil
}

// Listar devuelve repuestos filtrados con el total para paginar.
func (uc *RepuestoUseCase) Listar(filter repository.RepuestoFilter) ([]*entity.Repuesto, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.repuestoRepo.List(filter)
}

// StockBajo lista los repuestos activos por debajo de su mínimo.
func (uc *RepuestoUseCase) StockBajo() ([]*entity.Repuesto, error) {
	activo := true
	repuestos, _, err := uc.repuestoRepo.List(repository.RepuestoFilter{
		Activo:        &activo,
		SoloStockBajo: true,
		Limit:         500,
	})
	return repuestos, err
}

// Actualizar modifica los datos de un repuesto. El stock actual no es
// editable por esta vía.
func (uc *RepuestoUseCase) Actualizar(id string, in dto.UpdateRepuestoRequest) (*entity.Repuesto, error) {
	repuesto, err := uc.repuestoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if repuesto == nil {
		return nil, domain.ErrNotFound
	}

	if in.Nombre != nil {
		repuesto.Nombre = strings.TrimSpace(*in.Nombre)
	}
	if in.Descripcion != nil {
		repuesto.Descripcion = *in.Descripcion
	}
	if in.Marca != nil {
		repuesto.Marca = *in.Marca
	}
	if in.Modelo != nil {
		repuesto.Modelo = *in.Modelo
	}
	if in.CodigoBarras != nil && *in.CodigoBarras != repuesto.CodigoBarras {
		if *in.CodigoBarras != "" {
			existente, err := uc.repuestoRepo.GetByCodigoBarras(*in.CodigoBarras)
			if err != nil {
				return nil, err
			}
			if existente != nil && existente.ID != id {
				return nil, domain.NewValidationError().Add("codigo_barras", "el código de barras ya está registrado")
			}
		}
		repuesto.CodigoBarras = *in.CodigoBarras
	}
	if in.UnidadMedida != nil {
		repuesto.UnidadMedida = *in.UnidadMedida
	}
	if in.StockMinimoSeguridad != nil {
		repuesto.StockMinimoSeguridad = *in.StockMinimoSeguridad
	}
	if in.CostoUnitario != nil {
		repuesto.CostoUnitario = in.CostoUnitario
	}
	if in.Activo != nil {
		repuesto.Activo = *in.Activo
	}

	ve := validarDatosRepuesto(repuesto.Nombre, repuesto.UnidadMedida, repuesto.StockMinimoSeguridad, repuesto.CostoUnitario)
	if ve.HasErrors() {
		return nil, ve
	}

	repuesto.FechaActualizacion = time.Now()
	if err := uc.repuestoRepo.Update(repuesto); err != nil {
		return nil, err
	}
	return repuesto, nil
}

// AjustarStock traduce un ajuste manual (POSITIVO/NEGATIVO) a un
// movimiento AJUSTE_* del libro; la aritmética y la alerta quedan en el
// motor de movimientos.
func (uc *RepuestoUseCase) AjustarStock(ctx context.Context, repuestoID, userID string, in dto.AjusteStockRequest) (*entity.Movimiento, error) {
	var tipo string
	switch in.TipoAjuste {
	case "POSITIVO":
		tipo = entity.MovimientoAjustePositivo
	case "NEGATIVO":
		tipo = entity.MovimientoAjusteNegativo
	default:
		return nil, domain.NewValidationError().Add("tipo_ajuste", "tipo de ajuste inválido (POSITIVO o NEGATIVO)")
	}
	return uc.movimientos.Registrar(ctx, MovimientoInput{
		UserID:         userID,
		RepuestoID:     repuestoID,
		TipoMovimiento: tipo,
		Cantidad:       in.Cantidad,
		Observaciones:  in.Observaciones,
		// El ajuste queda autorizado por quien lo registra; la separación
		// registrador/autorizador llega en el request de movimientos crudo.
		AutorizadoPor: userID,
	})
}

// Estadisticas arma el panel con tres consultas en paralelo. Cada
// métrica degrada de forma independiente: el fallo de una no bloquea a
// las demás (las fallidas se listan en Parciales).
func (uc *RepuestoUseCase) Estadisticas(ctx context.Context) (*dto.EstadisticasRepuestosResponse, error) {
	type countsResult struct {
		total, activos int
		err            error
	}
	type bajosResult struct {
		n   int
		err error
	}
	type valorResult struct {
		valor decimal.Decimal
		err   error
	}

	countsCh := make(chan countsResult, 1)
	bajosCh := make(chan bajosResult, 1)
	valorCh := make(chan valorResult, 1)

	go func() {
		total, activos, err := uc.repuestoRepo.CountRepuestos()
		countsCh <- countsResult{total, activos, err}
	}()
	go func() {
		n, err := uc.repuestoRepo.CountStockBajo()
		bajosCh <- bajosResult{n, err}
	}()
	go func() {
		valor, err := uc.repuestoRepo.ValorInventario()
		valorCh <- valorResult{valor, err}
	}()

	counts := <-countsCh
	bajos := <-bajosCh
	valor := <-valorCh

	resp := &dto.EstadisticasRepuestosResponse{ValorInventario: decimal.Zero}
	if counts.err != nil {
		resp.Parciales = append(resp.Parciales, "totales")
	} else {
		resp.TotalRepuestos = counts.total
		resp.RepuestosActivos = counts.activos
	}
	if bajos.err != nil {
		resp.Parciales = append(resp.Parciales, "stock_bajo")
	} else {
		resp.StockBajo = bajos.n
	}
	if valor.err != nil {
		resp.Parciales = append(resp.Parciales, "valor_inventario")
	} else {
		resp.ValorInventario = valor.valor
	}

	// Solo si todo falló el panel no tiene nada que mostrar.
	if counts.err != nil && bajos.err != nil && valor.err != nil {
		return nil, counts.err
	}
	return resp, nil
}
