package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
	"github.com/tallerpro/repuestos-api/internal/infrastructure/excel"
)

// MovimientoHandler maneja el libro de movimientos de inventario.
type MovimientoHandler struct {
	uc       *inventory.RegistrarMovimientoUseCase
	exportar *inventory.ExportarUseCase
}

// NewMovimientoHandler construye el handler.
func NewMovimientoHandler(uc *inventory.RegistrarMovimientoUseCase, exportar *inventory.ExportarUseCase) *MovimientoHandler {
	return &MovimientoHandler{uc: uc, exportar: exportar}
}

func parseMovimientoFilter(c *fiber.Ctx) repository.MovimientoFilter {
	filter := repository.MovimientoFilter{
		Search:         c.Query("search"),
		TipoMovimiento: c.Query("tipo_movimiento"),
		RepuestoID:     c.Query("repuesto_id"),
		RegistradoPor:  c.Query("registrado_por"),
		Ordering:       c.Query("ordering"),
		Limit:          c.QueryInt("limit", 20),
		Offset:         c.QueryInt("offset", 0),
	}
	if raw := c.Query("fecha_desde"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.FechaDesde = &t
		}
	}
	if raw := c.Query("fecha_hasta"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			// Inclusive hasta el final del día.
			fin := t.Add(24*time.Hour - time.Nanosecond)
			filter.FechaHasta = &fin
		}
	}
	return filter
}

// Registrar godoc
// @Summary      Registrar un movimiento de inventario
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegistrarMovimientoRequest  true  "Datos del movimiento"
// @Success      201   {object}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventario/movimientos [post]
func (h *MovimientoHandler) Registrar(c *fiber.Ctx) error {
	var in dto.RegistrarMovimientoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.Registrar(c.Context(), inventory.MovimientoInput{
		UserID:         GetUserID(c),
		RepuestoID:     in.RepuestoID,
		TipoMovimiento: in.TipoMovimiento,
		Cantidad:       in.Cantidad,
		AutorizadoPor:  in.AutorizadoPor,
		Proveedor:      in.Proveedor,
		NumeroFactura:  in.NumeroFactura,
		NumeroOT:       in.NumeroOT,
		Observaciones:  in.Observaciones,
		CostoUnitario:  in.CostoUnitario,
	})
	if err != nil {
		return respondError(c, err)
	}
	movimientosRegistrados.WithLabelValues(mov.TipoMovimiento).Inc()
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovimiento(mov))
}

// EntradaRepuestos godoc
// @Summary      Entrada masiva de repuestos (una factura, varios ítems)
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EntradaRepuestosRequest  true  "Ítems de la entrada"
// @Success      201   {array}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventario/movimientos/entrada_repuestos [post]
func (h *MovimientoHandler) EntradaRepuestos(c *fiber.Ctx) error {
	var in dto.EntradaRepuestosRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movs, err := h.uc.EntradaRepuestos(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovimientoResponse, 0, len(movs))
	for _, mov := range movs {
		movimientosRegistrados.WithLabelValues(mov.TipoMovimiento).Inc()
		out = append(out, dto.FromMovimiento(mov))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Listar godoc
// @Summary      Historial de movimientos
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        search           query  string  false  "Busca en proveedor, factura, OT y observaciones"
// @Param        tipo_movimiento  query  string  false  "Filtra por tipo"
// @Param        repuesto_id      query  string  false  "Filtra por repuesto"
// @Param        registrado_por   query  string  false  "Filtra por usuario"
// @Param        fecha_desde      query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta      query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        ordering         query  string  false  "fecha_movimiento o -fecha_movimiento"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovimientoListResponse
// @Router       /api/inventario/movimientos [get]
func (h *MovimientoHandler) Listar(c *fiber.Ctx) error {
	filter := parseMovimientoFilter(c)
	movs, total, err := h.uc.Listar(filter)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.MovimientoListResponse{
		Results: make([]dto.MovimientoResponse, 0, len(movs)),
		Page:    dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}
	for _, mov := range movs {
		out.Results = append(out.Results, dto.FromMovimiento(mov))
	}
	return c.JSON(out)
}

// Estadisticas godoc
// @Summary      Agregados del historial (respeta los filtros del listado)
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.EstadisticasMovimientosResponse
// @Router       /api/inventario/movimientos/estadisticas [get]
func (h *MovimientoHandler) Estadisticas(c *fiber.Ctx) error {
	stats, err := h.uc.Estadisticas(parseMovimientoFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.EstadisticasMovimientosResponse{
		Total:          stats.Total,
		PorTipo:        stats.PorTipo,
		ValorTotal:     stats.ValorTotal,
		UltimoRegistro: stats.UltimoRegistro,
	})
}

// ResumenUsuario godoc
// @Summary      Resumen de actividad del usuario autenticado
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ResumenUsuarioResponse
// @Router       /api/inventario/movimientos/resumen_usuario [get]
func (h *MovimientoHandler) ResumenUsuario(c *fiber.Ctx) error {
	stats, err := h.uc.ResumenUsuario(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ResumenUsuarioResponse{
		Username:         GetUsername(c),
		TotalMovimientos: stats.Total,
		PorTipo:          stats.PorTipo,
		UltimoRegistro:   stats.UltimoRegistro,
	})
}

// ExportarExcel godoc
// @Summary      Exportar el historial filtrado a Excel
// @Tags         movimientos
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/inventario/movimientos/exportar_excel [get]
func (h *MovimientoHandler) ExportarExcel(c *fiber.Ctx) error {
	filas, err := h.exportar.Filas(parseMovimientoFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	buf, err := excel.ExportarMovimientos(filas)
	if err != nil {
		return respondError(c, err)
	}
	exportacionesExcel.Inc()

	nombre := excel.NombreArchivo(time.Now())
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+nombre+`"`)
	return c.Send(buf.Bytes())
}
