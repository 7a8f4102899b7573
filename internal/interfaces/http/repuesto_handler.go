package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// RepuestoHandler maneja el catálogo de repuestos y su eliminación guardada.
type RepuestoHandler struct {
	uc    *inventory.RepuestoUseCase
	guard *inventory.DeletionGuard
}

// NewRepuestoHandler construye el handler.
func NewRepuestoHandler(uc *inventory.RepuestoUseCase, guard *inventory.DeletionGuard) *RepuestoHandler {
	return &RepuestoHandler{uc: uc, guard: guard}
}

// Crear godoc
// @Summary      Crear repuesto
// @Tags         repuestos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRepuestoRequest  true  "Datos del repuesto"
// @Success      201   {object}  dto.RepuestoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventario/repuestos [post]
func (h *RepuestoHandler) Crear(c *fiber.Ctx) error {
	var in dto.CreateRepuestoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rep, err := h.uc.Crear(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromRepuesto(rep))
}

// Obtener godoc
// @Summary      Obtener repuesto por ID
// @Tags         repuestos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.RepuestoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/repuestos/{id} [get]
func (h *RepuestoHandler) Obtener(c *fiber.Ctx) error {
	rep, err := h.uc.Obtener(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromRepuesto(rep))
}

// Listar godoc
// @Summary      Listar repuestos
// @Tags         repuestos
// @Security     Bearer
// @Produce      json
// @Param        search      query  string  false  "Busca en nombre, marca, modelo y código (sin acentos)"
// @Param        activo      query  bool    false  "Filtra por activo"
// @Param        stock_bajo  query  bool    false  "Solo repuestos bajo el mínimo"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.RepuestoListResponse
// @Router       /api/inventario/repuestos [get]
func (h *RepuestoHandler) Listar(c *fiber.Ctx) error {
	filter := repository.RepuestoFilter{
		Search:        c.Query("search"),
		SoloStockBajo: c.QueryBool("stock_bajo", false),
		Limit:         c.QueryInt("limit", 20),
		Offset:        c.QueryInt("offset", 0),
	}
	if raw := c.Query("activo"); raw != "" {
		if activo, err := strconv.ParseBool(raw); err == nil {
			filter.Activo = &activo
		}
	}
	reps, total, err := h.uc.Listar(filter)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.RepuestoListResponse{
		Results: make([]dto.RepuestoResponse, 0, len(reps)),
		Page:    dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}
	for _, rep := range reps {
		out.Results = append(out.Results, dto.FromRepuesto(rep))
	}
	return c.JSON(out)
}

// Actualizar godoc
// @Summary      Actualizar repuesto
// @Tags         repuestos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del repuesto"
// @Param        body  body  dto.UpdateRepuestoRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.RepuestoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventario/repuestos/{id} [put]
func (h *RepuestoHandler) Actualizar(c *fiber.Ctx) error {
	var in dto.UpdateRepuestoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rep, err := h.uc.Actualizar(c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromRepuesto(rep))
}

// StockBajo godoc
// @Summary      Repuestos activos bajo su stock mínimo
// @Tags         repuestos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RepuestoResponse
// @Router       /api/inventario/repuestos/stock_bajo [get]
func (h *RepuestoHandler) StockBajo(c *fiber.Ctx) error {
	reps, err := h.uc.StockBajo()
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.RepuestoResponse, 0, len(reps))
	for _, rep := range reps {
		out = append(out, dto.FromRepuesto(rep))
	}
	return c.JSON(out)
}

// Estadisticas godoc
// @Summary      Panel de estadísticas del inventario
// @Tags         repuestos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.EstadisticasRepuestosResponse
// @Router       /api/inventario/repuestos/estadisticas [get]
func (h *RepuestoHandler) Estadisticas(c *fiber.Ctx) error {
	out, err := h.uc.Estadisticas(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AjustarStock godoc
// @Summary      Ajuste manual de stock (positivo o negativo)
// @Tags         repuestos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del repuesto"
// @Param        body  body  dto.AjusteStockRequest  true  "Tipo de ajuste, cantidad y observaciones"
// @Success      201   {object}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventario/repuestos/{id}/ajustar_stock [post]
func (h *RepuestoHandler) AjustarStock(c *fiber.Ctx) error {
	var in dto.AjusteStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.AjustarStock(c.Context(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	movimientosRegistrados.WithLabelValues(mov.TipoMovimiento).Inc()
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovimiento(mov))
}

// ValidarEliminacion godoc
// @Summary      Validar si el repuesto puede eliminarse
// @Tags         repuestos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.ValidateDeleteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/repuestos/{id}/validate_delete [get]
func (h *RepuestoHandler) ValidarEliminacion(c *fiber.Ctx) error {
	out, err := h.guard.ValidarEliminacion(c.Params("id"), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SolicitarEliminacion godoc
// @Summary      Solicitar eliminación (emite desafío de confirmación)
// @Tags         repuestos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.DeleteChallengeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventario/repuestos/{id}/solicitar_eliminacion [post]
func (h *RepuestoHandler) SolicitarEliminacion(c *fiber.Ctx) error {
	out, err := h.guard.Solicitar(c.Params("id"), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConfirmarEliminacion godoc
// @Summary      Confirmar eliminación con el texto exacto del desafío
// @Tags         repuestos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmDeleteRequest  true  "Token y texto de confirmación"
// @Success      200   {object}  dto.DeleteResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /api/inventario/repuestos/confirmar_eliminacion [post]
func (h *RepuestoHandler) ConfirmarEliminacion(c *fiber.Ctx) error {
	var in dto.ConfirmDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.guard.Confirmar(c.Context(), in.Token, in.Confirmation, GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	repuestosEliminados.WithLabelValues(strconv.FormatBool(out.ForcedDeletion)).Inc()
	return c.JSON(out)
}
