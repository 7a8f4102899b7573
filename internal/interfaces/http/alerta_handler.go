package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// AlertaHandler maneja las alertas de stock bajo.
type AlertaHandler struct {
	uc *inventory.AlertaUseCase
}

// NewAlertaHandler construye el handler.
func NewAlertaHandler(uc *inventory.AlertaUseCase) *AlertaHandler {
	return &AlertaHandler{uc: uc}
}

// Listar godoc
// @Summary      Listar alertas (pendientes primero, luego por fecha)
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Param        estado       query  string  false  "PENDIENTE | NOTIFICADA | RESUELTA | IGNORADA"
// @Param        repuesto_id  query  string  false  "Filtra por repuesto"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AlertaListResponse
// @Router       /api/inventario/alertas [get]
func (h *AlertaHandler) Listar(c *fiber.Ctx) error {
	filter := repository.AlertaFilter{
		RepuestoID: c.Query("repuesto_id"),
		Estado:     c.Query("estado"),
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}
	alertas, total, err := h.uc.Listar(filter)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.AlertaListResponse{
		Results: make([]dto.AlertaResponse, 0, len(alertas)),
		Page:    dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}
	for _, a := range alertas {
		out.Results = append(out.Results, dto.FromAlerta(a))
	}
	return c.JSON(out)
}

// MarcarNotificada godoc
// @Summary      Marcar alerta como notificada (solo desde PENDIENTE)
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la alerta"
// @Success      200  {object}  dto.AlertaResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventario/alertas/{id}/marcar_notificada [post]
func (h *AlertaHandler) MarcarNotificada(c *fiber.Ctx) error {
	a, err := h.uc.MarcarNotificada(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromAlerta(a))
}

// MarcarResuelta godoc
// @Summary      Resolver una alerta (terminal)
// @Tags         alertas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la alerta"
// @Param        body  body  dto.ResolverAlertaRequest  false  "Observaciones"
// @Success      200   {object}  dto.AlertaResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/alertas/{id}/marcar_resuelta [post]
func (h *AlertaHandler) MarcarResuelta(c *fiber.Ctx) error {
	var in dto.ResolverAlertaRequest
	_ = c.BodyParser(&in)
	a, err := h.uc.MarcarResuelta(c.Params("id"), GetUserID(c), in.Observaciones)
	if err != nil {
		return respondError(c, err)
	}
	alertasCerradas.WithLabelValues(entity.AlertaResuelta).Inc()
	return c.JSON(dto.FromAlerta(a))
}

// Ignorar godoc
// @Summary      Ignorar una alerta (terminal)
// @Tags         alertas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la alerta"
// @Param        body  body  dto.ResolverAlertaRequest  false  "Observaciones"
// @Success      200   {object}  dto.AlertaResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/alertas/{id}/ignorar [post]
func (h *AlertaHandler) Ignorar(c *fiber.Ctx) error {
	var in dto.ResolverAlertaRequest
	_ = c.BodyParser(&in)
	a, err := h.uc.Ignorar(c.Params("id"), GetUserID(c), in.Observaciones)
	if err != nil {
		return respondError(c, err)
	}
	alertasCerradas.WithLabelValues(entity.AlertaIgnorada).Inc()
	return c.JSON(dto.FromAlerta(a))
}
