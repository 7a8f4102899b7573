package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/repuestos-api/internal/application/dto"
	"github.com/tallerpro/repuestos-api/internal/application/setup"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// SetupHandler maneja el bootstrap del primer administrador y la
// administración de usuarios.
type SetupHandler struct {
	uc *setup.SetupUseCase
}

// NewSetupHandler construye el handler.
func NewSetupHandler(uc *setup.SetupUseCase) *SetupHandler {
	return &SetupHandler{uc: uc}
}

// EstadoBootstrap godoc
// @Summary      Consultar si existe un super-administrador
// @Tags         setup
// @Produce      json
// @Success      200  {object}  dto.AdminSetupStatusResponse
// @Router       /api/setup/admin-status [get]
func (h *SetupHandler) EstadoBootstrap(c *fiber.Ctx) error {
	out, err := h.uc.EstadoBootstrap()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CrearPrimerAdmin godoc
// @Summary      Crear el primer super-administrador (un solo uso)
// @Tags         setup
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdminRequest  true  "Credenciales del administrador"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/setup/create-admin [post]
func (h *SetupHandler) CrearPrimerAdmin(c *fiber.Ctx) error {
	var in dto.CreateAdminRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CrearPrimerAdmin(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// EstadoSistema godoc
// @Summary      Estado general del sistema
// @Tags         setup
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SystemStatusResponse
// @Router       /api/setup/system-status [get]
func (h *SetupHandler) EstadoSistema(c *fiber.Ctx) error {
	out, err := h.uc.EstadoSistema()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListarUsuarios godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Busca en username, nombre y email"
// @Param        role    query  string  false  "Filtra por rol"
// @Param        limit   query  int     false  "Límite"  default(10)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.UserListResponse
// @Router       /api/users [get]
func (h *SetupHandler) ListarUsuarios(c *fiber.Ctx) error {
	filter := repository.UsuarioFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Limit:  c.QueryInt("limit", 10),
		Offset: c.QueryInt("offset", 0),
	}
	users, total, err := h.uc.ListarUsuarios(filter)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.UserListResponse{
		Users: make([]dto.UserResponse, 0, len(users)),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}
	for _, u := range users {
		out.Users = append(out.Users, dto.FromUsuario(u))
	}
	return c.JSON(out)
}

// CrearUsuario godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *SetupHandler) CrearUsuario(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CrearUsuario(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ActualizarUsuario godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *SetupHandler) ActualizarUsuario(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ActualizarUsuario(c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SolicitarEliminacion godoc
// @Summary      Solicitar eliminación de un usuario (emite desafío)
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.DeleteChallengeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/solicitar-eliminacion [post]
func (h *SetupHandler) SolicitarEliminacion(c *fiber.Ctx) error {
	out, err := h.uc.SolicitarEliminacion(GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConfirmarEliminacion godoc
// @Summary      Confirmar eliminación de un usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmDeleteRequest  true  "Token y texto de confirmación"
// @Success      200   {object}  dto.DeleteResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /api/users/confirmar-eliminacion [post]
func (h *SetupHandler) ConfirmarEliminacion(c *fiber.Ctx) error {
	var in dto.ConfirmDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ConfirmarEliminacion(GetUserID(c), GetRole(c), in.Token, in.Confirmation)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Roles godoc
// @Summary      Catálogo de roles
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleDTO
// @Router       /api/users/roles [get]
func (h *SetupHandler) Roles(c *fiber.Ctx) error {
	return c.JSON(h.uc.Roles())
}
