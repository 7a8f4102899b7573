package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/repuestos-api/internal/application/auth"
	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/tallerpro/repuestos-api/internal/application/setup"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	SetupUC      *setup.SetupUseCase
	RepuestoUC   *inventory.RepuestoUseCase
	MovimientoUC *inventory.RegistrarMovimientoUseCase
	AlertaUC     *inventory.AlertaUseCase
	ExportarUC   *inventory.ExportarUseCase
	Guard        *inventory.DeletionGuard
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público, perfil protegido)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", AuthMiddleware(deps.JWTSecret), authHandler.Logout)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Setup (bootstrap de un solo uso, público; estado del sistema protegido)
	setupHandler := NewSetupHandler(deps.SetupUC)
	setupGroup := api.Group("/setup")
	setupGroup.Get("/admin-status", setupHandler.EstadoBootstrap)
	setupGroup.Post("/create-admin", setupHandler.CrearPrimerAdmin)
	setupGroup.Get("/system-status", AuthMiddleware(deps.JWTSecret), setupHandler.EstadoSistema)

	// Rutas protegidas (requieren token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Administración de usuarios (gestión gated por capacidad)
	users := protected.Group("/users", RequireCapability(entity.CapGestionarUsuarios))
	users.Get("/roles", setupHandler.Roles)
	users.Post("/confirmar-eliminacion", setupHandler.ConfirmarEliminacion)
	users.Get("/", setupHandler.ListarUsuarios)
	users.Post("/", setupHandler.CrearUsuario)
	users.Put("/:id", setupHandler.ActualizarUsuario)
	users.Post("/:id/solicitar-eliminacion", setupHandler.SolicitarEliminacion)

	inventario := protected.Group("/inventario")

	// Repuestos: lectura para cualquier usuario autenticado, escritura gated
	repuestoHandler := NewRepuestoHandler(deps.RepuestoUC, deps.Guard)
	repuestos := inventario.Group("/repuestos")
	repuestos.Get("/stock_bajo", repuestoHandler.StockBajo)
	repuestos.Get("/estadisticas", repuestoHandler.Estadisticas)
	repuestos.Post("/confirmar_eliminacion", repuestoHandler.ConfirmarEliminacion)
	repuestos.Get("/", repuestoHandler.Listar)
	repuestos.Post("/", RequireCapability(entity.CapGestionarRepuestos), repuestoHandler.Crear)
	repuestos.Get("/:id", repuestoHandler.Obtener)
	repuestos.Put("/:id", RequireCapability(entity.CapGestionarRepuestos), repuestoHandler.Actualizar)
	repuestos.Post("/:id/ajustar_stock", RequireCapability(entity.CapRegistrarMovimientos), repuestoHandler.AjustarStock)
	repuestos.Get("/:id/validate_delete", repuestoHandler.ValidarEliminacion)
	repuestos.Post("/:id/solicitar_eliminacion", repuestoHandler.SolicitarEliminacion)

	// Movimientos: el libro del inventario
	movimientoHandler := NewMovimientoHandler(deps.MovimientoUC, deps.ExportarUC)
	movimientos := inventario.Group("/movimientos")
	movimientos.Get("/estadisticas", RequireCapability(entity.CapVerMovimientos), movimientoHandler.Estadisticas)
	movimientos.Get("/resumen_usuario", RequireCapability(entity.CapVerMovimientos), movimientoHandler.ResumenUsuario)
	movimientos.Get("/exportar_excel", RequireCapability(entity.CapExportarMovimientos), movimientoHandler.ExportarExcel)
	movimientos.Post("/entrada_repuestos", RequireCapability(entity.CapRegistrarMovimientos), movimientoHandler.EntradaRepuestos)
	movimientos.Get("/", RequireCapability(entity.CapVerMovimientos), movimientoHandler.Listar)
	movimientos.Post("/", RequireCapability(entity.CapRegistrarMovimientos), movimientoHandler.Registrar)

	// Alertas de stock bajo
	alertaHandler := NewAlertaHandler(deps.AlertaUC)
	alertas := inventario.Group("/alertas")
	alertas.Get("/", alertaHandler.Listar)
	alertas.Post("/:id/marcar_notificada", RequireCapability(entity.CapGestionarAlertas), alertaHandler.MarcarNotificada)
	alertas.Post("/:id/marcar_resuelta", RequireCapability(entity.CapGestionarAlertas), alertaHandler.MarcarResuelta)
	alertas.Post("/:id/ignorar", RequireCapability(entity.CapGestionarAlertas), alertaHandler.Ignorar)
}
