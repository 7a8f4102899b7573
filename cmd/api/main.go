package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tallerpro/repuestos-api/internal/application/auth"
	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/tallerpro/repuestos-api/internal/application/setup"
	"github.com/tallerpro/repuestos-api/internal/infrastructure/postgres"
	httpRouter "github.com/tallerpro/repuestos-api/internal/interfaces/http"
	"github.com/tallerpro/repuestos-api/pkg/config"
	"github.com/tallerpro/repuestos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Service: cfg.App.Name,
		Level:   cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	dbLog := log.Component("postgres")
	if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
		dbLog.Fatal().Err(err).Msg("migraciones")
	}
	dbLog.Info().Msg("migraciones aplicadas")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		dbLog.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUsuarioRepository(pool)
	repuestoRepo := postgres.NewRepuestoRepository(pool)
	movRepo := postgres.NewMovimientoRepository(pool)
	alertaRepo := postgres.NewAlertaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	setupUC := setup.NewSetupUseCase(userRepo, cfg.Inventario.TTLDesafioEliminacion)
	movimientoUC := inventory.NewRegistrarMovimientoUseCase(txRunner, movRepo)
	repuestoUC := inventory.NewRepuestoUseCase(repuestoRepo, movimientoUC)
	alertaUC := inventory.NewAlertaUseCase(alertaRepo, repuestoRepo)
	exportarUC := inventory.NewExportarUseCase(movRepo, repuestoRepo, userRepo, cfg.Inventario.LimiteExportacion)
	guard := inventory.NewDeletionGuard(
		txRunner, repuestoRepo, movRepo, alertaRepo,
		cfg.Inventario.VentanaMovimientosRecientes,
		cfg.Inventario.TTLDesafioEliminacion,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Repuestos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		SetupUC:      setupUC,
		RepuestoUC:   repuestoUC,
		MovimientoUC: movimientoUC,
		AlertaUC:     alertaUC,
		ExportarUC:   exportarUC,
		Guard:        guard,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
