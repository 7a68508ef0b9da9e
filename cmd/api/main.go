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
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/leads-api/docs"
	appanalytics "github.com/jhoicas/leads-api/internal/application/analytics"
	"github.com/jhoicas/leads-api/internal/application/leads"
	"github.com/jhoicas/leads-api/internal/application/ports"
	"github.com/jhoicas/leads-api/internal/domain/repository"
	infracache "github.com/jhoicas/leads-api/internal/infrastructure/cache"
	"github.com/jhoicas/leads-api/internal/infrastructure/memory"
	"github.com/jhoicas/leads-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/leads-api/internal/infrastructure/pdf"
	"github.com/jhoicas/leads-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/leads-api/internal/interfaces/http"
	"github.com/jhoicas/leads-api/pkg/config"
	"github.com/jhoicas/leads-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacén de leads: PostgreSQL o memoria (desarrollo)
	var leadRepo repository.LeadRepository
	switch cfg.DB.Driver {
	case "memory":
		leadRepo = memory.NewLeadRepository()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Msg("migraciones aplicadas")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		leadRepo = postgres.NewLeadRepository(pool)
	}

	// Caché del dashboard: Redis solo si REDIS_URL está definido
	var dashboardCache ports.DashboardCache = infracache.NoopCache{}
	if cfg.Redis.URL != "" {
		rdb, err := infracache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, dashboard sin caché")
		} else {
			defer rdb.Close()
			dashboardCache = infracache.NewRedisDashboardCache(rdb, cfg.Redis.TTL())
		}
	}

	m := metrics.New()
	clock := ports.SystemClock(cfg.App.Location())

	leadUC := leads.NewUseCase(leads.Deps{
		Repo:    leadRepo,
		Cache:   dashboardCache,
		Metrics: m,
		Clock:   clock,
		Logger:  log.Component("leads"),
	})
	dashboardUC := appanalytics.NewDashboardUseCase(appanalytics.DashboardDeps{
		Repo:    leadRepo,
		Cache:   dashboardCache,
		Report:  infrapdf.NewDashboardReportGenerator(cfg.App.Name),
		Metrics: m,
		Clock:   clock,
		Logger:  log.Component("dashboard"),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(cfg.App.IsProduction()),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Leads API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: /api sin autenticación")
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		LeadUC:      leadUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		DefaultDays: cfg.Dashboard.DefaultDays,
		Production:  cfg.App.IsProduction(),
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
