// @title        Inventario POS API
// @version      1.0
// @description  API de inventario y punto de venta multiusuario: catálogo, ventas atómicas, ajustes de stock, reportes y asesor de IA.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Token JWT con el prefijo Bearer
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/docs"
	appanalytics "github.com/jhoicas/inventario-pos/internal/application/analytics"
	"github.com/jhoicas/inventario-pos/internal/application/auth"
	"github.com/jhoicas/inventario-pos/internal/application/insight"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/ports"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/application/usecase"
	infraai "github.com/jhoicas/inventario-pos/internal/infrastructure/ai"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/excel"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/observability"
	infrapdf "github.com/jhoicas/inventario-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/inventario-pos/pkg/config"
	"github.com/jhoicas/inventario-pos/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	metrics := observability.NewMetrics("inventario_pos")

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, movementRepo, appanalytics.Thresholds{
		LowStock:   cfg.Inventory.LowStockThreshold,
		ZombieDays: cfg.Inventory.ZombieDays,
	})
	saleProcessor := sales.NewProcessor(txRunner, metrics, log.Component("sales"))
	saleQuery := sales.NewQueryUseCase(saleRepo, productRepo, userRepo,
		infrapdf.NewReceiptGenerator(), excel.NewSalesExporter())

	// Asesor de IA: sin API key queda sin configurar y responde 503.
	generator := infraai.NewFromConfig(cfg.AI)
	modelCache := newModelCache(ctx, cfg, log)
	advisor := insight.NewAdvisor(generator, modelCache, insight.Config{
		PreferredModels: cfg.AI.Models,
		ModelsCacheTTL:  cfg.AI.ModelsCacheTTL,
		RetryDelay:      cfg.AI.RetryDelay,
		Timeout:         cfg.AI.Timeout,
	}, metrics, log.Component("insight"))
	if advisor.Configured() {
		log.Info().Str("provider", cfg.AI.Provider).Strs("models", cfg.AI.Models).Msg("asesor de IA habilitado")
	} else {
		log.Warn().Str("provider", cfg.AI.Provider).Msg("asesor de IA sin API key; /api/insights responderá 503")
	}

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:         cfg.App.Name,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, log.Component("http"), metrics)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario POS API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado; /docs deshabilitado")
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(userRepo),
		ProductUC:   usecase.NewProductUseCase(txRunner, productRepo),
		TicketUC:    usecase.NewTicketUseCase(ticketRepo),
		AdjustStock: inventory.NewAdjustStockUseCase(txRunner, movementRepo),
		SaleProc:    saleProcessor,
		SaleQuery:   saleQuery,
		DashboardUC: dashboardUC,
		ReportUC:    appanalytics.NewReportUseCase(analyticsRepo),
		Advisor:     advisor,
		DB:          pool,
		Metrics:     metrics.Handler(),
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
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

// newModelCache usa Redis si REDIS_URL está definido; si no, o si Redis no responde, caché en memoria.
func newModelCache(ctx context.Context, cfg *config.Config, log *logger.Logger) ports.ModelCache {
	if cfg.Redis.URL == "" {
		return cache.NewMemoryModelCache()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rdb, err := cache.NewRedis(pingCtx, cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible; caché de modelos en memoria")
		return cache.NewMemoryModelCache()
	}
	log.Info().Msg("caché de modelos en redis")
	return cache.NewRedisModelCache(rdb, cfg.AI.Provider, log.Component("cache"))
}
