package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/inventario-pos/internal/application/analytics"
	"github.com/jhoicas/inventario-pos/internal/application/auth"
	"github.com/jhoicas/inventario-pos/internal/application/insight"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/application/usecase"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name         string
	CORSOrigins  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp crea la aplicación Fiber con recover, CORS, log de requests y errores en JSON.
// recorder puede ser nil.
func NewApp(cfg AppConfig, log zerolog.Logger, recorder HTTPRecorder) *fiber.App {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorHandler,
	})
	app.Use(RequestLogger(log, recorder))
	app.Use(recover.New())
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + HeaderRequestID,
			ExposeHeaders: HeaderRequestID + ", Content-Disposition",
		}))
	}
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	UserUC       *usecase.UserUseCase
	ProductUC    *usecase.ProductUseCase
	TicketUC     *usecase.TicketUseCase
	AdjustStock  *inventory.AdjustStockUseCase
	SaleProc     *sales.Processor
	SaleQuery    *sales.QueryUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	ReportUC     *appanalytics.ReportUseCase
	Advisor      *insight.Advisor
	DB           Pinger
	Metrics      nethttp.Handler // nil = sin /metrics
	ServiceName  string
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", HealthHandler(deps.ServiceName, deps.DB))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Put("/me", userHandler.UpdateMe)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustStock)
	invGroup.Post("/adjust", inventoryHandler.Adjust)
	invGroup.Get("/movements", inventoryHandler.ListMovements)

	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleProc, deps.SaleQuery)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/export", saleHandler.Export)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt.pdf", saleHandler.Receipt)

	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/stats", dashboardHandler.GetStats)
	dashboard.Get("/sales-summary", dashboardHandler.GetSalesSummary)

	reports := protected.Group("/reports")
	analyticsHandler := NewAnalyticsHandler(deps.ReportUC)
	reports.Get("/sales", analyticsHandler.GetSalesReport)

	insights := protected.Group("/insights")
	insightHandler := NewInsightHandler(deps.Advisor, deps.DashboardUC)
	insights.Post("/analyze", insightHandler.Analyze)

	tickets := protected.Group("/tickets")
	ticketHandler := NewTicketHandler(deps.TicketUC)
	tickets.Post("/", ticketHandler.Create)
	tickets.Get("/mine", ticketHandler.ListMine)

	// Administración (rol admin)
	admin := protected.Group("/admin", RequireRole(entity.RoleAdmin))
	adminHandler := NewAdminHandler(deps.UserUC, deps.ProductUC, deps.TicketUC, deps.DashboardUC)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/products", adminHandler.ListProducts)
	admin.Get("/tickets", adminHandler.ListTickets)
	admin.Put("/tickets/:id/close", adminHandler.CloseTicket)
}
