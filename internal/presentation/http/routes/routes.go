package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/restopos-api/internal/config"
	domainRepo "github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/internal/presentation/http/handler"
	"github.com/sangkips/restopos-api/internal/presentation/http/middleware"
	"github.com/sangkips/restopos-api/internal/presentation/http/validation"
	"github.com/sangkips/restopos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth           *handler.AuthHandler
	Product        *handler.ProductHandler
	Bill           *handler.BillHandler
	Expense        *handler.ExpenseHandler
	Dashboard      *handler.DashboardHandler
	ReportSettings *handler.ReportSettingsHandler
	Printer        *handler.PrinterHandler
	Health         *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
	Log             logrus.FieldLogger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Check)

		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router, nil
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh-token", h.Auth.RefreshToken)
		auth.POST("/revoke-token", h.Auth.RevokeToken)
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/auth/profile", h.Auth.GetProfile)

	registerProductRoutes(protected, h)
	registerBillRoutes(protected, h, deps)
	registerExpenseRoutes(protected, h)

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/stats", h.Dashboard.GetStats)
		dashboard.GET("/today", h.Dashboard.GetToday)
	}

	registerReportSettingsRoutes(protected, h)

	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.Status)
		printer.POST("/test", h.Printer.TestPrint)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}

	categories := protected.Group("/product-categories")
	{
		categories.GET("", h.Product.ListCategories)
		categories.POST("", h.Product.CreateCategory)
		categories.PUT("/:id", h.Product.RenameCategory)
		categories.DELETE("/:id", h.Product.DeleteCategory)
	}
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		TTL:  deps.Cfg.Housekeeping.IdempotencyTTL,
		Log:  deps.Log,
	})

	bills := protected.Group("/bills")
	{
		bills.POST("", idempotency, h.Bill.Create)
		bills.GET("", h.Bill.List)
		bills.GET("/:id", h.Bill.Get)
		bills.POST("/:id/print", h.Bill.Print)
	}
}

func registerExpenseRoutes(protected *gin.RouterGroup, h *Handlers) {
	expenses := protected.Group("/expenses")
	{
		expenses.GET("/categories", h.Expense.ListCategories)
		expenses.POST("/categories", h.Expense.CreateCategory)
		expenses.GET("/summary", h.Expense.Summary)
		expenses.POST("", h.Expense.Create)
		expenses.GET("", h.Expense.List)
		expenses.DELETE("/:id", h.Expense.Delete)
	}
}

func registerReportSettingsRoutes(protected *gin.RouterGroup, h *Handlers) {
	settings := protected.Group("/report-settings")
	{
		settings.GET("/schedules", h.ReportSettings.ListSchedules)
		settings.PUT("/schedules/:id", h.ReportSettings.UpdateSchedule)
		settings.GET("/emails", h.ReportSettings.GetEmails)
		settings.PUT("/emails", h.ReportSettings.UpdateEmails)
		settings.POST("/run/:type", h.ReportSettings.RunNow)
		settings.GET("/general", h.ReportSettings.GetGeneral)
		settings.PUT("/general", h.ReportSettings.UpdateGeneral)
	}
}
