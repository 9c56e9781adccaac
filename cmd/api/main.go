package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/config"
	"github.com/sangkips/restopos-api/internal/infrastructure/cache"
	"github.com/sangkips/restopos-api/internal/infrastructure/database"
	"github.com/sangkips/restopos-api/internal/infrastructure/repository"
	"github.com/sangkips/restopos-api/internal/presentation/http/handler"
	"github.com/sangkips/restopos-api/internal/presentation/http/middleware"
	"github.com/sangkips/restopos-api/internal/presentation/http/routes"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/sangkips/restopos-api/pkg/email"
	"github.com/sangkips/restopos-api/pkg/lock"
	"github.com/sangkips/restopos-api/pkg/logger"
	"github.com/sangkips/restopos-api/pkg/oauth"
	"github.com/sangkips/restopos-api/pkg/printer"
	"github.com/sangkips/restopos-api/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	clk, err := clock.New(cfg.App.Timezone)
	if err != nil {
		log.WithError(err).Fatal("Invalid timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.AutoMigrate(db, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedDefaultData(ctx, db, log); err != nil {
		log.WithError(err).Fatal("Failed to seed default data")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("Failed to get database handle")
	}
	defer sqlDB.Close()

	health := map[string]handler.Pinger{
		"database": handler.PingFunc(sqlDB.PingContext),
	}

	// Bill numbering is serialized per owner and day. Redis extends that
	// across instances and also guards report slots.
	billLocker := lock.NewLocalLocker()
	var reportLocker lock.Locker
	if cfg.Redis.Enabled {
		var rdb *redis.Client
		rdb, err = cache.NewRedisClient(ctx, &cfg.Redis, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer rdb.Close()
		billLocker = lock.NewRedisLocker(rdb)
		reportLocker = billLocker
		health["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewProductCategoryRepository(db)
	billRepo := repository.NewBillRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	analyticsRepo := repository.NewSalesAnalyticsRepository(db)
	scheduleRepo := repository.NewReportScheduleRepository(db)
	settingRepo := repository.NewGlobalSettingRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	emailService := email.NewEmailService(email.Config{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		UseTLS:    cfg.Email.UseTLS,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})

	google := oauth.NewGoogleSignIn(oauth.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		StateSecret:  cfg.JWT.Secret,
	})

	// Initialize thermal printer
	printerTarget := cfg.Printer.Address
	if cfg.Printer.Type == string(printer.KindUSB) {
		printerTarget = cfg.Printer.USBPath
	}
	thermalPrinter, err := printer.New(cfg.Printer.Type, printerTarget)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize printer, printing disabled")
		thermalPrinter = printer.Disabled()
	}

	// Initialize services
	dispatcher := service.NewReportDispatcher(billRepo, expenseRepo, emailService, afero.NewOsFs(), clk, service.ReportDispatcherConfig{
		Dir:            cfg.Report.Dir,
		XLSXEnabled:    cfg.Report.XLSXEnabled,
		CurrencySymbol: cfg.Report.CurrencySymbol,
	}, log.WithField("module", "report"))
	authService := service.NewAuthService(userRepo, tokenRepo, jwtManager, google, cfg.JWT.RefreshExpiry, log.WithField("module", "auth"))
	productService := service.NewProductService(productRepo)
	categoryService := service.NewProductCategoryService(categoryRepo)
	billService := service.NewBillService(billRepo, productRepo, billLocker, clk, log.WithField("module", "bill"))
	expenseService := service.NewExpenseService(expenseRepo, clk)
	dashboardService := service.NewDashboardService(billRepo, analyticsRepo, clk)
	reportSettingsService := service.NewReportSettingsService(scheduleRepo, settingRepo, dispatcher, clk, cfg.Report.FallbackRecipient)
	printerService := service.NewPrinterService(thermalPrinter, billRepo, reportSettingsService, clk, cfg.Printer.CharWidth, log.WithField("module", "printer"))

	scheduler := service.NewReportScheduler(scheduleRepo, settingRepo, dispatcher, reportLocker, clk, service.ReportSchedulerConfig{
		PollInterval:      cfg.Report.PollInterval,
		Debounce:          cfg.Report.Debounce,
		FallbackRecipient: cfg.Report.FallbackRecipient,
	}, log.WithField("module", "scheduler"))
	housekeeping := service.NewHousekeepingService(tokenRepo, idempotencyRepo, cfg.JWT.RefreshExpiry, log.WithField("module", "housekeeping"))

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.OAuthRedirects{
			SuccessURL: cfg.OAuth.FrontendSuccessURL,
			ErrorURL:   cfg.OAuth.FrontendErrorURL,
		}),
		Product:        handler.NewProductHandler(productService, categoryService),
		Bill:           handler.NewBillHandler(billService, printerService),
		Expense:        handler.NewExpenseHandler(expenseService),
		Dashboard:      handler.NewDashboardHandler(dashboardService),
		ReportSettings: handler.NewReportSettingsHandler(reportSettingsService),
		Printer:        handler.NewPrinterHandler(printerService),
		Health:         handler.NewHealthHandler(cfg.App.Name, health),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFor(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.Duration)*time.Second,
	))
	defer rateLimiter.Stop()

	router, err := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Log:             log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to set up routes")
	}

	// Background jobs
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()
	if err := housekeeping.Start(cfg.Housekeeping.Schedule); err != nil {
		log.WithError(err).Fatal("Invalid housekeeping schedule")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.App.Port,
			"env":      cfg.App.Env,
			"timezone": clk.Location().String(),
		}).Infof("Starting %s server", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	housekeeping.Stop()
	<-schedulerDone
	log.Info("Server exited")
}
