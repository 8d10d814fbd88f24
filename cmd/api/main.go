package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/primeops/primeops-api/api/swagger"
	"github.com/primeops/primeops-api/internal/handler"
	"github.com/primeops/primeops-api/internal/middleware"
	"github.com/primeops/primeops-api/internal/models"
	"github.com/primeops/primeops-api/internal/repository"
	"github.com/primeops/primeops-api/internal/service"
	"github.com/primeops/primeops-api/pkg/cache"
	"github.com/primeops/primeops-api/pkg/config"
	"github.com/primeops/primeops-api/pkg/database"
	"github.com/primeops/primeops-api/pkg/logger"
	corsmiddleware "github.com/primeops/primeops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/primeops/primeops-api/pkg/middleware/requestid"
	"github.com/primeops/primeops-api/pkg/storage"
)

// @title PrimeOps API
// @version 1.0.0
// @description Office management API covering lead lifecycle, admissions and accounting
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Leads.CacheEnabled || cfg.Finance.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	leadCache := service.NewCacheService(cacheRepo, metricsService, cfg.Leads.CacheTTL, logr, cfg.Leads.CacheEnabled)
	financeCache := service.NewCacheService(cacheRepo, metricsService, cfg.Finance.SummaryCacheTTL, logr, cfg.Finance.CacheEnabled)

	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	leadService := service.NewLeadService(leadRepo, catalogRepo, userRepo, leadCache, cfg.Leads.DedupeWindow, validate, logr)
	catalogService := service.NewCatalogService(catalogRepo, logr)
	feeService := service.NewFeeService(feeRepo, leadRepo, validate, logr)
	financeService := service.NewFinanceService(incomeRepo, financeCache, cfg.Finance.SummaryCacheTTL, validate, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Export.URLSecret, cfg.Export.ResultTTL)
	reportService := service.NewReportService(financeService, leadService, exportStore, signer, service.ReportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Export.ResultTTL,
		Workers:   cfg.Export.Workers,
	}, logr)
	reportService.Start(context.Background())
	defer reportService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	leadHandler := handler.NewLeadHandler(leadService)
	admissionHandler := handler.NewAdmissionHandler(leadService, feeService)
	accountingHandler := handler.NewAccountingHandler(feeService, financeService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.JWT(authService), authHandler.Me)

	authed := api.Group("", middleware.JWT(authService))

	marketing := middleware.RequireRoles(models.RoleDigitalMarketing)
	leadViewers := middleware.RequireRoles(models.RoleDigitalMarketing, models.RoleAdmin, models.RoleSuperAdmin)
	admission := middleware.RequireRoles(models.RoleAdmission, models.RoleAdmin, models.RoleSuperAdmin)
	accountant := middleware.RequireRoles(models.RoleAccountant)
	accounting := middleware.RequireRoles(models.RoleAccountant, models.RoleAdmin, models.RoleSuperAdmin)

	leads := authed.Group("/leads")
	{
		leads.POST("", marketing, leadHandler.Create)
		leads.POST("/bulk", marketing, leadHandler.BulkImport)
		leads.GET("", leadViewers, leadHandler.List)
		leads.POST("/:id/assign", marketing, leadHandler.Assign)
		leads.PATCH("/:id/assign", marketing, leadHandler.Assign)
	}

	adm := authed.Group("/admission")
	{
		adm.GET("/leads", admission, admissionHandler.ListLeads)
		adm.PATCH("/leads/:id/status", admission, admissionHandler.UpdateStatus)
		adm.POST("/fees", middleware.RequireRoles(models.RoleAdmission), admissionHandler.SubmitFee)
		adm.GET("/fees", middleware.RequireRoles(models.RoleAdmission, models.RoleAccountant, models.RoleAdmin, models.RoleSuperAdmin), admissionHandler.ListFees)
	}

	// Ledger views are open to management, but every mutation of the books
	// stays with the accountant.
	acc := authed.Group("/accounting")
	{
		acc.GET("/fees", accounting, accountingHandler.ListFees)
		acc.PATCH("/fees/:id/approve", accountant, accountingHandler.ApproveFee)
		acc.PATCH("/fees/:id/reject", accountant, accountingHandler.RejectFee)
		acc.POST("/income", accountant, accountingHandler.AddIncome)
		acc.GET("/income", accounting, accountingHandler.ListIncome)
		acc.POST("/expense", accountant, accountingHandler.AddExpense)
		acc.GET("/expense", accounting, accountingHandler.ListExpense)
		acc.DELETE("/expense/:id", accountant, accountingHandler.DeleteExpense)
		acc.GET("/summary", accounting, accountingHandler.Summary)
		acc.GET("/summary/export", accounting, accountingHandler.ExportSummary)
	}

	reports := authed.Group("/reports", accounting)
	{
		reports.POST("", reportHandler.Create)
		reports.GET("/:id", reportHandler.Get)
	}
	api.GET("/export/:token", reportHandler.Download)

	authed.GET("/courses", catalogHandler.ListCourses)
	authed.GET("/batches", catalogHandler.ListBatches)
	authed.GET("/batches/:id/students", catalogHandler.ListBatchStudents)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
