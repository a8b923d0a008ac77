package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sacm-project/sacm-api/api/swagger"
	"github.com/sacm-project/sacm-api/internal/handler"
	"github.com/sacm-project/sacm-api/internal/middleware"
	"github.com/sacm-project/sacm-api/internal/models"
	"github.com/sacm-project/sacm-api/internal/ratelimit"
	"github.com/sacm-project/sacm-api/internal/repository"
	"github.com/sacm-project/sacm-api/internal/service"
	"github.com/sacm-project/sacm-api/pkg/cache"
	"github.com/sacm-project/sacm-api/pkg/config"
	"github.com/sacm-project/sacm-api/pkg/database"
	"github.com/sacm-project/sacm-api/pkg/export"
	"github.com/sacm-project/sacm-api/pkg/logger"
	corsmiddleware "github.com/sacm-project/sacm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sacm-project/sacm-api/pkg/middleware/requestid"
	"github.com/sacm-project/sacm-api/pkg/storage"
	"github.com/sacm-project/sacm-api/pkg/upload"
)

// @title S-ACM API
// @version 1.0.0
// @description Academic content portal: authorization engine, rate governor and bulk roster import
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	fileStore, err := storage.NewLocalStorage(cfg.Files.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init file storage", "error", err)
	}

	// Counter store: Redis when configured so limits hold across
	// instances, in-process otherwise.
	var counterStore ratelimit.CounterStore
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		counterStore = ratelimit.NewRedisStore(redisClient)
	} else {
		logr.Warn("redis not configured, rate limits are per-instance only")
		counterStore = ratelimit.NewMemoryStore()
	}

	classifier, err := ratelimit.NewClassifier(cfg.RateLimit)
	if err != nil {
		logr.Sugar().Fatalw("invalid rate limit configuration", "error", err)
	}
	governor := ratelimit.NewGovernor(classifier, counterStore, logr)

	validate := validator.New()

	principalRepo := repository.NewPrincipalRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	metricsSvc := service.NewMetricsService()
	directorySvc := service.NewDirectoryService(referenceRepo, logr)
	authSvc := service.NewAuthService(principalRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	accessSvc := service.NewAccessService(principalRepo, courseRepo, metricsSvc, logr)
	courseSvc := service.NewCourseService(courseRepo, principalRepo, accessSvc, logr)
	signer := storage.NewSignedURLSigner(cfg.Files.SignedURLSecret, cfg.Files.SignedURLTTL)
	uploadValidator := upload.NewValidator(cfg.Upload.MaxFileSizeBytes, cfg.Upload.AllowedExtensions, cfg.Upload.AllowedMIMEs)
	fileSvc := service.NewFileService(courseRepo, accessSvc, principalRepo, fileStore, signer, uploadValidator, logr)
	importSvc := service.NewImportService(principalRepo, directorySvc, metricsSvc, logr, service.ImportConfig{
		MaxFileSize: cfg.Import.MaxFileSizeBytes,
		BatchSize:   cfg.Import.BatchSize,
	})
	promotionSvc := service.NewPromotionService(principalRepo, referenceRepo, logr)
	principalSvc := service.NewPrincipalService(principalRepo, export.NewCSVExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc, principalSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, fileSvc)
	fileHandler := handler.NewFileHandler(fileSvc, fileStore)
	importHandler := handler.NewImportHandler(importSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)
	principalHandler := handler.NewPrincipalHandler(principalSvc, promotionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.SecurityHeaders())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(governor, metricsSvc, logr))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/activate", authHandler.Activate)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	courses := protected.Group("/courses")
	courses.GET("", courseHandler.ListMine)
	courses.GET("/:id", courseHandler.Get)
	courses.GET("/:id/files", courseHandler.ListFiles)
	courses.POST("/:id/files", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), fileHandler.Upload)

	files := protected.Group("/files")
	files.POST("/:id/download", fileHandler.Grant)
	files.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), fileHandler.Delete)
	files.PATCH("/:id/visibility", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), fileHandler.SetVisibility)

	// The signed token carries its own authorization, no JWT required.
	api.GET("/files/download", fileHandler.Download)

	directory := protected.Group("/directory")
	directory.GET("/roles", directoryHandler.Roles)
	directory.GET("/majors", directoryHandler.Majors)
	directory.GET("/levels", directoryHandler.Levels)
	directory.GET("/semesters", directoryHandler.Semesters)
	directory.GET("/semesters/current", directoryHandler.CurrentSemester)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/principals", principalHandler.List)
	admin.GET("/principals/export", principalHandler.ExportRoster)
	admin.GET("/principals/:id", principalHandler.Get)
	admin.POST("/principals/import", importHandler.Import)
	admin.POST("/principals/promote", principalHandler.Promote)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
