package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/uni-adm-api/api/swagger"
	"github.com/noah-isme/uni-adm-api/internal/handler"
	"github.com/noah-isme/uni-adm-api/internal/middleware"
	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/internal/repository"
	"github.com/noah-isme/uni-adm-api/internal/service"
	"github.com/noah-isme/uni-adm-api/pkg/cache"
	"github.com/noah-isme/uni-adm-api/pkg/config"
	"github.com/noah-isme/uni-adm-api/pkg/database"
	"github.com/noah-isme/uni-adm-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-adm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-adm-api/pkg/middleware/requestid"
)

// @title University Administration API
// @version 1.0.0
// @description Tuition billing and course registration backend
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uni-adm-api",
	})
	studentSvc := service.NewStudentService(studentRepo, referenceRepo, nil, logr)
	courseSvc := service.NewCourseService(courseRepo, nil, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, nil, logr)
	tuitionSvc := service.NewTuitionService(registrationRepo, referenceRepo, studentRepo, semesterRepo, feeRepo, logr)
	paymentSvc := service.NewPaymentService(feeRepo, paymentRepo, referenceRepo, semesterRepo, cfg.Billing.EarlyPaymentFallbackPercent, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, studentRepo, courseRepo, semesterRepo, tuitionSvc, cacheRepo, cfg.Billing.SummaryCacheTTL, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	semesterHandler := handler.NewSemesterHandler(semesterSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc, metricsSvc)
	feeHandler := handler.NewFeeHandler(tuitionSvc, paymentSvc, metricsSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		start := time.Now()
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		metricsSvc.ObserveDBQuery("ping", time.Since(start))
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar)
	bursarOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleBursar)

	students := protected.Group("/students")
	{
		students.GET("", staffOnly, studentHandler.List)
		students.GET("/:id", middleware.RBAC(
			string(models.RoleAdmin), string(models.RoleRegistrar), string(models.RoleBursar),
			middleware.SelfAccess,
		), studentHandler.Get)
		students.POST("", staffOnly, studentHandler.Create)
		students.PUT("/:id", staffOnly, studentHandler.Update)
		students.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), studentHandler.Delete)
	}

	courses := protected.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.GET("/:id", courseHandler.Get)
		courses.POST("", staffOnly, courseHandler.Create)
		courses.PUT("/:id", staffOnly, courseHandler.Update)
		courses.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Delete)
	}

	semesters := protected.Group("/semesters")
	{
		semesters.GET("", semesterHandler.List)
		semesters.GET("/:id", semesterHandler.Get)
		semesters.POST("", staffOnly, semesterHandler.Create)
		semesters.PUT("/:id", staffOnly, semesterHandler.Update)
	}

	registrations := protected.Group("/registrations")
	{
		registrations.GET("", registrationHandler.List)
		registrations.GET("/summary", registrationHandler.Summary)
		registrations.POST("", registrationHandler.Register)
		registrations.PUT("/:id/status", registrationHandler.UpdateStatus)
		registrations.POST("/finalize", staffOnly,
			middleware.Audit(userRepo, models.AuditActionFinalize, "registrations"),
			registrationHandler.Finalize)
	}

	fees := protected.Group("/fees")
	{
		fees.GET("", feeHandler.List)
		fees.GET("/credit-check", feeHandler.CheckCreditLimit)
		fees.GET("/:id", feeHandler.Get)
		fees.POST("/calculate", staffOnly,
			middleware.Audit(userRepo, models.AuditActionFeeCalculated, "fees"),
			feeHandler.Calculate)
		fees.GET("/:id/payments", paymentHandler.List)
		fees.POST("/:id/payments", bursarOnly,
			middleware.Audit(userRepo, models.AuditActionPaymentAccepted, "payments"),
			paymentHandler.Process)
	}

	protected.GET("/payments/:paymentId", bursarOnly, paymentHandler.Get)
	protected.GET("/system/status", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Status)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
