package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/internal/controller"
	"skill_matrix_backend/internal/repository"
	"skill_matrix_backend/internal/service"
	"skill_matrix_backend/pkg/database"
	"skill_matrix_backend/pkg/logger"
	"skill_matrix_backend/pkg/monitoring"
	"skill_matrix_backend/pkg/security"
	"skill_matrix_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	services  *services
	sweepStop context.CancelFunc
	sweepDone chan struct{}
}

type repositories struct {
	employee   *repository.EmployeeRepository
	skill      *repository.SkillRepository
	template   *repository.TemplateRepository
	assessment *repository.AssessmentRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	skill      *service.SkillService
	template   *service.TemplateService
	assessment *service.AssessmentService
	autoSubmit *service.AutoSubmitService
	dashboard  *service.DashboardService
}

type controllers struct {
	auth       *controller.AuthController
	skill      *controller.SkillController
	template   *controller.TemplateController
	assessment *controller.AssessmentController
	dashboard  *controller.DashboardController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		employee:   repository.NewEmployeeRepository(db),
		skill:      repository.NewSkillRepository(db),
		template:   repository.NewTemplateRepository(db),
		assessment: repository.NewAssessmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.employee, cfg)
	s.skill = service.NewSkillService(repos.skill, repos.employee)
	s.template = service.NewTemplateService(repos.template, repos.assessment, rdb, cfg)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.template, s.skill, cfg)
	s.autoSubmit = service.NewAutoSubmitService(repos.assessment, s.assessment,
		time.Duration(cfg.Assessment.SweepIntervalSeconds)*time.Second)
	s.dashboard = service.NewDashboardService(repos.assessment, repos.skill, cfg.Assessment.DefaultPassingScore)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		skill:      controller.NewSkillController(s.skill),
		template:   controller.NewTemplateController(s.template, s.storage),
		assessment: controller.NewAssessmentController(s.assessment),
		dashboard:  controller.NewDashboardController(s.dashboard),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	ctx, cancel := context.WithCancel(context.Background())
	a.sweepStop = cancel
	a.sweepDone = make(chan struct{})
	go func() {
		defer close(a.sweepDone)
		s.autoSubmit.Run(ctx)
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// The snapshot cache is a read-through layer; the service runs
		// without it.
		logger.Log.Warn("Redis unavailable, running without snapshot cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("skill-matrix", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the expiry sweep before the server so no finalization runs
	// against a closing DB pool.
	if a.sweepStop != nil {
		a.sweepStop()
		<-a.sweepDone
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
