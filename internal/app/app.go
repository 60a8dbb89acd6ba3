package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"prepmate_backend/internal/config"
	"prepmate_backend/internal/controller"
	"prepmate_backend/internal/repository"
	"prepmate_backend/internal/service"
	"prepmate_backend/pkg/configwatcher"
	"prepmate_backend/pkg/database"
	"prepmate_backend/pkg/logger"
	"prepmate_backend/pkg/monitoring"
	"prepmate_backend/pkg/security"
	"prepmate_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user            *repository.UserRepository
	quizResult      *repository.QuizResultRepository
	interviewResult *repository.InterviewResultRepository
	quizSession     *repository.QuizSessionRepository
}

type services struct {
	gemini    *service.GeminiService
	storage   *service.StorageService
	auth      *service.AuthService
	user      *service.UserService
	quiz      *service.QuizService
	interview *service.InterviewService
	stats     *service.StatsService
}

type controllers struct {
	auth      *controller.AuthController
	quiz      *controller.QuizController
	interview *controller.InterviewController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:            repository.NewUserRepository(db),
		quizResult:      repository.NewQuizResultRepository(db),
		interviewResult: repository.NewInterviewResultRepository(db),
		quizSession:     repository.NewQuizSessionRepository(rdb, cfg.Quiz.SessionTTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.gemini = service.NewGeminiService(cfg)
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.quiz = service.NewQuizService(s.gemini, repos.quizSession, repos.quizResult, cfg.Quiz.QuestionCount)
	s.interview = service.NewInterviewService(s.gemini, repos.interviewResult, s.storage, cfg.Interview)
	s.stats = service.NewStatsService(repos.quizResult, repos.user, s.gemini)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, cfg *config.Config) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.user),
		quiz:      controller.NewQuizController(s.quiz),
		interview: controller.NewInterviewController(s.interview, cfg.Interview),
		dashboard: controller.NewDashboardController(s.stats),
		health:    controller.NewHealthController(db, s.gemini),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
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

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, database.ShouldMigrate(cfg.Server.Mode, cfg.ForceMigrate))
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, cfg)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("prepmate-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// Pick up Gemini model changes without a restart.
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		services.gemini.SetModel(newCfg.Gemini.Model)
		logger.Log.Info("Config reloaded", zap.String("geminiModel", newCfg.Gemini.Model))
	})

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
