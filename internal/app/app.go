package app

import (
	"context"
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/controller"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/service"
	"coursehub_backend/pkg/database"
	"coursehub_backend/pkg/logger"
	"coursehub_backend/pkg/monitoring"
	"coursehub_backend/pkg/security"
	"coursehub_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
	tracerShutdown  func(context.Context) error

	corsPolicy    *security.CORSPolicy
	limiter       *security.RateLimiter
	submitLimiter *security.RateLimiter
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	lesson     *repository.LessonRepository
	question   *repository.QuestionRepository
	enrollment *repository.EnrollmentRepository
	progress   *repository.ProgressRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	course     *service.CourseService
	lesson     *service.LessonService
	quiz       *service.QuizService
	enrollment *service.EnrollmentService
	storage    *service.StorageService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	course     *controller.CourseController
	lesson     *controller.LessonController
	quiz       *controller.QuizController
	enrollment *controller.EnrollmentController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置文件热更新回调入口
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		lesson:     repository.NewLessonRepository(db),
		question:   repository.NewQuestionRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		progress:   repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.course = service.NewCourseService(repos.course)
	s.lesson = service.NewLessonService(repos.lesson, repos.course)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.progress, repos.course, repos.lesson, rdb)
	s.quiz = service.NewQuizService(repos.question, repos.lesson, repos.course, repos.enrollment, repos.progress, db, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		course:     controller.NewCourseController(s.course, s.lesson, s.enrollment, s.auth),
		lesson:     controller.NewLessonController(s.lesson, s.enrollment, s.storage, s.auth),
		quiz:       controller.NewQuizController(s.quiz),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		health:     controller.NewHealthController(db),
	}
}

// rateLimits 全局与测验提交接口各自的限流参数
func rateLimits(cfg *config.Config) (maxRequests, submitMax int, window time.Duration) {
	window = time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests = cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	submitMax = cfg.RateLimit.SubmitMaxRequests
	if submitMax <= 0 {
		submitMax = 30
	}
	return maxRequests, submitMax, window
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	maxRequests, submitMax, window := rateLimits(cfg)

	a.corsPolicy = security.NewCORSPolicy(cfg.CORS.AllowedOrigins)
	a.limiter = security.NewRateLimiter(maxRequests, window)
	a.submitLimiter = security.NewRateLimiter(submitMax, window)

	router.Use(a.corsPolicy.Middleware())
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware(security.ByClientIP))

	// 配置热更新时白名单与限流参数同步生效
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		newMax, newSubmitMax, newWindow := rateLimits(newCfg)
		a.corsPolicy.Update(newCfg.CORS.AllowedOrigins)
		a.limiter.Update(newMax, newWindow)
		a.submitLimiter.Update(newSubmitMax, newWindow)
	})

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("coursehub", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

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

	// 等待中断信号优雅地关闭服务器（5 秒超时）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
