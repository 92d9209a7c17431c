package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mindquest/internal/config"
	"github.com/yourusername/mindquest/internal/domain/repository"
	"github.com/yourusername/mindquest/internal/handler"
	"github.com/yourusername/mindquest/internal/middleware"
	memoryRepo "github.com/yourusername/mindquest/internal/repository/memory"
	pgRepo "github.com/yourusername/mindquest/internal/repository/postgres"
	redisRepo "github.com/yourusername/mindquest/internal/repository/redis"
	"github.com/yourusername/mindquest/internal/service"
	"github.com/yourusername/mindquest/internal/web"
	"github.com/yourusername/mindquest/pkg/auth"
	"github.com/yourusername/mindquest/pkg/auth/manager"
	"github.com/yourusername/mindquest/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := cfg.App.IsProduction()
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Database.Debug)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	sqlDB, err := database.GetSQLDB(db)
	if err != nil {
		log.Printf("Failed to get sql.DB: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Кеш: Redis, если настроен; иначе память процесса (только для разработки)
	var cacheRepo repository.CacheRepository
	if cfg.Redis.Enabled() {
		redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Println("Successfully connected to Redis")

		cacheRepo, err = redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
	} else {
		log.Println("Redis не настроен: используется кеш в памяти процесса")
		cacheRepo = memoryRepo.NewCacheRepo()
	}

	// Инициализируем репозитории
	store := pgRepo.NewStore(db)
	userRepo := pgRepo.NewUserRepo(db)

	// Инициализация JWTService и SessionManager
	jwtService, err := auth.NewJWTService(cfg.Auth.SessionSecret, time.Duration(cfg.Auth.SessionLifetimeHrs)*time.Hour)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}
	sessions, err := manager.NewSessionManager(jwtService, cacheRepo)
	if err != nil {
		log.Printf("Failed to initialize SessionManager: %v", err)
		os.Exit(1)
	}
	sessions.SetCookieSecure(cfg.Auth.CookieSecure)

	// Письма отправляются только при заданном ключе Resend
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.ResendAPIKey != "" {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize EmailService: %v", err)
			os.Exit(1)
		}
		emailService = resendService
		log.Println("Resend: приветственные письма включены")
	}

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, emailService, cfg.Auth.BCryptCost)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	quizService := service.NewQuizService(store)

	// Инициализируем обработчики
	quizHandler := handler.NewQuizHandler(quizService, sessions)
	authHandler := handler.NewAuthHandler(authService, sessions)
	apiHandler := handler.NewAPIHandler(quizService, map[string]handler.HealthCheck{
		"database": sqlDB.PingContext,
		"cache":    cacheRepo.Ping,
	})

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	tmpl, err := web.Templates()
	if err != nil {
		log.Printf("Failed to parse templates: %v", err)
		os.Exit(1)
	}
	router.SetHTMLTemplate(tmpl)

	handler.RegisterRoutes(router, handler.RouterDeps{
		Quiz:        quizHandler,
		Auth:        authHandler,
		API:         apiHandler,
		Middleware:  middleware.NewAuthMiddleware(sessions),
		RateLimiter: middleware.NewRateLimiter(cacheRepo),
		AuthLimit: middleware.StrictAuthRateLimitConfig(
			cfg.RateLimit.Requests,
			time.Duration(cfg.RateLimit.WindowSec)*time.Second,
		),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
