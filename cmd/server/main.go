package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/eventmarket-backend/internal/config"
	"github.com/ignatzorin/eventmarket-backend/internal/db"
	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	httpHandlers "github.com/ignatzorin/eventmarket-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/eventmarket-backend/internal/http/router"
	"github.com/ignatzorin/eventmarket-backend/internal/logger"
	"github.com/ignatzorin/eventmarket-backend/internal/payments"
	"github.com/ignatzorin/eventmarket-backend/internal/repository"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
	"github.com/ignatzorin/eventmarket-backend/internal/session"
	"github.com/ignatzorin/eventmarket-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Отзыв токенов: Redis, если настроен, иначе память процесса.
	var (
		redisClient *redis.Client
		revoker     session.Revoker
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("main: ошибка закрытия redis: %v", err)
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("main: redis недоступен: %v", err)
		}
		revoker = session.NewRedisRevoker(redisClient)
	} else {
		log.Printf("main: REDIS_ADDR не задан, отозванные токены хранятся в памяти")
		revoker = session.NewMemoryRevoker()
	}

	gateway, err := payments.New(cfg)
	if err != nil {
		log.Fatalf("main: ошибка инициализации платёжного шлюза: %v", err)
	}

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	requestRepo := repository.NewServiceRequestRepository(dbConn)
	pitchRepo := repository.NewPitchRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	cache := service.NewCacheService(ctx)
	notifier := service.NewNotifier(notificationRepo, ws.NewNotificationPusher(hub), cfg.NotificationTimeout)

	authService := service.NewAuthService(userRepo, tokenManager, revoker, cache, cfg.StatusCacheTTL)
	requestService := service.NewRequestService(requestRepo, pitchRepo, paymentRepo, notifier)
	pitchService := service.NewPitchService(pitchRepo, requestRepo, notifier)
	paymentService := service.NewPaymentService(paymentRepo, requestRepo, pitchRepo, userRepo, gateway, notifier, service.PaymentPolicyFromConfig(cfg))
	reviewService := service.NewReviewService(reviewRepo, requestRepo, userRepo, notifier,
		valueobject.RatingRange{Min: cfg.RatingMin, Max: cfg.RatingMax})
	notificationService := service.NewNotificationService(notificationRepo)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authService, httpRouter.Handlers{
		Auth:          httpHandlers.NewAuthHandler(authService),
		Requests:      httpHandlers.NewRequestHandler(requestService, pitchService),
		Pitches:       httpHandlers.NewPitchHandler(pitchService),
		Payments:      httpHandlers.NewPaymentHandler(paymentService),
		Reviews:       httpHandlers.NewReviewHandler(reviewService),
		Notifications: httpHandlers.NewNotificationHandler(notificationService),
		WS:            httpHandlers.NewWSHandler(hub, authService, cfg.AllowedOrigins),
		Health:        httpHandlers.NewHealthHandler(dbConn, redisClient),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s (платежи: %s)", cfg.HTTPPort, gateway.Name())

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
