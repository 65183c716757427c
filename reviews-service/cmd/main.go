package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storereviews/pkg/logger"
	"storereviews/reviews-service/internal/app/reviews/config"
	"storereviews/reviews-service/internal/app/reviews/handler"
	"storereviews/reviews-service/internal/app/reviews/infrastructure/messaging"
	"storereviews/reviews-service/internal/app/reviews/infrastructure/migration"
	"storereviews/reviews-service/internal/app/reviews/processor"
	"storereviews/reviews-service/internal/app/reviews/repository"
	"storereviews/reviews-service/internal/app/reviews/service"
	"storereviews/reviews-service/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("reviews-service", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "reviews-service", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run сам закрывает пул, Redis и Kafka, Fatal только после возврата
	if err := run(ctx, cfg); err != nil {
		stop()
		logger.Fatal().Err(err).Msg("Reviews Service failed")
	}

	logger.Info().Msg("Reviews Service stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.RunMigrations {
		if err := runMigrations(cfg.Database); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	pool, err := connectPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	db, err := openGorm(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to initialize GORM: %w", err)
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// Без Redis проверка отзыва токенов отвечает 500, но публичное чтение работает
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis is unavailable")
	} else {
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}
	pingCancel()

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	txScope := repository.NewGormTransactionScope(db)
	blacklist := repository.NewRedisTokenBlacklist(redisClient)

	ratingService := service.NewStoreRatingService(txScope, storeRepo)
	reviewService := service.NewReviewService(
		txScope,
		reviewRepo,
		userRepo,
		storeRepo,
		ratingService,
		kafkaProducer,
	)

	if cfg.Reconcile.Enabled {
		scheduler := processor.NewCronScheduler(ratingService)
		if err := scheduler.Start(ctx, cfg.Reconcile.Schedule); err != nil {
			return fmt.Errorf("failed to start reconciliation scheduler %q: %w", cfg.Reconcile.Schedule, err)
		}
		defer scheduler.Stop()
	}

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret, blacklist)
	reviewHandler := handler.NewReviewHandler(reviewService, ratingService)
	router := handler.SetupRoutes(reviewHandler, authMiddleware, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(ctx, server, 30*time.Second)
}

// serve держит сервер до отмены ctx или ошибки ListenAndServe
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("address", server.Addr).
			Msg("Starting Reviews Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down Reviews Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func runMigrations(cfg config.DatabaseConfig) error {
	migrator, err := migration.New(cfg.URL(), migrations.FS)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}

// connectPool создает пул pgx с повторными попытками, пока PostgreSQL поднимается
func connectPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = min(5, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// openGorm поднимает GORM поверх уже открытого пула, TranslateError нужен для 23505 -> ErrDuplicatedKey
func openGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
}

func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}
