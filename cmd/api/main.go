package main

import (
	"context"
	"database/sql"
	"errors"
	"filedrop/internal/adapters/auth/jwt"
	natsbroker "filedrop/internal/adapters/eventbroker/nats"
	"filedrop/internal/adapters/handlers/http/chi"
	"filedrop/internal/adapters/handlers/http/chi/v1/direct"
	"filedrop/internal/adapters/handlers/http/chi/v1/file"
	"filedrop/internal/adapters/handlers/http/chi/v1/upload"
	"filedrop/internal/adapters/locker/memory"
	redislocker "filedrop/internal/adapters/locker/redis"
	"filedrop/internal/adapters/repository/postgres"
	"filedrop/internal/adapters/storage/filesystem"
	"filedrop/internal/config"
	"filedrop/internal/core/port"
	"filedrop/internal/core/service/cleanup"
	directservice "filedrop/internal/core/service/direct"
	fileservice "filedrop/internal/core/service/file"
	"filedrop/internal/core/service/finalize"
	"filedrop/internal/core/service/settings"
	"filedrop/internal/core/service/settingsevent"
	uploadservice "filedrop/internal/core/service/upload"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {
			logger.Error("failed to close database", "error", err)
			os.Exit(1)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	blobStorage, err := filesystem.NewAdapter(cfg.Upload.StorageDir, logger)
	if err != nil {
		logger.Error("failed to init storage", "error", err)
		os.Exit(1)
	}

	//locks
	locker, closeLocker, err := initLocker(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to init locker", "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	//events
	var publisher port.EventPublisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := natsbroker.NewNATSPublisher(ctx, cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to init nats publisher", "error", err)
			os.Exit(1)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	//repositories
	unitOfWork := postgres.NewUnitOfWork(db)
	settingsRepo := postgres.NewSqlSettingsRepository(db)
	userRepo := postgres.NewSqlUserRepository(db)

	settingsService := settings.NewSettingsService(settingsRepo, cfg.Settings, logger)
	finalizeService := finalize.NewFinalizeService(unitOfWork, publisher, logger)
	uploadService := uploadservice.NewUploadService(
		unitOfWork, blobStorage, locker, settingsService, finalizeService, cfg.Upload.LockWait, logger,
	)
	directService := directservice.NewDirectUploadService(
		userRepo, unitOfWork, blobStorage, settingsService, publisher, cfg.Upload.DirectMaxSize, cfg.Server.BaseURL, logger,
	)
	fileService := fileservice.NewFileService(unitOfWork, blobStorage, logger)
	cleanupService := cleanup.NewCleanupService(
		unitOfWork, blobStorage, locker, finalizeService, cfg.Upload.SessionTTL, logger,
	)

	//settings invalidation
	if cfg.NATS.URL != "" {
		consumer, err := natsbroker.NewNATSConsumer(cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to init nats consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		if err := consumer.Subscribe(ctx, settingsevent.NewSettingsEventService(settingsService, logger)); err != nil {
			logger.Error("failed to subscribe to settings events", "error", err)
			os.Exit(1)
		}
	}

	//http
	resolver := jwt.NewResolver([]byte(cfg.Auth.JWTSecret), cfg.Auth.CookieName)
	uploadHandler := upload.NewUploadHandlerV1(uploadService, resolver, logger)
	directHandler := direct.NewDirectHandlerV1(directService, cfg.Upload.DirectMaxSize, logger)
	fileHandler := file.NewFileHandlerV1(fileService, logger)

	router := chi.NewRouter(logger, uploadHandler, directHandler, fileHandler, chi.RouterConfig{
		UploadBasePath: cfg.Upload.BasePath,
		RequestTimeout: cfg.Server.RequestTimeout,
		Env:            cfg.Env.Env,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init cleanup task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initCleanupTask(ctx, cleanupService, cfg.Upload.CleanupEvery, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

// initLocker uses redis when configured so every replica shares session locks
func initLocker(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (port.Locker, func(), error) {
	if cfg.Addr == "" {
		logger.Info("using in-process session locks")
		return memory.NewLocker(), func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Info("using redis session locks", "addr", cfg.Addr)

	return redislocker.NewLocker(client, cfg.LockTTL, logger), func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis", "error", err)
		}
	}, nil
}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			report, err := service.ReapAbandonedSessions(ctx, time.Now())
			if err != nil {
				logger.Error("failed to reap abandoned sessions", "error", err)
			} else if report.Skipped > 0 {
				logger.Warn("some abandoned sessions were left for the next sweep", "skipped", report.Skipped)
			}
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}

}
