package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"orderflow/cmd"
	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres"
	redisadapter "orderflow/internal/adapters/out/redis"
	"orderflow/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "orderflow"

func main() {
	log := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		log.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := cmd.LoadConfig()
	if err != nil {
		log.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	log = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	if err = run(cfg, log); err != nil {
		log.Error(context.Background(), "orderflow stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg cmd.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	if cfg.AutoMigrate {
		if err = postgres.Migrate(ctx, gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info(ctx, "database migrations applied")
	}

	var redisClient *redisadapter.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisadapter.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Error(context.Background(), "error closing redis", closeErr)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := cmd.NewCompositionRoot(cfg, gormDB, redisClient, log, registry)
	if err != nil {
		return err
	}

	if cfg.JobsEnabled {
		jobManager, jobErr := app.CreateJobManager()
		if jobErr != nil {
			return jobErr
		}
		if jobErr = jobManager.StartAll(); jobErr != nil {
			return jobErr
		}
		defer jobManager.StopAll()
	}

	e := httpadapter.NewEcho(app.CreateHTTPServer(), registry)
	serverErr := make(chan error, 1)
	go func() {
		log.Info(log.WithField(ctx, "port", cfg.HTTPPort), "http server starting")
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			serverErr <- startErr
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info(context.Background(), "shutdown signal received")
	case err = <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info(context.Background(), "orderflow shut down gracefully")
	return nil
}

func openDatabase(cfg cmd.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(gormpostgres.Open(cfg.DBDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	return gormDB, nil
}
