package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskmanager/api/handler"
	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/internal/config"
	"github.com/fastygo/taskmanager/internal/infrastructure/journal"
	"github.com/fastygo/taskmanager/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskmanager/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskmanager/internal/infrastructure/redis"
	"github.com/fastygo/taskmanager/internal/middleware"
	"github.com/fastygo/taskmanager/internal/router"
	"github.com/fastygo/taskmanager/internal/services"
	"github.com/fastygo/taskmanager/internal/services/lifecycle"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	"github.com/fastygo/taskmanager/pkg/logger"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/repository/postgres"
	redisRepo "github.com/fastygo/taskmanager/repository/redis"
	"github.com/fastygo/taskmanager/usecase"
	taskUC "github.com/fastygo/taskmanager/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger = zapLogger.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment))

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	// nil interfaces, not typed nils, mark disabled components
	var (
		cache       repository.TaskCache
		redisPinger monitor.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
		if err != nil {
			zapLogger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			cache = redisRepo.NewTaskCache(redisClient, cfg.Redis.TTL, zapLogger)
			redisPinger = monitor.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			})
			manager.Register("redis", func(ctx context.Context) error {
				return redisClient.Close()
			})
		}
	}

	var (
		changeJournal usecase.ChangeJournal
		journalSizer  monitor.Sizer
	)
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path, "tasks")
		if err != nil {
			zapLogger.Fatal("failed to open journal", zap.String("path", cfg.Journal.Path), zap.Error(err))
		}
		manager.Register("journal", func(ctx context.Context) error {
			return store.Close()
		})
		changeJournal = services.NewJournalRecorder(store)
		journalSizer = store

		pruner, err := services.NewJournalPruner(store, zapLogger, services.PrunerConfig{
			Interval:  cfg.Journal.PruneInterval,
			Retention: cfg.Journal.Retention,
		})
		if err != nil {
			zapLogger.Fatal("failed to schedule journal pruning", zap.Error(err))
		}
		pruner.Start()
		manager.Register("journal_pruner", func(ctx context.Context) error {
			pruner.Stop(ctx)
			return nil
		})
	}

	mon := monitor.New(pool, redisPinger, journalSizer, cfg.HTTP.MonitorPeriod, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	taskUseCase := taskUC.New(taskRepo, cache, changeJournal, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, transport.NewValidator(), ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	opts := router.Options{EnablePprof: cfg.HTTP.EnablePprof}
	if cfg.JWTEnabled() {
		opts.Auth = middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	}
	r := router.New(handlers, opts)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.AccessLog(zapLogger),
			middleware.CORS(cfg.CORS.AllowedOrigins),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.Bool("cache", cache != nil),
			zap.Bool("journal", changeJournal != nil),
			zap.Bool("auth", cfg.JWTEnabled()),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
