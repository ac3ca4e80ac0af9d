package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasknest/backend/api/handler"
	"github.com/tasknest/backend/internal/config"
	"github.com/tasknest/backend/internal/infrastructure/monitor"
	pgInfra "github.com/tasknest/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tasknest/backend/internal/infrastructure/redis"
	sqliteInfra "github.com/tasknest/backend/internal/infrastructure/sqlite"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/internal/router"
	"github.com/tasknest/backend/internal/services"
	"github.com/tasknest/backend/internal/services/lifecycle"
	"github.com/tasknest/backend/internal/token"
	"github.com/tasknest/backend/pkg/httpcontext"
	"github.com/tasknest/backend/pkg/logger"
	"github.com/tasknest/backend/repository"
	boltRepo "github.com/tasknest/backend/repository/bolt"
	memoryRepo "github.com/tasknest/backend/repository/memory"
	pgRepo "github.com/tasknest/backend/repository/postgres"
	redisRepo "github.com/tasknest/backend/repository/redis"
	sqliteRepo "github.com/tasknest/backend/repository/sqlite"
	authUC "github.com/tasknest/backend/usecase/auth"
	taskUC "github.com/tasknest/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		userRepo      repository.UserRepository
		taskRepo      repository.TaskRepository
		storagePinger monitor.Pinger
	)

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if cfg.Migrations.Enabled {
			if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
				zapLogger.Fatal("migrations failed", zap.Error(err))
			}
		}

		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})

		userRepo = pgRepo.NewUserRepository(pool)
		taskRepo = pgRepo.NewTaskRepository(pool)
		storagePinger = pool

	default:
		db, err := sqliteInfra.Open(appCtx, cfg.SQLite, zapLogger)
		if err != nil {
			zapLogger.Fatal("sqlite open failed", zap.Error(err))
		}
		manager.Register("sqlite", func(ctx context.Context) error {
			return db.Close()
		})

		userRepo = sqliteRepo.NewUserRepository(db)
		taskRepo = sqliteRepo.NewTaskRepository(db)
		storagePinger = monitor.PingerFunc(db.PingContext)
	}

	var (
		sessionStore  repository.SessionStore
		sessionPinger monitor.Pinger
	)

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})

		sessionStore = redisRepo.NewSessionStore(redisClient, cfg.Session.TTL)
		sessionPinger = monitor.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})

	case config.SessionBackendBolt:
		boltStore, err := boltRepo.Open(cfg.Session.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open session store", zap.Error(err))
		}
		manager.Register("session_store", func(ctx context.Context) error {
			return boltStore.Close()
		})

		sessionStore = boltStore
		sessionPinger = alwaysUp()

	default:
		sessionStore = memoryRepo.NewSessionStore(nil)
		sessionPinger = alwaysUp()
	}

	mon := monitor.New(storagePinger, sessionPinger, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if cfg.Session.Backend != config.SessionBackendRedis {
		janitor := services.NewSessionJanitor(sessionStore, zapLogger, services.JanitorConfig{
			Interval: cfg.Session.SweepInterval,
		})
		janitor.Start()
		manager.Register("session_janitor", func(ctx context.Context) error {
			janitor.Stop(ctx)
			return nil
		})
	}

	sessionCodec := token.NewCodec(cfg.Session.Secret, cfg.Session.Issuer)

	authUseCase := authUC.New(userRepo, sessionStore, cfg.Session.TTL, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, taskUseCase, sessionCodec, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	sessions := middleware.NewSessionResolver(sessionStore, sessionCodec, zapLogger)
	r := router.New(handlers, sessions)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// alwaysUp reports healthy for embedded stores that have no connection to probe.
func alwaysUp() monitor.Pinger {
	return monitor.PingerFunc(func(ctx context.Context) error { return nil })
}
