package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldvisit/internal/config"
	"fieldvisit/internal/database"
	"fieldvisit/internal/domain"
	httpapi "fieldvisit/internal/http"
	"fieldvisit/internal/logger"
	"fieldvisit/internal/repository"
	"fieldvisit/internal/service"
	"fieldvisit/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "fieldvisit")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Repositories: Postgres when the DB is reachable, otherwise in-memory so
	// the mobile client can still be exercised end to end in local dev.
	var (
		outletsRepo    repository.OutletsRepository
		assigneesRepo  repository.AssigneesRepository
		mdSchedules    repository.SchedulesRepository
		salesSchedules repository.SchedulesRepository
		actionsRepo    repository.ActionsRepository
		credsRepo      repository.CredentialsRepository
		syncLogsRepo   repository.SyncLogsRepository
	)

	dbReady := false
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			log.Warn("DB enabled but connection failed, falling back to memory stores", zap.Error(err))
		} else if err := database.Migrate(db); err != nil {
			log.Warn("DB migration failed, falling back to memory stores", zap.Error(err))
			db.Close()
		} else {
			outletsRepo = repository.NewPostgresOutletsRepository(db)
			assigneesRepo = repository.NewPostgresAssigneesRepository(db)
			mdSchedules = repository.NewPostgresSchedulesRepository(db, repository.TableSchedulesMD)
			salesSchedules = repository.NewPostgresSchedulesRepository(db, repository.TableSchedulesSales)
			actionsRepo = repository.NewPostgresActionsRepository(db)
			credsRepo = repository.NewPostgresCredentialsRepository(db)
			syncLogsRepo = repository.NewPostgresSyncLogsRepository(db)
			dbReady = true
			log.Info("Postgres stores ready")
		}
	}
	if !dbReady {
		outletsRepo = repository.NewMemoryOutletsRepository()
		assigneesRepo = repository.NewMemoryAssigneesRepository()
		mdSchedules = repository.NewMemorySchedulesRepository()
		salesSchedules = repository.NewMemorySchedulesRepository()
		actionsRepo = repository.NewMemoryActionsRepository()
		credsRepo = repository.NewMemoryCredentialsRepository()
		syncLogsRepo = repository.NewMemorySyncLogsRepository()
		log.Info("memory stores ready")
	}

	// Token KV: Redis with a memory fallback, same policy as the stores.
	var kv store.KV = store.NewMemoryKV()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, tokens held in memory", zap.Error(err))
	} else {
		kv = store.NewRedisKV(redisClient)
		log.Info("Redis token store ready")
	}
	cancelPing()

	authSvc := service.NewAuthService(credsRepo, kv, log)
	visitSvc := service.NewVisitService(mdSchedules, salesSchedules, outletsRepo, assigneesRepo, actionsRepo, log)
	importSvc := service.NewImportService(outletsRepo, assigneesRepo, mdSchedules, salesSchedules, log)
	syncSvc := service.NewSyncService(outletsRepo, assigneesRepo, mdSchedules, salesSchedules, actionsRepo, syncLogsRepo, log)

	uploadDir := cfg.Upload.Dir
	router := httpapi.NewRouter(log)
	router.RegisterRoutes(
		httpapi.NewAuthHandler(authSvc, log),
		httpapi.NewVisitHandler(visitSvc, uploadDir, log),
		httpapi.NewOutletHandler(outletsRepo, importSvc, uploadDir, log),
		httpapi.NewAssigneeHandler(assigneesRepo, importSvc, uploadDir, log),
		httpapi.NewScheduleHandler(mdSchedules, domain.RoleMD, importSvc, uploadDir, log),
		httpapi.NewScheduleHandler(salesSchedules, domain.RoleSales, importSvc, uploadDir, log),
		httpapi.NewDashboardHandler(outletsRepo, assigneesRepo, mdSchedules, salesSchedules, actionsRepo, log),
		httpapi.NewSyncHandler(syncSvc, log),
		uploadDir,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.SyncEnabled {
		service.NewSyncScheduler(syncSvc, cfg.SyncTimes, log).Start(ctx)
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
