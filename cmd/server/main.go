package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"engagement_hub/internal/api"
	"engagement_hub/internal/app/service"
	"engagement_hub/internal/app/worker"
	"engagement_hub/internal/common"
	"engagement_hub/internal/common/security"
	"engagement_hub/internal/domain/repository"
	"engagement_hub/internal/platform/config"
	"engagement_hub/internal/platform/database"
	"engagement_hub/internal/platform/logger"
	"engagement_hub/internal/platform/queue"

	"go.uber.org/zap"
)

func main() {
	config.Load()
	logger.Init()
	defer logger.Sync()
	log := zap.S()
	log.Info("configuration loaded")

	security.InitJWT()

	queue.ConnectRedis()
	defer queue.CloseRedis()
	log.Info("redis connected")

	store := repository.NewStore()

	// Optional persistence collaborator: restore the latest snapshot at
	// boot and save periodically. Never on the command path.
	var snapshots repository.SnapshotStore
	if config.AppConfig.SnapshotEnabled {
		database.Connect()
		defer database.Close()
		log.Info("database connected")

		snapshots = repository.NewPgSnapshotStore(database.DB)
		loadCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		snap, err := snapshots.LoadLatest(loadCtx)
		cancel()
		switch {
		case err == nil:
			if err := store.Import(snap); err != nil {
				log.Fatalw("failed to import snapshot", "err", err)
			}
			log.Infow("snapshot restored", "taken_at", snap.TakenAt)
		case errors.Is(err, common.ErrNotFound):
			log.Info("no snapshot found, starting empty")
		default:
			log.Fatalw("failed to load snapshot", "err", err)
		}
	}

	emitter := service.NewRedisNotificationEmitter(queue.RDB, config.AppConfig.NotificationQueueName, nil)

	directoryService := service.NewDirectoryService(store, nil)
	lifecycleService := service.NewLifecycleService(store, emitter, nil)
	matchingService := service.NewMatchingService(store, emitter, config.AppConfig.FollowUpInterval, nil)
	scoringService := service.NewScoringService(store, emitter, nil, nil)
	engagementService := service.NewEngagementService(store, config.AppConfig.InactivityThresholdMonths, nil)

	followUpWorker := worker.NewFollowUpWorker(matchingService, config.AppConfig.FollowUpSweepInterval, nil)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go followUpWorker.Start(workerCtx)
	log.Info("follow-up worker started")

	if snapshots != nil {
		go func() {
			ticker := time.NewTicker(config.AppConfig.SnapshotSaveInterval)
			defer ticker.Stop()
			for {
				select {
				case <-workerCtx.Done():
					return
				case <-ticker.C:
					saveCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
					if err := snapshots.Save(saveCtx, store.Export(time.Now())); err != nil {
						log.Errorw("periodic snapshot save failed", "err", err)
					}
					cancel()
				}
			}
		}()
	}

	router := api.NewRouter(directoryService, lifecycleService, matchingService, scoringService, engagementService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infow("server starting", "port", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("could not listen", "port", config.AppConfig.APIPort, "err", err)
		}
	}()

	<-stop

	log.Info("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server shutdown failed", "err", err)
	}

	if snapshots != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := snapshots.Save(saveCtx, store.Export(time.Now())); err != nil {
			log.Errorw("final snapshot save failed", "err", err)
		}
		cancel()
	}

	log.Info("server and worker stopped gracefully")
}
