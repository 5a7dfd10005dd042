package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agriprice-service/internal/bootstrap"
	"agriprice-service/internal/config"
	"agriprice-service/internal/infrastructure/logx"
	"agriprice-service/internal/infrastructure/worker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, closeDB, err := bootstrap.BuildDB(ctx, cfg)
	if err != nil {
		log.Fatal("bootstrap db", zap.Error(err))
	}
	defer closeDB()

	lock, closeLock := bootstrap.BuildSyncLock(cfg)
	defer closeLock()

	recon, _ := bootstrap.BuildReconciler(db, lock, cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	w := &worker.SyncWorker{
		Runner:     recon,
		Spec:       cfg.SyncCron,
		RunOnStart: cfg.RunOnStart,
		Log:        log,
	}
	if err := w.Start(ctx); err != nil {
		log.Fatal("sync worker", zap.Error(err))
	}
}
