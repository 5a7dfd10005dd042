package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"agriprice-service/internal/bootstrap"
	"agriprice-service/internal/config"
	infraconfig "agriprice-service/internal/infrastructure/config"
	httpserver "agriprice-service/internal/infrastructure/http"
	"agriprice-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx := context.Background()
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	db, closeDB, err := bootstrap.BuildDB(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap db", zap.Error(err))
	}
	defer closeDB()

	lock, closeLock := bootstrap.BuildSyncLock(cfg)
	defer closeLock()

	recon, repo := bootstrap.BuildReconciler(db, lock, cfg)
	srv := httpserver.NewServer(recon, repo, cfg.CronSecret).WithPing(db.Ping)
	mux := httpserver.NewRouter(srv)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
