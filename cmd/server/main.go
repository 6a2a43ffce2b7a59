package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/config"
	"github.com/durvalm/aram-reports/internal/repository/store"
	"github.com/durvalm/aram-reports/internal/scheduler"
	"github.com/durvalm/aram-reports/internal/server/handlers"
	"github.com/durvalm/aram-reports/internal/server/router"
	ingestsvc "github.com/durvalm/aram-reports/internal/service/ingest"
	reportingsvc "github.com/durvalm/aram-reports/internal/service/reporting"
	"github.com/durvalm/aram-reports/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	st, err := store.Open(cfg, baseLogger.Named("repo.store"))
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	reportingSvc := reportingsvc.NewService(st, baseLogger.Named("svc.reporting"))
	worker := ingestsvc.NewWorker(cfg.Mail, cfg.Ingest, nil, baseLogger.Named("svc.ingest"))

	dashboardHandler := handlers.NewDashboardHandler(reportingSvc, baseLogger.Named("handlers.dashboard"))
	opsHandler := handlers.NewOpsHandler(st, worker, cfg.Ingest, baseLogger.Named("handlers.ops"))
	engine := router.New(dashboardHandler, opsHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg, worker, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
