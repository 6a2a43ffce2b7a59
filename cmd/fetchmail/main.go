// fetchmail runs a single mailbox ingestion batch and exits. It is the
// manual/cron-friendly counterpart of the scheduled run inside the server.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/config"
	"github.com/durvalm/aram-reports/internal/service/ingest"
	"github.com/durvalm/aram-reports/pkg/logger"
)

func main() {
	var (
		lookbackDays = flag.Int("lookback", 0, "days to look back (0 uses MAIL_LOOKBACK_DAYS)")
		keyword      = flag.String("keyword", "", "filename keyword filter (empty uses REPORT_KEYWORD, \"-\" disables)")
	)
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	days := cfg.Ingest.LookbackDays
	if *lookbackDays > 0 {
		days = *lookbackDays
	}
	kw := cfg.Ingest.Keyword
	switch *keyword {
	case "":
	case "-":
		kw = ""
	default:
		kw = *keyword
	}

	worker := ingest.NewWorker(cfg.Mail, cfg.Ingest, nil, baseLogger.Named("svc.ingest"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	saved, err := worker.Run(ctx, time.Duration(days)*24*time.Hour, kw)
	if err != nil {
		baseLogger.Error("ingestion run failed", zap.Error(err))
		os.Exit(1)
	}

	baseLogger.Info("ingestion run finished", zap.Int("saved", saved))
}
