package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/config"
	"github.com/durvalm/aram-reports/internal/service/ingest"
)

// Scheduler runs the mailbox ingestion on the configured cron schedule. The
// design assumes at most one run at a time; overlapping runs only race on the
// filename-existence check, which at worst downloads a file twice.
type Scheduler struct {
	cron   *cron.Cron
	worker *ingest.Worker
	cfg    *config.Config
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg *config.Config, worker *ingest.Worker, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Reporting.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("unknown timezone, using local", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:   cron.New(opts...),
		worker: worker,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the ingestion job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runIngestion)
	if err != nil {
		s.logger.Error("failed to schedule ingestion", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runIngestion() {
	s.logger.Info("scheduled ingestion run starting")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	lookback := time.Duration(s.cfg.Ingest.LookbackDays) * 24 * time.Hour
	saved, err := s.worker.Run(ctx, lookback, s.cfg.Ingest.Keyword)
	if err != nil {
		s.logger.Error("scheduled ingestion run failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled ingestion run finished", zap.Int("saved", saved))
}
