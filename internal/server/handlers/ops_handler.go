package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/config"
	"github.com/durvalm/aram-reports/internal/repository/store"
	"github.com/durvalm/aram-reports/internal/service/ingest"
)

// OpsHandler exposes the operational endpoints: store and mailbox liveness
// probes plus a manual ingestion trigger.
type OpsHandler struct {
	store  store.Store
	worker *ingest.Worker
	cfg    config.IngestConfig
	logger *zap.Logger
}

// NewOpsHandler constructs the operational HTTP adapter.
func NewOpsHandler(st store.Store, worker *ingest.Worker, cfg config.IngestConfig, logger *zap.Logger) *OpsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpsHandler{store: st, worker: worker, cfg: cfg, logger: logger}
}

// StorePing probes the active storage backend.
func (h *OpsHandler) StorePing(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Error("store probe failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MailPing connects to the mailbox and reports the folders it can see.
func (h *OpsHandler) MailPing(c *gin.Context) {
	folders, err := h.worker.TestLogin(c.Request.Context())
	if err != nil {
		if errors.Is(err, ingest.ErrMissingCredentials) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "mailbox credentials not configured"})
			return
		}
		h.logger.Error("mailbox probe failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "mailbox unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "folders": folders})
}

// RunIngest triggers a mailbox run. Optional query parameters: keyword (empty
// disables keyword matching, absent uses the configured one) and lookback
// days.
func (h *OpsHandler) RunIngest(c *gin.Context) {
	keyword := h.cfg.Keyword
	if v, ok := c.GetQuery("keyword"); ok {
		keyword = v
	}
	lookback := time.Duration(h.cfg.LookbackDays) * 24 * time.Hour
	if v, ok := c.GetQuery("lookback_days"); ok {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lookback_days must be a positive number"})
			return
		}
		lookback = time.Duration(days) * 24 * time.Hour
	}

	saved, err := h.worker.Run(c.Request.Context(), lookback, keyword)
	if err != nil {
		if errors.Is(err, ingest.ErrMissingCredentials) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "mailbox credentials not configured"})
			return
		}
		h.logger.Error("manual ingestion run failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "ingestion run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "saved": saved})
}
