// Package ingest downloads the PDF report attachments the hotel system mails
// out. A run is a standalone batch job: connect, pick a folder, fetch the
// lookback window, filter attachments, save the unseen ones, disconnect.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/config"
)

// ErrMissingCredentials is returned when the mailbox address or app password
// is not configured. It is fatal for the run and never retried automatically.
var ErrMissingCredentials = errors.New("mailbox credentials not configured")

const attachmentSuffix = ".pdf"

// Attachment is one downloadable file from a message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is the slice of a mailbox message the worker cares about.
type Message struct {
	Subject     string
	Date        time.Time
	Attachments []Attachment
}

// MailClient abstracts the mailbox protocol so runs can be tested without a
// live server. The production implementation is DialIMAP.
type MailClient interface {
	SelectFolder(name string) error
	ListFolders() ([]string, error)
	FetchSince(since time.Time) ([]Message, error)
	Logout() error
}

// Dialer connects and authenticates a MailClient.
type Dialer func(cfg config.MailConfig) (MailClient, error)

// Worker fetches report attachments into the destination directory. Saves are
// idempotent by filename: a file that already exists is skipped, which is the
// whole de-duplication mechanism — two different attachments sharing a name
// will not both be kept.
type Worker struct {
	mail   config.MailConfig
	ingest config.IngestConfig
	dial   Dialer
	logger *zap.Logger
}

// NewWorker wires a mailbox worker. A nil dialer uses the IMAP client.
func NewWorker(mail config.MailConfig, ingest config.IngestConfig, dial Dialer, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dial == nil {
		dial = DialIMAP
	}
	return &Worker{mail: mail, ingest: ingest, dial: dial, logger: logger}
}

// Run executes one batch: messages newer than the lookback window are
// scanned for PDF attachments, optionally narrowed by a case-insensitive
// filename keyword. Per-attachment failures are logged and skipped; only a
// connection-level failure fails the run. Returns the number of new files.
func (w *Worker) Run(ctx context.Context, lookback time.Duration, keyword string) (int, error) {
	if w.mail.Address == "" || w.mail.Password == "" {
		return 0, ErrMissingCredentials
	}

	if err := os.MkdirAll(w.ingest.DestDir, 0o755); err != nil {
		return 0, fmt.Errorf("create destination dir: %w", err)
	}

	client, err := w.dial(w.mail)
	if err != nil {
		return 0, fmt.Errorf("connect mailbox %s: %w", w.mail.Host, err)
	}
	defer func() {
		if err := client.Logout(); err != nil {
			w.logger.Debug("mailbox logout failed", zap.Error(err))
		}
	}()

	folder := w.ingest.Folder
	if err := client.SelectFolder(folder); err != nil {
		w.logger.Warn("folder not found, using INBOX", zap.String("folder", folder), zap.Error(err))
		folder = "INBOX"
		if err := client.SelectFolder(folder); err != nil {
			return 0, fmt.Errorf("select folder INBOX: %w", err)
		}
	}

	since := time.Now().Add(-lookback)
	messages, err := client.FetchSince(since)
	if err != nil {
		return 0, fmt.Errorf("fetch since %s: %w", since.Format("02/01/2006"), err)
	}

	w.logger.Info("mailbox fetched",
		zap.String("folder", folder),
		zap.Int("messages", len(messages)),
		zap.Time("since", since))

	saved := 0
	for _, msg := range messages {
		if ctx.Err() != nil {
			return saved, ctx.Err()
		}
		if len(msg.Attachments) == 0 {
			continue
		}
		for _, att := range msg.Attachments {
			if !w.wanted(att.Filename, keyword) {
				continue
			}
			ok, err := w.save(att)
			if err != nil {
				w.logger.Error("failed to save attachment",
					zap.String("filename", att.Filename), zap.Error(err))
				continue
			}
			if ok {
				w.logger.Info("attachment saved",
					zap.String("filename", att.Filename),
					zap.String("subject", msg.Subject))
				saved++
			}
		}
	}

	w.logger.Info("ingestion run completed", zap.Int("saved", saved))
	return saved, nil
}

// TestLogin connects, lists the available folders and disconnects. Used by
// operational tooling, not the reporting path.
func (w *Worker) TestLogin(ctx context.Context) ([]string, error) {
	if w.mail.Address == "" || w.mail.Password == "" {
		return nil, ErrMissingCredentials
	}

	client, err := w.dial(w.mail)
	if err != nil {
		return nil, fmt.Errorf("connect mailbox %s: %w", w.mail.Host, err)
	}
	defer func() { _ = client.Logout() }()

	folders, err := client.ListFolders()
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// wanted applies the suffix and keyword filters, both case-insensitive.
func (w *Worker) wanted(filename, keyword string) bool {
	if filename == "" {
		return false
	}
	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, attachmentSuffix) {
		return false
	}
	if keyword != "" && !strings.Contains(lower, strings.ToLower(keyword)) {
		return false
	}
	return true
}

// save writes the attachment unless a file of that name already exists.
// Returns whether a new file was written.
func (w *Worker) save(att Attachment) (bool, error) {
	path := filepath.Join(w.ingest.DestDir, filepath.Base(att.Filename))
	if _, err := os.Stat(path); err == nil {
		w.logger.Debug("attachment already downloaded", zap.String("filename", att.Filename))
		return false, nil
	}
	if err := os.WriteFile(path, att.Data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
