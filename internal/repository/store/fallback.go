package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Fallback routes calls to the remote store and demotes to the local file
// when the remote side fails mid-flight. The demotion is sticky and silent to
// callers apart from a single warning, so the dashboards stay usable during a
// partial outage. Translation errors are not demotion triggers: they are a
// caller mistake and must surface.
type Fallback struct {
	remote    Store
	openLocal func() (Store, error)
	logger    *zap.Logger

	mu      sync.Mutex
	local   Store
	demoted bool
}

// NewFallback wraps a healthy remote store with a lazily opened local one.
func NewFallback(remote Store, openLocal func() (Store, error), logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{remote: remote, openLocal: openLocal, logger: logger}
}

// Query runs against the active backend, demoting on remote failure.
func (f *Fallback) Query(ctx context.Context, query string, params ...any) (Table, error) {
	if local := f.activeLocal(); local != nil {
		return local.Query(ctx, query, params...)
	}

	rows, err := f.remote.Query(ctx, query, params...)
	if err == nil {
		return rows, nil
	}
	if errors.Is(err, ErrNotTranslatable) {
		return nil, err
	}

	local, derr := f.demote(err)
	if derr != nil {
		return nil, derr
	}
	return local.Query(ctx, query, params...)
}

// Insert writes through the active backend, demoting on remote failure.
func (f *Fallback) Insert(ctx context.Context, table string, record map[string]any) error {
	if local := f.activeLocal(); local != nil {
		return local.Insert(ctx, table, record)
	}

	err := f.remote.Insert(ctx, table, record)
	if err == nil || errors.Is(err, ErrNotTranslatable) {
		return err
	}

	local, derr := f.demote(err)
	if derr != nil {
		return derr
	}
	return local.Insert(ctx, table, record)
}

// Ping probes the active backend.
func (f *Fallback) Ping(ctx context.Context) error {
	if local := f.activeLocal(); local != nil {
		return local.Ping(ctx)
	}
	return f.remote.Ping(ctx)
}

// Close releases whichever backends were opened.
func (f *Fallback) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.remote.Close()
	if f.local != nil {
		if lerr := f.local.Close(); lerr != nil && err == nil {
			err = lerr
		}
	}
	return err
}

func (f *Fallback) activeLocal() Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.demoted {
		return f.local
	}
	return nil
}

// demote opens the local store and marks the remote as dead. The warning is
// logged exactly once, at the moment of demotion.
func (f *Fallback) demote(cause error) (Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.demoted {
		return f.local, nil
	}

	local, err := f.openLocal()
	if err != nil {
		return nil, fmt.Errorf("remote store failed (%v) and local fallback unavailable: %w", cause, err)
	}

	f.logger.Warn("remote store failed, demoting to local store", zap.Error(cause))
	f.local = local
	f.demoted = true
	return f.local, nil
}
