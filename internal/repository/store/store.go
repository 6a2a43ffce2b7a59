// Package store is the data access layer for the report tables. It exposes a
// single tabular contract backed either by the embedded SQLite file or by the
// hosted table store, picked once at startup with a silent local fallback
// when the remote side misbehaves.
package store

import (
	"context"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/config"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Table is a uniform query result, whatever backend produced it.
type Table []Row

// Store is the contract each backend implements. Insert failures come back as
// errors, never panics; an empty Table with a nil error means the query
// matched nothing, which is an expected condition and not a failure.
type Store interface {
	Query(ctx context.Context, query string, params ...any) (Table, error)
	Insert(ctx context.Context, table string, record map[string]any) error
	Ping(ctx context.Context) error
	Close() error
}

// Open selects a backend: an existing local file wins, otherwise a reachable
// configured remote store, otherwise a freshly created local file. The choice
// is made once here; runtime remote failures demote to local inside Fallback.
func Open(cfg *config.Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(cfg.Database.Path); err == nil {
		logger.Info("using local store", zap.String("path", cfg.Database.Path))
		return NewSQLite(cfg.Database.Path, logger)
	}

	if cfg.Remote.URL != "" {
		remote := NewREST(cfg.Remote, logger)
		ctx, cancel := context.WithTimeout(context.Background(), remoteProbeTimeout)
		defer cancel()
		if err := remote.Ping(ctx); err != nil {
			logger.Warn("remote store unreachable, using local store", zap.Error(err))
		} else {
			logger.Info("using remote store", zap.String("url", cfg.Remote.URL))
			return NewFallback(remote, func() (Store, error) {
				return NewSQLite(cfg.Database.Path, logger)
			}, logger), nil
		}
	}

	logger.Info("creating local store", zap.String("path", cfg.Database.Path))
	return NewSQLite(cfg.Database.Path, logger)
}

// Str returns the row value as a string, empty when absent.
func (r Row) Str(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return toString(v)
	}
}

// Float returns the row value as a float64, zero when absent or non-numeric.
func (r Row) Float(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}

// Int returns the row value truncated to an int.
func (r Row) Int(col string) int {
	return int(r.Float(col))
}

func toString(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
