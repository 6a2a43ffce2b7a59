package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/durvalm/aram-reports/internal/config"
)

func newFallbackUnderTest(t *testing.T) (*Fallback, *observer.ObservedLogs) {
	t.Helper()

	remote := NewREST(config.RemoteConfig{URL: "http://127.0.0.1:1", Key: "test-key"}, nil)
	core, logs := observer.New(zap.DebugLevel)
	path := filepath.Join(t.TempDir(), "relatorios.db")

	fb := NewFallback(remote, func() (Store, error) {
		return NewSQLite(path, nil)
	}, zap.New(core))
	t.Cleanup(func() { _ = fb.Close() })
	return fb, logs
}

func TestFallbackDemotesOnUnreachableRemote(t *testing.T) {
	fb, logs := newFallbackUnderTest(t)
	ctx := context.Background()

	// The remote is unreachable, yet the caller still gets a valid (empty)
	// table and exactly one warning is recorded.
	rows, err := fb.Query(ctx, "SELECT * FROM rds_vendas")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())

	// Subsequent calls serve from local without re-warning.
	_, err = fb.Query(ctx, "SELECT * FROM rds_vendas")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestFallbackInsertSurvivesRemoteOutage(t *testing.T) {
	fb, _ := newFallbackUnderTest(t)
	ctx := context.Background()

	require.NoError(t, fb.Insert(ctx, "rds_vendas", map[string]any{
		"data": "20/08/2025", "valor_total": 500.0,
	}))

	rows, err := fb.Query(ctx, "SELECT * FROM rds_vendas")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "20/08/2025", rows[0].Str("data"))
}

func TestFallbackSurfacesTranslationErrors(t *testing.T) {
	fb, logs := newFallbackUnderTest(t)

	_, err := fb.Query(context.Background(), "SELECT SUM(valor_total) FROM rds_vendas")
	assert.ErrorIs(t, err, ErrNotTranslatable)
	// A caller mistake is not an outage: no demotion, no warning.
	assert.Equal(t, 0, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestOpenPrefersExistingLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relatorios.db")
	seed, err := NewSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: path},
		Remote:   config.RemoteConfig{URL: "http://127.0.0.1:1", Key: "k"},
	}

	st, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok, "existing local file should win over the remote config")
}

func TestOpenFallsBackWhenRemoteProbeFails(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "relatorios.db")},
		Remote:   config.RemoteConfig{URL: "http://127.0.0.1:1", Key: "k"},
	}

	st, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)
	assert.NoError(t, st.Ping(context.Background()))
}
