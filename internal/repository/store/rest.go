package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/config"
)

const remoteProbeTimeout = 10 * time.Second

// knownTables is the set of report tables the remote API exposes. A query
// against anything else cannot be translated.
var knownTables = map[string]bool{
	"rds_vendas":              true,
	"chart_compradores":       true,
	"chart_compradores_duplo": true,
}

// RESTStore talks to the hosted table store. The API is table-scoped
// select/insert only, so SQL arriving from the engine is reduced to a
// full-table read plus an in-memory equality filter; anything richer is
// rejected as not translatable instead of guessing.
type RESTStore struct {
	client *resty.Client
	logger *zap.Logger
}

// NewREST builds a store client using the configured base URL and key.
func NewREST(cfg config.RemoteConfig, logger *zap.Logger) *RESTStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimSuffix(cfg.URL, "/")

	client := resty.New()
	client.
		SetBaseURL(base + "/rest/v1").
		SetHeader("apikey", cfg.Key).
		SetHeader("Authorization", "Bearer "+cfg.Key).
		SetHeader("Content-Type", "application/json").
		SetTimeout(remoteProbeTimeout)

	return &RESTStore{client: client, logger: logger}
}

// queryPlan is the translated form of a supported SQL shape.
type queryPlan struct {
	table       string
	filterCol   string
	filterValue any
}

var (
	fromPattern  = regexp.MustCompile(`\bfrom\s+([a-z_][a-z0-9_]*)`)
	wherePattern = regexp.MustCompile(`\bwhere\s+([a-z_][a-z0-9_]*)\s*=\s*\?\s*$`)
)

// translate reduces a SQL statement to a table read. Only single-table
// selects with at most one trailing equality predicate survive; range
// predicates cannot be applied to the TEXT date columns and are rejected.
func translate(query string, params []any) (queryPlan, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.Join(strings.Fields(q), " ")

	if !strings.HasPrefix(q, "select") {
		return queryPlan{}, fmt.Errorf("%w: not a select", ErrNotTranslatable)
	}

	for _, marker := range []string{" join ", "group by", "sum(", "count(", "avg(", "min(", "max(", "(select"} {
		if strings.Contains(q, marker) {
			return queryPlan{}, fmt.Errorf("%w: %q unsupported", ErrNotTranslatable, strings.TrimSpace(marker))
		}
	}

	m := fromPattern.FindStringSubmatch(q)
	if m == nil {
		return queryPlan{}, fmt.Errorf("%w: no source table", ErrNotTranslatable)
	}
	table := m[1]
	if !knownTables[table] {
		return queryPlan{}, fmt.Errorf("%w: unknown table %s", ErrNotTranslatable, table)
	}

	plan := queryPlan{table: table}

	if strings.Contains(q, "where") {
		wm := wherePattern.FindStringSubmatch(strings.TrimSuffix(q, ";"))
		if wm == nil || len(params) != 1 {
			return queryPlan{}, fmt.Errorf("%w: unsupported predicate", ErrNotTranslatable)
		}
		plan.filterCol = wm[1]
		plan.filterValue = params[0]
	}

	return plan, nil
}

// Query fetches the whole table and applies the translated filter in memory.
func (s *RESTStore) Query(ctx context.Context, query string, params ...any) (Table, error) {
	plan, err := translate(query, params)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get("/" + plan.table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrBackendUnavailable, plan.table, resp.StatusCode())
	}

	out := make(Table, 0, len(rows))
	for _, r := range rows {
		row := Row(r)
		if plan.filterCol != "" && row.Str(plan.filterCol) != fmt.Sprint(plan.filterValue) {
			continue
		}
		out = append(out, row)
	}

	s.logger.Debug("remote query served",
		zap.String("table", plan.table),
		zap.Int("rows", len(out)))
	return out, nil
}

// Insert posts one record to the table endpoint.
func (s *RESTStore) Insert(ctx context.Context, table string, record map[string]any) error {
	if !knownTables[table] {
		return fmt.Errorf("%w: unknown table %s", ErrNotTranslatable, table)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(record).
		Post("/" + table)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: insert into %s returned status %d", ErrBackendUnavailable, table, resp.StatusCode())
	}
	return nil
}

// Ping reads a single row from the sales table to prove the store answers.
func (s *RESTStore) Ping(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "data").
		SetQueryParam("limit", "1").
		Get("/rds_vendas")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: probe returned status %d", ErrBackendUnavailable, resp.StatusCode())
	}
	return nil
}

// Close is a no-op; the HTTP client holds no persistent connection state.
func (s *RESTStore) Close() error { return nil }
