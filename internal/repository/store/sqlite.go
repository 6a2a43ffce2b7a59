package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Table DDL mirrors what the PDF extraction step produces. The legacy buyer
// table and its replacement coexist on purpose: reads prefer the new one and
// fall back while old files are still around.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rds_vendas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		data TEXT,
		valor_total REAL,
		valor_eventos REAL,
		pax_hoje INTEGER,
		ocupacao_hoje REAL,
		diaria_media_uh REAL
	)`,
	`CREATE TABLE IF NOT EXISTS chart_compradores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		data TEXT,
		comprador TEXT,
		valor REAL
	)`,
	`CREATE TABLE IF NOT EXISTS chart_compradores_duplo (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		data TEXT,
		comprador TEXT,
		total_reservas REAL,
		reservas_dia REAL,
		dia_referencia TEXT
	)`,
}

// SQLiteStore is the embedded file-backed implementation of Store.
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLite opens (or creates) the local database file and ensures the report
// tables exist.
func NewSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	for _, ddl := range schema {
		if err := db.Exec(ddl).Error; err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Query runs a raw parameterized SQL statement and scans the result rows.
func (s *SQLiteStore) Query(ctx context.Context, query string, params ...any) (Table, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Raw(query, params...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}

	out := make(Table, 0, len(rows))
	for _, r := range rows {
		out = append(out, Row(r))
	}
	return out, nil
}

// Insert writes one record into the named table as a parameterized insert.
func (s *SQLiteStore) Insert(ctx context.Context, table string, record map[string]any) error {
	if len(record) == 0 {
		return fmt.Errorf("insert into %s: empty record", table)
	}
	if err := s.db.WithContext(ctx).Table(table).Create(record).Error; err != nil {
		return fmt.Errorf("sqlite insert into %s: %w", table, err)
	}
	return nil
}

// Ping issues a trivial liveness probe.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
