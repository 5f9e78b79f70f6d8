package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// SQLiteSink persists validation records to a local SQLite database.
type SQLiteSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteSink opens (or creates) the database at path and ensures the
// records table exists.
func NewSQLiteSink(path string, logger *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(createRecordsTableSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	return &SQLiteSink{db: db, logger: logger}, nil
}

const createRecordsTableSQLite = `
CREATE TABLE IF NOT EXISTS validation_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner TEXT NOT NULL,
	email TEXT NOT NULL,
	domain TEXT NOT NULL,
	score INTEGER NOT NULL,
	band TEXT NOT NULL,
	record TEXT NOT NULL,
	checked_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_validation_records_owner ON validation_records (owner);
`

// Store inserts one record. The full record is stored as JSON alongside the
// columns used for querying.
func (s *SQLiteSink) Store(ctx context.Context, owner string, record *core.ValidationRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_records (owner, email, domain, score, band, record, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		owner,
		record.Address.String(),
		record.Address.Domain,
		record.Confidence.Score,
		string(record.Confidence.Band),
		string(payload),
		record.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	s.logger.Debug("stored validation record",
		zap.String("owner", owner),
		zap.String("email", record.Address.String()),
		zap.Int("score", record.Confidence.Score))
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
