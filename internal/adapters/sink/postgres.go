package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// PostgresSink persists validation records to a PostgreSQL database.
type PostgresSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresSink connects using the given DSN and ensures the records table
// exists.
func NewPostgresSink(dsn string, logger *zap.Logger) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	if _, err := db.Exec(createRecordsTablePostgres); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	return &PostgresSink{db: db, logger: logger}, nil
}

const createRecordsTablePostgres = `
CREATE TABLE IF NOT EXISTS validation_records (
	id BIGSERIAL PRIMARY KEY,
	owner TEXT NOT NULL,
	email TEXT NOT NULL,
	domain TEXT NOT NULL,
	score INT NOT NULL,
	band TEXT NOT NULL,
	record JSONB NOT NULL,
	checked_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_validation_records_owner ON validation_records (owner);
`

// Store inserts one record.
func (s *PostgresSink) Store(ctx context.Context, owner string, record *core.ValidationRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_records (owner, email, domain, score, band, record, checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
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
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
