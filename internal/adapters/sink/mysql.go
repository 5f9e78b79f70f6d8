package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// MySQLSink persists validation records to a MySQL database.
type MySQLSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLSink connects using the given DSN and ensures the records table
// exists.
func NewMySQLSink(dsn string, logger *zap.Logger) (*MySQLSink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql database: %w", err)
	}

	if _, err := db.Exec(createRecordsTableMySQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	return &MySQLSink{db: db, logger: logger}, nil
}

const createRecordsTableMySQL = `
CREATE TABLE IF NOT EXISTS validation_records (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	owner VARCHAR(255) NOT NULL,
	email VARCHAR(320) NOT NULL,
	domain VARCHAR(255) NOT NULL,
	score INT NOT NULL,
	band VARCHAR(16) NOT NULL,
	record JSON NOT NULL,
	checked_at DATETIME NOT NULL,
	INDEX idx_validation_records_owner (owner)
)`

// Store inserts one record.
func (s *MySQLSink) Store(ctx context.Context, owner string, record *core.ValidationRecord) error {
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
func (s *MySQLSink) Close() error {
	return s.db.Close()
}
