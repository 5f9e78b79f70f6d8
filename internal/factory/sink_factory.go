package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/adapters/sink"
	"github.com/mailprobe/mailprobe/internal/config"
	"github.com/mailprobe/mailprobe/internal/core"
)

// SinkFactory creates record sinks based on configuration
type SinkFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSinkFactory creates a new sink factory
func NewSinkFactory(cfg *config.Config, logger *zap.Logger) *SinkFactory {
	return &SinkFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRecordSink creates a record sink based on the configuration
func (f *SinkFactory) CreateRecordSink() (core.RecordSink, error) {
	sinkCfg := f.cfg.GetSink()

	switch sinkCfg.Type {
	case "memory":
		return sink.NewMemorySink(), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sinkCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return sink.NewSQLiteSink(sinkCfg.SQLitePath, f.logger)
	case "mysql":
		return sink.NewMySQLSink(sinkCfg.MySQLDSN, f.logger)
	case "postgres":
		return sink.NewPostgresSink(sinkCfg.PostgresDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", sinkCfg.Type)
	}
}
