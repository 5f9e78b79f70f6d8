package factory

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/adapters/quota"
	"github.com/mailprobe/mailprobe/internal/config"
	"github.com/mailprobe/mailprobe/internal/core"
)

// QuotaFactory creates quota stores based on configuration
type QuotaFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewQuotaFactory creates a new quota factory
func NewQuotaFactory(cfg *config.Config, logger *zap.Logger) *QuotaFactory {
	return &QuotaFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateQuotaStore creates a quota store based on the configuration
func (f *QuotaFactory) CreateQuotaStore() (core.QuotaStore, error) {
	quotaCfg := f.cfg.GetQuota()
	policy := quota.AdmissionPolicy(quotaCfg.Admission)

	switch quotaCfg.Backend {
	case "memory":
		return quota.NewMemoryStore(int64(quotaCfg.DefaultLimit), policy, f.logger), nil
	case "redis":
		redisCfg := f.cfg.GetRedis()
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		return quota.NewRedisStore(client, int64(quotaCfg.DefaultLimit), policy, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported quota backend: %s", quotaCfg.Backend)
	}
}
