package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/adapters/dns"
	"github.com/mailprobe/mailprobe/internal/adapters/smtpclient"
	"github.com/mailprobe/mailprobe/internal/classify"
	"github.com/mailprobe/mailprobe/internal/config"
	"github.com/mailprobe/mailprobe/internal/core"
	"github.com/mailprobe/mailprobe/internal/factory"
	"github.com/mailprobe/mailprobe/internal/logging"
	"github.com/mailprobe/mailprobe/internal/syntax"
	"github.com/mailprobe/mailprobe/internal/typo"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewSinkFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewQuotaFactory); err != nil {
		return nil, err
	}

	// Register syntax validator
	if err := container.Provide(func() core.SyntaxParser {
		return syntax.NewValidator()
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.Classifier {
		lists := cfg.GetLists()
		return classify.NewChecker(lists.DisposableDomains, lists.RolePrefixes, logger)
	}); err != nil {
		return nil, err
	}

	// Register typo suggester
	if err := container.Provide(func(cfg *config.Config) core.Suggester {
		typoCfg := cfg.GetTypo()
		return typo.NewSuggester(typoCfg.Providers, typoCfg.Threshold)
	}); err != nil {
		return nil, err
	}

	// Register MX resolver
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.MXResolver {
		dnsCfg := cfg.GetDNS()
		return dns.NewResolver(dnsCfg.Timeout, dnsCfg.CacheTTL, dnsCfg.CleanupFrequency, logger)
	}); err != nil {
		return nil, err
	}

	// Register mailbox prober
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.MailboxProber {
		smtpCfg := cfg.GetSMTP()
		limiter := smtpclient.NewPolitenessLimiter(
			float64(smtpCfg.GlobalRate), float64(smtpCfg.PerDomainRate))
		return smtpclient.NewProber(smtpclient.Options{
			HeloDomain: smtpCfg.HeloDomain,
			MailFrom:   smtpCfg.MailFrom,
			Port:       smtpCfg.Port,
			Timeout:    smtpCfg.Timeout,
			MaxHosts:   smtpCfg.MaxHosts,
		}, limiter, logger)
	}); err != nil {
		return nil, err
	}

	// Register record sink
	if err := container.Provide(func(f *factory.SinkFactory) (core.RecordSink, error) {
		return f.CreateRecordSink()
	}); err != nil {
		return nil, err
	}

	// Register quota store
	if err := container.Provide(func(f *factory.QuotaFactory) (core.QuotaStore, error) {
		return f.CreateQuotaStore()
	}); err != nil {
		return nil, err
	}

	// Register verification service
	if err := container.Provide(core.NewVerifierService); err != nil {
		return nil, err
	}

	// Register batch orchestrator
	if err := container.Provide(func(
		service *core.VerifierService,
		quota core.QuotaStore,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.BatchOrchestrator {
		return core.NewBatchOrchestrator(service, quota, cfg.GetBatch().Workers, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
