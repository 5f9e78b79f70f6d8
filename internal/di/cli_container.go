package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/adapters/dns"
	"github.com/mailprobe/mailprobe/internal/adapters/quota"
	"github.com/mailprobe/mailprobe/internal/adapters/sink"
	"github.com/mailprobe/mailprobe/internal/adapters/smtpclient"
	"github.com/mailprobe/mailprobe/internal/classify"
	"github.com/mailprobe/mailprobe/internal/config"
	"github.com/mailprobe/mailprobe/internal/core"
	"github.com/mailprobe/mailprobe/internal/logging"
	"github.com/mailprobe/mailprobe/internal/syntax"
	"github.com/mailprobe/mailprobe/internal/typo"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Probe flags
	HeloDomain   string
	MailFrom     string
	SMTPTimeout  string
	SkipSMTP     bool
	SkipCatchAll bool

	// Batch flags
	Workers    int
	Owner      string
	QuotaLimit int

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Probe flags
	flag.StringVar(&flags.HeloDomain, "helo", "verifier.local", "Identity for the HELO/EHLO command")
	flag.StringVar(&flags.MailFrom, "from", "probe@verifier.local", "Sender identity for the MAIL FROM command")
	flag.StringVar(&flags.SMTPTimeout, "smtp-timeout", "10s", "Per-host timeout for the mailbox probe")
	flag.BoolVar(&flags.SkipSMTP, "skip-smtp", false, "Skip the mailbox probe and catch-all detection")
	flag.BoolVar(&flags.SkipCatchAll, "skip-catch-all", false, "Skip only catch-all detection")

	// Batch flags
	flag.IntVar(&flags.Workers, "workers", 10, "Concurrent workers for batch verification")
	flag.StringVar(&flags.Owner, "owner", "cli", "Quota owner for this run")
	flag.IntVar(&flags.QuotaLimit, "quota", 1000, "Validation allowance for the quota owner")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "File with one address per line (single-address mode if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register syntax validator
	if err := container.Provide(func() core.SyntaxParser {
		return syntax.NewValidator()
	}); err != nil {
		return nil, err
	}

	// Register classifier with built-in sets
	if err := container.Provide(func(logger *zap.Logger) core.Classifier {
		return classify.NewChecker(nil, nil, logger)
	}); err != nil {
		return nil, err
	}

	// Register typo suggester with built-in providers
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

	// Register in-memory sink for CLI runs
	if err := container.Provide(func() core.RecordSink {
		return sink.NewMemorySink()
	}); err != nil {
		return nil, err
	}

	// Register in-memory quota store sized from flags
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) core.QuotaStore {
		return quota.NewMemoryStore(int64(flags.QuotaLimit), quota.PolicyReject, logger)
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
		quotaStore core.QuotaStore,
		flags *CLIFlags,
		logger *zap.Logger,
	) *core.BatchOrchestrator {
		return core.NewBatchOrchestrator(service, quotaStore, flags.Workers, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("smtp.helo_domain", flags.HeloDomain)
	v.Set("smtp.mail_from", flags.MailFrom)
	v.Set("smtp.timeout", flags.SMTPTimeout)
	v.Set("batch.workers", flags.Workers)
	v.Set("quota.default_limit", flags.QuotaLimit)
	v.Set("cli.verbose", flags.Verbose)

	return config.NewFromViper(v)
}
