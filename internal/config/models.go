package config

import "time"

// SMTPConfig represents the configuration for the mailbox probe
type SMTPConfig struct {
	HeloDomain    string
	MailFrom      string
	Port          string
	Timeout       time.Duration
	MaxHosts      int
	GlobalRate    int
	PerDomainRate int
}

// DNSConfig represents the configuration for MX resolution
type DNSConfig struct {
	Timeout          time.Duration
	CacheTTL         time.Duration
	CleanupFrequency time.Duration
}

// BatchConfig represents the configuration for batch processing
type BatchConfig struct {
	Workers int
}

// QuotaConfig represents the configuration for quota enforcement
type QuotaConfig struct {
	Backend      string
	DefaultLimit int
	Admission    string
}

// RedisConfig represents the configuration for the Redis connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SinkConfig represents the configuration for record persistence
type SinkConfig struct {
	Type        string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
}

// ListsConfig represents overrides for the classifier sets
type ListsConfig struct {
	DisposableDomains []string
	RolePrefixes      []string
}

// TypoConfig represents the configuration for the typo suggester
type TypoConfig struct {
	Threshold int
	Providers []string
}

// GetSMTP returns the SMTP probe configuration
func (c *Config) GetSMTP() SMTPConfig {
	timeout, err := c.GetDuration("smtp.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return SMTPConfig{
		HeloDomain:    c.GetString("smtp.helo_domain"),
		MailFrom:      c.GetString("smtp.mail_from"),
		Port:          c.GetString("smtp.port"),
		Timeout:       timeout,
		MaxHosts:      c.GetInt("smtp.max_hosts"),
		GlobalRate:    c.GetInt("smtp.global_rate"),
		PerDomainRate: c.GetInt("smtp.per_domain_rate"),
	}
}

// GetDNS returns the DNS resolution configuration
func (c *Config) GetDNS() DNSConfig {
	timeout, err := c.GetDuration("dns.timeout")
	if err != nil {
		timeout = 5 * time.Second
	}
	ttl, err := c.GetDuration("dns.cache_ttl")
	if err != nil {
		ttl = 5 * time.Minute
	}
	cleanup, err := c.GetDuration("dns.cleanup_frequency")
	if err != nil {
		cleanup = time.Minute
	}
	return DNSConfig{
		Timeout:          timeout,
		CacheTTL:         ttl,
		CleanupFrequency: cleanup,
	}
}

// GetBatch returns the batch processing configuration
func (c *Config) GetBatch() BatchConfig {
	return BatchConfig{
		Workers: c.GetInt("batch.workers"),
	}
}

// GetQuota returns the quota configuration
func (c *Config) GetQuota() QuotaConfig {
	return QuotaConfig{
		Backend:      c.GetString("quota.backend"),
		DefaultLimit: c.GetInt("quota.default_limit"),
		Admission:    c.GetString("quota.admission"),
	}
}

// GetRedis returns the Redis configuration
func (c *Config) GetRedis() RedisConfig {
	return RedisConfig{
		Addr:     c.GetString("redis.addr"),
		Password: c.GetString("redis.password"),
		DB:       c.GetInt("redis.db"),
	}
}

// GetSink returns the persistence configuration
func (c *Config) GetSink() SinkConfig {
	return SinkConfig{
		Type:        c.GetString("sink.type"),
		SQLitePath:  c.GetString("sink.sqlite_path"),
		MySQLDSN:    c.GetString("sink.mysql_dsn"),
		PostgresDSN: c.GetString("sink.postgres_dsn"),
	}
}

// GetLists returns the classifier set overrides
func (c *Config) GetLists() ListsConfig {
	return ListsConfig{
		DisposableDomains: c.GetStringSlice("lists.disposable_domains"),
		RolePrefixes:      c.GetStringSlice("lists.role_prefixes"),
	}
}

// GetTypo returns the typo suggester configuration
func (c *Config) GetTypo() TypoConfig {
	return TypoConfig{
		Threshold: c.GetInt("typo.threshold"),
		Providers: c.GetStringSlice("typo.providers"),
	}
}
