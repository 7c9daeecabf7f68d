// Package config loads service configuration from an optional YAML file,
// layered under environment variable overrides. A missing config file is not
// an error: every value has a usable default for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pubdash/classifier/internal/domain"
)

// Default configuration values.
const (
	defaultServiceName    = "bib-classifier"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8070
	defaultConcurrency    = 8
	defaultBatchSize      = 500
	defaultRateLimit      = 200
	defaultRateBurst      = 50
	defaultMaxOverflow    = 100
	defaultDBDriver       = "postgres"
	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "bibclassifier"
	defaultDBSSLMode      = "disable"
	defaultDBMaxConns     = 25
	defaultDBMaxIdleConns = 5
	defaultSQLitePath     = "bibclassifier.db"
	defaultESURL          = "http://localhost:9200"
	defaultESIndex        = "publications"
	defaultESMaxRetries   = 3
	defaultESTimeoutSec   = 30
	defaultESFlushRecords = 1000
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Config holds all configuration for the classifier service.
type Config struct {
	Service        ServiceConfig        `yaml:"service"`
	Database       DatabaseConfig       `yaml:"database"`
	Elasticsearch  ElasticsearchConfig  `yaml:"elasticsearch"`
	Logging        LoggingConfig        `yaml:"logging"`
	Classification ClassificationConfig `yaml:"classification"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Port        int    `yaml:"port"`
	Debug       bool   `yaml:"debug"`
	Concurrency int    `yaml:"concurrency"`
	BatchSize   int    `yaml:"batch_size"`
	// RateLimit caps classification throughput in records per second;
	// RateBurst is the token bucket size.
	RateLimit int `yaml:"rate_limit"`
	RateBurst int `yaml:"rate_burst"`
}

// DatabaseConfig holds rule-store configuration. Driver selects between
// postgres (production) and sqlite3 (local single-file development).
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	SQLitePath      string        `yaml:"sqlite_path"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ElasticsearchConfig holds publication-index configuration. Indexing is
// off unless Enabled is set; classification works without a search backend.
type ElasticsearchConfig struct {
	Enabled      bool          `yaml:"enabled"`
	URL          string        `yaml:"url"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	Index        string        `yaml:"index"`
	MaxRetries   int           `yaml:"max_retries"`
	Timeout      time.Duration `yaml:"timeout"`
	FlushRecords int           `yaml:"flush_records"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ClassificationConfig holds scoring weights and batch-shaping settings.
type ClassificationConfig struct {
	Weights domain.Weights `yaml:"weights"`
	// MaxOverflow is the default overflow-bucket cap for balanced batches.
	MaxOverflow int `yaml:"max_overflow"`
	// UseBuiltinRules seeds the engine from the compiled-in table when the
	// rule store is empty or unreachable.
	UseBuiltinRules bool `yaml:"use_builtin_rules"`
}

// Load reads configuration from path (if it exists), applies environment
// overrides, and fills remaining zero values with defaults. A .env file in
// the working directory is honored first, matching local workflows.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults and environment only.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	setDefaults(cfg)
	return cfg, nil
}

// applyEnv layers environment variables over file values.
func applyEnv(cfg *Config) {
	envString(&cfg.Service.Name, "SERVICE_NAME")
	envInt(&cfg.Service.Port, "CLASSIFIER_PORT")
	envBool(&cfg.Service.Debug, "APP_DEBUG")
	envInt(&cfg.Service.Concurrency, "CLASSIFIER_CONCURRENCY")
	envInt(&cfg.Service.BatchSize, "CLASSIFIER_BATCH_SIZE")

	envString(&cfg.Database.Driver, "DB_DRIVER")
	envString(&cfg.Database.Host, "POSTGRES_HOST")
	envInt(&cfg.Database.Port, "POSTGRES_PORT")
	envString(&cfg.Database.User, "POSTGRES_USER")
	envString(&cfg.Database.Password, "POSTGRES_PASSWORD")
	envString(&cfg.Database.Database, "POSTGRES_DB")
	envString(&cfg.Database.SSLMode, "POSTGRES_SSLMODE")
	envString(&cfg.Database.SQLitePath, "SQLITE_PATH")

	envBool(&cfg.Elasticsearch.Enabled, "ELASTICSEARCH_ENABLED")
	envString(&cfg.Elasticsearch.URL, "ELASTICSEARCH_URL")
	envString(&cfg.Elasticsearch.Username, "ELASTICSEARCH_USERNAME")
	envString(&cfg.Elasticsearch.Password, "ELASTICSEARCH_PASSWORD")
	envString(&cfg.Elasticsearch.Index, "ELASTICSEARCH_INDEX")

	envString(&cfg.Logging.Level, "LOG_LEVEL")
	envString(&cfg.Logging.Format, "LOG_FORMAT")

	envInt(&cfg.Classification.MaxOverflow, "CLASSIFIER_MAX_OVERFLOW")
	envBool(&cfg.Classification.UseBuiltinRules, "CLASSIFIER_BUILTIN_RULES")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setLoggingDefaults(&cfg.Logging)
	setClassificationDefaults(&cfg.Classification)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchSize == 0 {
		s.BatchSize = defaultBatchSize
	}
	if s.RateLimit == 0 {
		s.RateLimit = defaultRateLimit
	}
	if s.RateBurst == 0 {
		s.RateBurst = defaultRateBurst
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.SQLitePath == "" {
		d.SQLitePath = defaultSQLitePath
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.Index == "" {
		e.Index = defaultESIndex
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
	if e.FlushRecords == 0 {
		e.FlushRecords = defaultESFlushRecords
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setClassificationDefaults(c *ClassificationConfig) {
	if c.Weights == (domain.Weights{}) {
		c.Weights = domain.DefaultWeights()
	}
	if c.MaxOverflow == 0 {
		c.MaxOverflow = defaultMaxOverflow
	}
}
