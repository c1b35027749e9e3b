package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Datasets  DatasetsConfig  `yaml:"datasets" mapstructure:"datasets"`
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Query     QueryConfig     `yaml:"query" mapstructure:"query"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Social    SocialConfig    `yaml:"social" mapstructure:"social"`
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	Breach    BreachConfig    `yaml:"breach" mapstructure:"breach"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Ollama    OllamaConfig    `yaml:"ollama" mapstructure:"ollama"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the index database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DatasetsConfig configures dataset storage and import scanning.
type DatasetsConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	SourceDir string `yaml:"source_dir" mapstructure:"source_dir"`
	ChunkSize int    `yaml:"chunk_size" mapstructure:"chunk_size"`
}

// RegistryConfig configures dataset resolution heuristics.
type RegistryConfig struct {
	ClassesFile string `yaml:"classes_file" mapstructure:"classes_file"`
}

// QueryConfig configures compiled-query execution.
type QueryConfig struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
}

// SearchConfig configures the web-search probe.
type SearchConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// SocialConfig configures the profile-existence probes.
type SocialConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DirectoryConfig configures the public-directory probe.
type DirectoryConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BreachConfig configures the breach-index probe.
type BreachConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EnrichConfig configures the enrichment orchestrator's branch budgets.
type EnrichConfig struct {
	SearchTimeoutSecs    int `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	SocialTimeoutSecs    int `yaml:"social_timeout_secs" mapstructure:"social_timeout_secs"`
	DirectoryTimeoutSecs int `yaml:"directory_timeout_secs" mapstructure:"directory_timeout_secs"`
	BreachTimeoutSecs    int `yaml:"breach_timeout_secs" mapstructure:"breach_timeout_secs"`
	MaxSearchWorkers     int `yaml:"max_search_workers" mapstructure:"max_search_workers"`
	MaxSocialWorkers     int `yaml:"max_social_workers" mapstructure:"max_social_workers"`
}

// OllamaConfig configures the local text-generation backend.
type OllamaConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig configures the Anthropic text-generation backend.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ReportConfig selects the report generator backend.
type ReportConfig struct {
	Generator string `yaml:"generator" mapstructure:"generator"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DATACHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/datachat_index.db")
	v.SetDefault("datasets.dir", "data")
	v.SetDefault("datasets.source_dir", "databases")
	v.SetDefault("datasets.chunk_size", 100000)
	v.SetDefault("query.default_limit", 100)
	v.SetDefault("search.base_url", "https://www.google.com")
	v.SetDefault("search.timeout_secs", 8)
	v.SetDefault("search.rate_per_sec", 2.0)
	v.SetDefault("search.burst", 4)
	v.SetDefault("social.timeout_secs", 8)
	v.SetDefault("directory.base_url", "https://www.pagesjaunes.fr")
	v.SetDefault("directory.timeout_secs", 8)
	v.SetDefault("breach.base_url", "https://api.xposedornot.com")
	v.SetDefault("breach.timeout_secs", 8)
	v.SetDefault("enrich.search_timeout_secs", 20)
	v.SetDefault("enrich.social_timeout_secs", 12)
	v.SetDefault("enrich.directory_timeout_secs", 10)
	v.SetDefault("enrich.breach_timeout_secs", 10)
	v.SetDefault("enrich.max_search_workers", 4)
	v.SetDefault("enrich.max_social_workers", 6)
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "qwen2.5:7b")
	v.SetDefault("ollama.timeout_secs", 20)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("report.generator", "ollama")
	v.SetDefault("server.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
