// Package config loads pubwatch settings from defaults, an optional YAML file
// and PUBWATCH_ environment variables, and configures logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override (PUBWATCH_ARXIV_PAGE_SIZE, ...).
	EnvPrefix = "PUBWATCH"
	// AppDir is the directory name under XDG_CONFIG_HOME.
	AppDir = "pubwatch"
	// FileName is the config file name searched for.
	FileName = "pubwatch.yml"
)

// Config is the full pubwatch configuration.
type Config struct {
	Keyword      string `json:"keyword" yaml:"keyword" mapstructure:"keyword"`
	DataDir      string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	RosterFile   string `json:"roster_file" yaml:"roster_file" mapstructure:"roster_file"`
	SnapshotFile string `json:"snapshot_file" yaml:"snapshot_file" mapstructure:"snapshot_file"`
	IndexFile    string `json:"index_file" yaml:"index_file" mapstructure:"index_file"`

	Arxiv ArxivConfig `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Fetch FetchConfig `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Log   LogConfig   `json:"log" yaml:"log" mapstructure:"log"`
}

// ArxivConfig configures the arXiv API client.
type ArxivConfig struct {
	BaseURL           string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	PageSize          int    `json:"page_size" yaml:"page_size" mapstructure:"page_size"`
	TimeoutSecs       int    `json:"timeout_secs" yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestIntervalMs int    `json:"request_interval_ms" yaml:"request_interval_ms" mapstructure:"request_interval_ms"`
}

// Timeout returns the per-request timeout.
func (a ArxivConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// RequestInterval returns the minimum spacing between API requests.
func (a ArxivConfig) RequestInterval() time.Duration {
	return time.Duration(a.RequestIntervalMs) * time.Millisecond
}

// FetchConfig configures aggregation.
type FetchConfig struct {
	MaxResultsKeyword   int  `json:"max_results_keyword" yaml:"max_results_keyword" mapstructure:"max_results_keyword"`
	MaxResultsPerAuthor int  `json:"max_results_per_author" yaml:"max_results_per_author" mapstructure:"max_results_per_author"`
	AuthorConcurrency   int  `json:"author_concurrency" yaml:"author_concurrency" mapstructure:"author_concurrency"`
	SkipFailedAuthors   bool `json:"skip_failed_authors" yaml:"skip_failed_authors" mapstructure:"skip_failed_authors"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("keyword", "quandela")
	v.SetDefault("data_dir", ".")
	v.SetDefault("roster_file", "authors_quandela.csv")
	v.SetDefault("snapshot_file", "arxiv_quandela_publications.csv")
	v.SetDefault("index_file", filepath.Join(".pubwatch", "index.db"))
	v.SetDefault("arxiv.base_url", "http://export.arxiv.org/api/query")
	v.SetDefault("arxiv.page_size", 100)
	v.SetDefault("arxiv.timeout_secs", 30)
	v.SetDefault("arxiv.request_interval_ms", 3000)
	v.SetDefault("fetch.max_results_keyword", 200)
	v.SetDefault("fetch.max_results_per_author", 50)
	v.SetDefault("fetch.author_concurrency", 1)
	v.SetDefault("fetch.skip_failed_authors", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration. An explicit path must exist; otherwise pubwatch.yml
// is searched in the working directory then the XDG config directory, and its
// absence is not an error. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(ExpandPath(path))
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		if dir := GlobalDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Arxiv.PageSize <= 0 {
		return fmt.Errorf("invalid arxiv.page_size: %d (must be positive)", c.Arxiv.PageSize)
	}
	if c.Arxiv.TimeoutSecs <= 0 {
		return fmt.Errorf("invalid arxiv.timeout_secs: %d (must be positive)", c.Arxiv.TimeoutSecs)
	}
	if c.Arxiv.RequestIntervalMs < 0 {
		return fmt.Errorf("invalid arxiv.request_interval_ms: %d (must not be negative)", c.Arxiv.RequestIntervalMs)
	}
	if c.Fetch.MaxResultsKeyword < 0 || c.Fetch.MaxResultsPerAuthor < 0 {
		return fmt.Errorf("invalid fetch limits: max results must not be negative")
	}
	if c.Fetch.AuthorConcurrency < 1 {
		return fmt.Errorf("invalid fetch.author_concurrency: %d (must be at least 1)", c.Fetch.AuthorConcurrency)
	}
	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// RosterPath returns the roster CSV path resolved against DataDir.
func (c *Config) RosterPath() string {
	return c.resolve(c.RosterFile)
}

// SnapshotPath returns the publication snapshot path resolved against DataDir.
func (c *Config) SnapshotPath() string {
	return c.resolve(c.SnapshotFile)
}

// IndexPath returns the SQLite index path resolved against DataDir.
func (c *Config) IndexPath() string {
	return c.resolve(c.IndexFile)
}

func (c *Config) resolve(name string) string {
	name = ExpandPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ExpandPath(c.DataDir), name)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return nil
}
