package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config holds the catalogsearch service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds upstream catalog API settings.
type CatalogConfig struct {
	BaseURL       string `yaml:"base_url"`
	ProductsPath  string `yaml:"products_path"`
	BundlingsPath string `yaml:"bundlings_path"`
	APIKey        string `yaml:"api_key"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	MaxPages      int    `yaml:"max_pages"`
}

// CacheConfig holds catalog snapshot cache settings.
type CacheConfig struct {
	TTLSec              int    `yaml:"ttl_sec"`
	RefreshIntervalSec  int    `yaml:"refresh_interval_sec"` // 0 = no background refresh
	RefreshTimeoutSec   int    `yaml:"refresh_timeout_sec"`
	SnapshotTTLSec      int    `yaml:"snapshot_ttl_sec"` // persisted copy, 0 = no expiry
	KeyPrefix           string `yaml:"key_prefix"`
	ManualRefreshPerMin int    `yaml:"manual_refresh_per_min"`
}

// DatabaseConfig holds snapshot store connection settings.
// Persistence is disabled when Addrs is empty.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a snapshot store is configured.
func (d *DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// SearchConfig holds ranking settings.
type SearchConfig struct {
	Weights     WeightsConfig `yaml:"weights"`
	MinScore    float64       `yaml:"min_score"`
	FuzzyBudget int           `yaml:"fuzzy_budget"`
	TieEpsilon  float64       `yaml:"tie_epsilon"`
	Locale      string        `yaml:"locale"`
}

// WeightsConfig holds per-field score multipliers.
type WeightsConfig struct {
	Name        float64 `yaml:"name"`
	Category    float64 `yaml:"category"`
	Brand       float64 `yaml:"brand"`
	Description float64 `yaml:"description"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.ProductsPath == "" {
		c.Catalog.ProductsPath = "/products"
	}
	if c.Catalog.BundlingsPath == "" {
		c.Catalog.BundlingsPath = "/bundlings"
	}
	if c.Catalog.TimeoutSec <= 0 {
		c.Catalog.TimeoutSec = 15
	}
	if c.Catalog.MaxPages <= 0 {
		c.Catalog.MaxPages = 100
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.RefreshTimeoutSec <= 0 {
		c.Cache.RefreshTimeoutSec = 30
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "catalogsearch:"
	}
	if c.Cache.ManualRefreshPerMin <= 0 {
		c.Cache.ManualRefreshPerMin = 6
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.Weights == (WeightsConfig{}) {
		c.Search.Weights = WeightsConfig{Name: 4.0, Category: 2.5, Brand: 2.5, Description: 1.0}
	}
	if c.Search.MinScore <= 0 {
		c.Search.MinScore = 0.1
	}
	if c.Search.FuzzyBudget <= 0 {
		c.Search.FuzzyBudget = 2
	}
	if c.Search.TieEpsilon <= 0 {
		c.Search.TieEpsilon = 0.01
	}
	if c.Search.Locale == "" {
		c.Search.Locale = "en"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if c.Cache.RefreshIntervalSec < 0 {
		return fmt.Errorf("cache.refresh_interval_sec must not be negative, got %d", c.Cache.RefreshIntervalSec)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
		// ok
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	w := c.Search.Weights
	if w.Name < 0 || w.Category < 0 || w.Brand < 0 || w.Description < 0 {
		return fmt.Errorf("search.weights must not be negative")
	}
	if _, err := language.Parse(c.Search.Locale); err != nil {
		return fmt.Errorf("search.locale %q: %w", c.Search.Locale, err)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
