// Package config handles configuration loading for StockPulse.
// It supports YAML config files, a .env file, and environment variable overrides.
// The loaded Config is passed by value into each client at construction time
// and treated as read-only for the life of the process.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LLM provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// News provider names.
const (
	NewsProviderNewsAPI = "newsapi"
	NewsProviderRSS     = "rss"
)

// MaxArticles is the upper bound on articles processed per request.
const MaxArticles = 5

// Config represents the complete application configuration.
type Config struct {
	Market  MarketConfig  `mapstructure:"market"  yaml:"market"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm"`
	Report  ReportConfig  `mapstructure:"report"  yaml:"report"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// MarketConfig holds market-data provider settings. Yahoo Finance needs no key.
type MarketConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// NewsConfig holds news provider settings.
type NewsConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider"` // "newsapi" or "rss"
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	RSSURL   string        `mapstructure:"rss_url"  yaml:"rss_url"`
	APIKey   string        `mapstructure:"api_key"  yaml:"api_key"`
	Limit    int           `mapstructure:"limit"    yaml:"limit"`
	Timeout  time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// LLMConfig holds language-model provider settings.
type LLMConfig struct {
	Provider  string        `mapstructure:"provider"   yaml:"provider"` // "openai", "groq", "gemini"
	Model     string        `mapstructure:"model"      yaml:"model"`
	BaseURL   string        `mapstructure:"base_url"   yaml:"base_url"`
	OpenAIKey string        `mapstructure:"openai_key" yaml:"openai_key"`
	GroqKey   string        `mapstructure:"groq_key"   yaml:"groq_key"`
	GeminiKey string        `mapstructure:"gemini_key" yaml:"gemini_key"`
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"`
}

// ReportConfig holds orchestration and rendering settings.
type ReportConfig struct {
	DefaultTicker string        `mapstructure:"default_ticker" yaml:"default_ticker"`
	Timeout       time.Duration `mapstructure:"timeout"        yaml:"timeout"`
	Format        string        `mapstructure:"format"         yaml:"format"` // "text", "markdown", "json", "html"
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `mapstructure:"level"    yaml:"level"`    // "debug", "info", "warn", "error"
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // "console" or "json"
	File     string `mapstructure:"file"     yaml:"file"`     // log file for the TUI; empty discards its logs
}

// APIKey returns the key for the configured LLM provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case ProviderGroq:
		return c.GroqKey
	case ProviderGemini:
		return c.GeminiKey
	default:
		return c.OpenAIKey
	}
}

// ResolvedModel returns the configured model, or the provider's default.
func (c LLMConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderGroq:
		return "llama-3.3-70b-versatile"
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return "gpt-4-turbo"
	}
}

// ResolvedBaseURL returns the configured base URL, or the provider's default.
func (c LLMConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	switch c.Provider {
	case ProviderGroq:
		return "https://api.groq.com/openai/v1"
	case ProviderGemini:
		return ""
	default:
		return "https://api.openai.com/v1"
	}
}

// Addr returns the listen address for the HTTP server.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stockpulse/config.yaml (home directory)
//  3. /etc/stockpulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: STOCKPULSE_<SECTION>_<KEY>, e.g., STOCKPULSE_NEWS_LIMIT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stockpulse"))
	v.AddConfigPath("/etc/stockpulse")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found: defaults + env vars.
	}

	return decode(v, ".env")
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v, filepath.Join(filepath.Dir(path), ".env"))
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("STOCKPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper, dotEnvPath string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromDotEnv(&cfg, dotEnvPath)
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerations and bounds. Missing API keys are not an error:
// a provider without a key fails when it is called.
func (c *Config) Validate() error {
	switch c.News.Provider {
	case NewsProviderNewsAPI, NewsProviderRSS:
	default:
		return fmt.Errorf("config: unknown news provider %q", c.News.Provider)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGroq, ProviderGemini:
	default:
		return fmt.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}
	if c.News.Limit < 1 || c.News.Limit > MaxArticles {
		return fmt.Errorf("config: news.limit must be between 1 and %d, got %d", MaxArticles, c.News.Limit)
	}
	switch c.Report.Format {
	case "text", "markdown", "json", "html":
	default:
		return fmt.Errorf("config: unknown report format %q", c.Report.Format)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Market data
	v.SetDefault("market.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("market.timeout", 30*time.Second)

	// News
	v.SetDefault("news.provider", NewsProviderNewsAPI)
	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.rss_url", "https://feeds.finance.yahoo.com/rss/2.0/headline")
	v.SetDefault("news.api_key", "")
	v.SetDefault("news.limit", MaxArticles)
	v.SetDefault("news.timeout", 30*time.Second)

	// LLM
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.openai_key", "")
	v.SetDefault("llm.groq_key", "")
	v.SetDefault("llm.gemini_key", "")
	v.SetDefault("llm.timeout", 120*time.Second)

	// Report
	v.SetDefault("report.default_ticker", "AAPL")
	v.SetDefault("report.timeout", 60*time.Second)
	v.SetDefault("report.format", "text")

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.file", "")
}

// secretEnv maps conventional provider variable names to config fields.
var secretEnv = []struct {
	name string
	set  func(*Config, string)
}{
	{"NEWSAPI_KEY", func(c *Config, s string) { c.News.APIKey = s }},
	{"OPENAI_API_KEY", func(c *Config, s string) { c.LLM.OpenAIKey = s }},
	{"GROQ_API_KEY", func(c *Config, s string) { c.LLM.GroqKey = s }},
	{"GEMINI_API_KEY", func(c *Config, s string) { c.LLM.GeminiKey = s }},
}

// overrideFromDotEnv fills secrets from a .env file. Missing or unreadable
// files are ignored.
func overrideFromDotEnv(cfg *Config, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return
	}
	for _, s := range secretEnv {
		if val := v.GetString(s.name); val != "" {
			s.set(cfg, val)
		}
	}
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// Process environment wins over both the config file and .env.
func overrideFromEnv(cfg *Config) {
	for _, s := range secretEnv {
		if val := os.Getenv(s.name); val != "" {
			s.set(cfg, val)
		}
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
