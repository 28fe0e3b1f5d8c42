// File: internal/config/config.go
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Agent    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	Trace    TraceConfig    `mapstructure:"trace" yaml:"trace"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the database connection details.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"-"`
}

// Supported browser automation engines.
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// BrowserConfig holds settings for the browser that the page driver controls.
type BrowserConfig struct {
	Engine         string   `mapstructure:"engine" yaml:"engine"`
	Headless       bool     `mapstructure:"headless" yaml:"headless"`
	Args           []string `mapstructure:"args" yaml:"args"`
	ExecPath       string   `mapstructure:"exec_path" yaml:"exec_path"`
	DebuggerURL    string   `mapstructure:"debugger_url" yaml:"debugger_url"`
	ViewportWidth  int      `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int      `mapstructure:"viewport_height" yaml:"viewport_height"`
	// LinkLimit caps how many visible links a single observation records.
	LinkLimit int `mapstructure:"link_limit" yaml:"link_limit"`
}

// NetworkConfig tunes timing of page interactions.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	// PostActionWait is the settle time after a click or form submission.
	PostActionWait time.Duration `mapstructure:"post_action_wait" yaml:"post_action_wait"`
}

// AgentConfig holds settings for the exploration loop and its decision heuristics.
type AgentConfig struct {
	MaxActions     int               `mapstructure:"max_actions" yaml:"max_actions"`
	RecentHistory  int               `mapstructure:"recent_history" yaml:"recent_history"`
	SummaryLimit   int               `mapstructure:"summary_limit" yaml:"summary_limit"`
	VersionPattern string            `mapstructure:"version_pattern" yaml:"version_pattern"`
	InfoKeywords   []string          `mapstructure:"info_keywords" yaml:"info_keywords"`
	FlagNoChange   bool              `mapstructure:"flag_no_change" yaml:"flag_no_change"`
	Credentials    CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	LLM            LLMRouterConfig   `mapstructure:"llm" yaml:"llm"`
}

// CredentialsConfig is used for try_correct_login attempts.
type CredentialsConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"-"`
}

// LLMProvider defines the supported LLM providers.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	// ProviderOpenAI covers any OpenAI compatible chat completions API (Groq, OpenAI, local gateways).
	ProviderOpenAI LLMProvider = "openai"
)

// LLMRouterConfig configures the model routing logic.
type LLMRouterConfig struct {
	Enabled              bool   `mapstructure:"enabled" yaml:"enabled"`
	DefaultFastModel     string `mapstructure:"default_fast_model" yaml:"default_fast_model"`
	DefaultPowerfulModel string `mapstructure:"default_powerful_model" yaml:"default_powerful_model"`
	// APIKey is shared by every model that does not set its own key.
	APIKey            string                    `mapstructure:"api_key" yaml:"-"`
	RequestsPerMinute int                       `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Models            map[string]LLMModelConfig `mapstructure:"models" yaml:"models"`
}

// LLMModelConfig defines the configuration for a single LLM.
type LLMModelConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// Supported trace sinks.
const (
	SinkFile     = "file"
	SinkPostgres = "postgres"
)

// TraceConfig controls where the run trace is persisted.
type TraceConfig struct {
	Sink string `mapstructure:"sink" yaml:"sink"`
	Path string `mapstructure:"path" yaml:"path"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scout-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Browser --
	v.SetDefault("browser.engine", EngineChromedp)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.viewport_width", 1366)
	v.SetDefault("browser.viewport_height", 900)
	v.SetDefault("browser.link_limit", 20)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "45s")
	v.SetDefault("network.action_timeout", "15s")
	v.SetDefault("network.post_action_wait", "1500ms")

	// -- Agent --
	v.SetDefault("agent.max_actions", 6)
	v.SetDefault("agent.recent_history", 3)
	v.SetDefault("agent.summary_limit", 5)
	v.SetDefault("agent.version_pattern", `(?i)\bpython\s+3\.\d+`)
	v.SetDefault("agent.info_keywords", []string{"download", "modules", "index", "tutorial", "library"})
	v.SetDefault("agent.flag_no_change", true)

	// -- Agent LLM --
	v.SetDefault("agent.llm.enabled", true)
	v.SetDefault("agent.llm.default_fast_model", "groq")
	v.SetDefault("agent.llm.default_powerful_model", "groq")
	v.SetDefault("agent.llm.requests_per_minute", 30)
	v.SetDefault("agent.llm.models", map[string]interface{}{
		"groq": map[string]interface{}{
			"provider":    string(ProviderOpenAI),
			"model":       "llama-3.3-70b-versatile",
			"endpoint":    "https://api.groq.com/openai/v1",
			"api_timeout": "30s",
			"temperature": 0.7,
			"max_tokens":  500,
		},
		"gemini": map[string]interface{}{
			"provider":    string(ProviderGemini),
			"model":       "gemini-2.5-flash",
			"api_timeout": "30s",
			"temperature": 0.7,
			"max_tokens":  500,
		},
	})

	// -- Trace --
	v.SetDefault("trace.sink", SinkFile)
	v.SetDefault("trace.path", "logs/run_log.json")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Secrets are only ever read from the environment.
	_ = v.BindEnv("agent.llm.api_key", "SCOUT_LLM_API_KEY", "GROQ_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("agent.credentials.password", "SCOUT_LOGIN_PASSWORD")
	_ = v.BindEnv("database.url", "SCOUT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.Browser.Engine {
	case EngineChromedp, EngineRod:
	default:
		return fmt.Errorf("browser.engine must be one of [%s, %s], got '%s'", EngineChromedp, EngineRod, c.Browser.Engine)
	}
	if c.Browser.LinkLimit <= 0 {
		return fmt.Errorf("browser.link_limit must be a positive integer")
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent configuration invalid: %w", err)
	}
	switch c.Trace.Sink {
	case SinkFile:
		if c.Trace.Path == "" {
			return fmt.Errorf("trace.path is required for the file sink")
		}
	case SinkPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres trace sink (SCOUT_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("trace.sink must be one of [%s, %s], got '%s'", SinkFile, SinkPostgres, c.Trace.Sink)
	}
	return nil
}

// Validate checks the AgentConfig settings.
func (a *AgentConfig) Validate() error {
	if a.MaxActions <= 0 {
		return fmt.Errorf("max_actions must be greater than 0")
	}
	if a.RecentHistory < 0 {
		return fmt.Errorf("recent_history must not be negative")
	}
	if a.SummaryLimit <= 0 {
		return fmt.Errorf("summary_limit must be greater than 0")
	}
	if _, err := regexp.Compile(a.VersionPattern); err != nil {
		return fmt.Errorf("version_pattern is not a valid regular expression: %w", err)
	}
	return a.LLM.Validate()
}

// Validate checks that the default models resolve when the LLM proposer is enabled.
func (r *LLMRouterConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	for _, name := range []string{r.DefaultFastModel, r.DefaultPowerfulModel} {
		m, ok := r.Models[name]
		if !ok {
			return fmt.Errorf("llm model '%s' is referenced as a default but not defined in agent.llm.models", name)
		}
		if m.Provider != ProviderGemini && m.Provider != ProviderOpenAI {
			return fmt.Errorf("llm model '%s' has unsupported provider '%s'", name, m.Provider)
		}
	}
	if r.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative")
	}
	return nil
}
