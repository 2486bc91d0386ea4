// ABOUTME: Configuration loading and parsing for chatfleet
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/2389/chatfleet/internal/message"
)

// Registry drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Defaults applied to optional settings.
const (
	DefaultRegistryPath  = "data/slaves.db"
	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisKey      = "chatfleet:slaves"
	DefaultRetryDelay    = 5 * time.Second
	DefaultSendRate      = 4.0
	DefaultSendBurst     = 4
	DefaultDialTimeout   = 10 * time.Second
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// Config represents the complete chatfleet configuration
type Config struct {
	Server    ServerConfig   `yaml:"server" toml:"server"`
	Master    MasterConfig   `yaml:"master" toml:"master"`
	Auth      AuthConfig     `yaml:"auth" toml:"auth"`
	AllowList []string       `yaml:"allow_list" toml:"allow_list"`
	Registry  RegistryConfig `yaml:"registry" toml:"registry"`
	Agents    AgentsConfig   `yaml:"agents" toml:"agents"`
	Logging   LoggingConfig  `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the game server address
type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

// Addr returns host:port for dialing.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// MasterConfig identifies the master bot
type MasterConfig struct {
	Identity   string `yaml:"identity" toml:"identity"`
	Credential string `yaml:"credential" toml:"credential"`
}

// AuthConfig holds the secret slave credentials are derived from
type AuthConfig struct {
	SharedSecret string `yaml:"shared_secret" toml:"shared_secret"`
}

// RegistryConfig selects where slave identities are persisted
type RegistryConfig struct {
	Driver    string `yaml:"driver" toml:"driver"`
	Path      string `yaml:"path" toml:"path"`
	RedisAddr string `yaml:"redis_addr" toml:"redis_addr"`
	RedisKey  string `yaml:"redis_key" toml:"redis_key"`
}

// AgentsConfig holds reconnect and send pacing configuration
type AgentsConfig struct {
	RetryDelay    time.Duration `yaml:"-" toml:"-"`
	RetryMaxDelay time.Duration `yaml:"-" toml:"-"`
	DialTimeout   time.Duration `yaml:"-" toml:"-"`

	SendRate  float64 `yaml:"send_rate" toml:"send_rate"`
	SendBurst int     `yaml:"send_burst" toml:"send_burst"`

	// Raw string values for unmarshaling
	RetryDelayRaw    string `yaml:"retry_delay" toml:"retry_delay"`
	RetryMaxDelayRaw string `yaml:"retry_max_delay" toml:"retry_max_delay"`
	DialTimeoutRaw   string `yaml:"dial_timeout" toml:"dial_timeout"`

	// sendRateSet distinguishes an explicit 0 (unlimited) from an absent value
	sendRateSet bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(expandEnvVars(string(data)), formatFor(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes already-expanded configuration text in the given format
// ("yaml" or "toml"), applies defaults and validates the result.
func Parse(content, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "toml":
		md, err := toml.Decode(content, &cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.Agents.sendRateSet = md.IsDefined("agents", "send_rate")
	default:
		if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.Agents.sendRateSet = yamlDefines(content, "agents", "send_rate")
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// yamlDefines reports whether section.key is present in the YAML document.
func yamlDefines(content, section, key string) bool {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(content), &raw); err != nil {
		return false
	}
	fields, ok := raw[section].(map[string]any)
	if !ok {
		return false
	}
	_, ok = fields[key]
	return ok
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Registry.Driver == "" {
		c.Registry.Driver = DriverSQLite
	}
	if c.Registry.Path == "" {
		c.Registry.Path = DefaultRegistryPath
	}
	if c.Registry.RedisAddr == "" {
		c.Registry.RedisAddr = DefaultRedisAddr
	}
	if c.Registry.RedisKey == "" {
		c.Registry.RedisKey = DefaultRedisKey
	}

	if c.Agents.RetryDelay == 0 {
		c.Agents.RetryDelay = DefaultRetryDelay
	}
	if c.Agents.RetryMaxDelay == 0 {
		c.Agents.RetryMaxDelay = c.Agents.RetryDelay
	}
	if c.Agents.DialTimeout == 0 {
		c.Agents.DialTimeout = DefaultDialTimeout
	}
	if !c.Agents.sendRateSet {
		c.Agents.SendRate = DefaultSendRate
	}
	if c.Agents.SendBurst == 0 {
		c.Agents.SendBurst = DefaultSendBurst
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLoggingLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLoggingFormat
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Master.Identity == "" {
		return errors.New("master.identity is required")
	}
	if !message.ValidName(c.Master.Identity) {
		return fmt.Errorf("master.identity %q must be 2-16 letters, digits or underscores", c.Master.Identity)
	}
	if c.Master.Credential == "" {
		return errors.New("master.credential is required")
	}

	if c.Auth.SharedSecret == "" {
		return errors.New("auth.shared_secret is required")
	}

	if len(c.AllowList) == 0 {
		return errors.New("allow_list must name at least one player")
	}
	for _, name := range c.AllowList {
		if strings.TrimSpace(name) == "" {
			return errors.New("allow_list contains an empty name")
		}
	}

	switch c.Registry.Driver {
	case DriverSQLite:
		if c.Registry.Path == "" {
			return errors.New("registry.path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Registry.RedisAddr == "" {
			return errors.New("registry.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("registry.driver must be %q or %q, got %q", DriverSQLite, DriverRedis, c.Registry.Driver)
	}

	if c.Agents.RetryDelay < 0 {
		return errors.New("agents.retry_delay must not be negative")
	}
	if c.Agents.RetryMaxDelay < c.Agents.RetryDelay {
		return fmt.Errorf("agents.retry_max_delay (%s) must not be less than agents.retry_delay (%s)",
			c.Agents.RetryMaxDelay, c.Agents.RetryDelay)
	}
	if c.Agents.SendRate < 0 {
		return errors.New("agents.send_rate must not be negative")
	}
	if c.Agents.SendBurst < 0 {
		return errors.New("agents.send_burst must not be negative")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Agents.RetryDelayRaw != "" {
		cfg.Agents.RetryDelay, err = time.ParseDuration(cfg.Agents.RetryDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing retry_delay %q: %w", cfg.Agents.RetryDelayRaw, err)
		}
	}

	if cfg.Agents.RetryMaxDelayRaw != "" {
		cfg.Agents.RetryMaxDelay, err = time.ParseDuration(cfg.Agents.RetryMaxDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing retry_max_delay %q: %w", cfg.Agents.RetryMaxDelayRaw, err)
		}
	}

	if cfg.Agents.DialTimeoutRaw != "" {
		cfg.Agents.DialTimeout, err = time.ParseDuration(cfg.Agents.DialTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing dial_timeout %q: %w", cfg.Agents.DialTimeoutRaw, err)
		}
	}

	return nil
}
