// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
server:
  host: "play.example.net"
  port: 25565

master:
  identity: "MasterBot"
  credential: "hunter22"

auth:
  shared_secret: "s3cret"

allow_list:
  - "alice"
  - "trustedUser"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "fleet.yaml", validYAML+`
registry:
  driver: "redis"
  redis_addr: "redis:6379"
  redis_key: "bots"

agents:
  retry_delay: "2s"
  retry_max_delay: "1m"
  dial_timeout: "3s"
  send_rate: 10
  send_burst: 2

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr() != "play.example.net:25565" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "play.example.net:25565")
	}
	if cfg.Master.Identity != "MasterBot" {
		t.Errorf("Master.Identity = %q, want %q", cfg.Master.Identity, "MasterBot")
	}
	if cfg.Master.Credential != "hunter22" {
		t.Errorf("Master.Credential = %q, want %q", cfg.Master.Credential, "hunter22")
	}
	if cfg.Auth.SharedSecret != "s3cret" {
		t.Errorf("Auth.SharedSecret = %q, want %q", cfg.Auth.SharedSecret, "s3cret")
	}
	if len(cfg.AllowList) != 2 || cfg.AllowList[0] != "alice" || cfg.AllowList[1] != "trustedUser" {
		t.Errorf("AllowList = %v, want [alice trustedUser]", cfg.AllowList)
	}

	if cfg.Registry.Driver != DriverRedis {
		t.Errorf("Registry.Driver = %q, want %q", cfg.Registry.Driver, DriverRedis)
	}
	if cfg.Registry.RedisAddr != "redis:6379" {
		t.Errorf("Registry.RedisAddr = %q, want %q", cfg.Registry.RedisAddr, "redis:6379")
	}
	if cfg.Registry.RedisKey != "bots" {
		t.Errorf("Registry.RedisKey = %q, want %q", cfg.Registry.RedisKey, "bots")
	}

	if cfg.Agents.RetryDelay != 2*time.Second {
		t.Errorf("Agents.RetryDelay = %v, want %v", cfg.Agents.RetryDelay, 2*time.Second)
	}
	if cfg.Agents.RetryMaxDelay != time.Minute {
		t.Errorf("Agents.RetryMaxDelay = %v, want %v", cfg.Agents.RetryMaxDelay, time.Minute)
	}
	if cfg.Agents.DialTimeout != 3*time.Second {
		t.Errorf("Agents.DialTimeout = %v, want %v", cfg.Agents.DialTimeout, 3*time.Second)
	}
	if cfg.Agents.SendRate != 10 {
		t.Errorf("Agents.SendRate = %v, want 10", cfg.Agents.SendRate)
	}
	if cfg.Agents.SendBurst != 2 {
		t.Errorf("Agents.SendBurst = %d, want 2", cfg.Agents.SendBurst)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "fleet.yaml", validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Registry.Driver != DriverSQLite {
		t.Errorf("Registry.Driver = %q, want %q", cfg.Registry.Driver, DriverSQLite)
	}
	if cfg.Registry.Path != DefaultRegistryPath {
		t.Errorf("Registry.Path = %q, want %q", cfg.Registry.Path, DefaultRegistryPath)
	}
	if cfg.Registry.RedisKey != DefaultRedisKey {
		t.Errorf("Registry.RedisKey = %q, want %q", cfg.Registry.RedisKey, DefaultRedisKey)
	}
	if cfg.Agents.RetryDelay != DefaultRetryDelay {
		t.Errorf("Agents.RetryDelay = %v, want %v", cfg.Agents.RetryDelay, DefaultRetryDelay)
	}
	if cfg.Agents.RetryMaxDelay != DefaultRetryDelay {
		t.Errorf("Agents.RetryMaxDelay = %v, want flat delay %v", cfg.Agents.RetryMaxDelay, DefaultRetryDelay)
	}
	if cfg.Agents.DialTimeout != DefaultDialTimeout {
		t.Errorf("Agents.DialTimeout = %v, want %v", cfg.Agents.DialTimeout, DefaultDialTimeout)
	}
	if cfg.Agents.SendRate != DefaultSendRate {
		t.Errorf("Agents.SendRate = %v, want %v", cfg.Agents.SendRate, DefaultSendRate)
	}
	if cfg.Agents.SendBurst != DefaultSendBurst {
		t.Errorf("Agents.SendBurst = %d, want %d", cfg.Agents.SendBurst, DefaultSendBurst)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoad_ExplicitZeroSendRateMeansUnlimited(t *testing.T) {
	cfg, err := Load(writeConfig(t, "fleet.yaml", validYAML+`
agents:
  send_rate: 0
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agents.SendRate != 0 {
		t.Errorf("Agents.SendRate = %v, want 0", cfg.Agents.SendRate)
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "fleet.toml", `
allow_list = ["alice"]

[server]
host = "localhost"
port = 25565

[master]
identity = "MasterBot"
credential = "hunter22"

[auth]
shared_secret = "s3cret"

[registry]
path = "/var/lib/chatfleet/slaves.db"

[agents]
retry_delay = "1s"
retry_max_delay = "30s"
send_rate = 0
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr() != "localhost:25565" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "localhost:25565")
	}
	if cfg.Registry.Path != "/var/lib/chatfleet/slaves.db" {
		t.Errorf("Registry.Path = %q", cfg.Registry.Path)
	}
	if cfg.Agents.RetryDelay != time.Second || cfg.Agents.RetryMaxDelay != 30*time.Second {
		t.Errorf("retry delays = %v/%v, want 1s/30s", cfg.Agents.RetryDelay, cfg.Agents.RetryMaxDelay)
	}
	if cfg.Agents.SendRate != 0 {
		t.Errorf("Agents.SendRate = %v, want 0", cfg.Agents.SendRate)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_SHARED_SECRET", "from-env")
	t.Setenv("TEST_MASTER_PASSWORD", "env-pass")

	configPath := writeConfig(t, "fleet.yaml", `
server:
  host: "localhost"
  port: 25565
master:
  identity: "MasterBot"
  credential: "${TEST_MASTER_PASSWORD}"
auth:
  shared_secret: "${TEST_SHARED_SECRET}"
allow_list: ["alice"]
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.SharedSecret != "from-env" {
		t.Errorf("Auth.SharedSecret = %q, want %q", cfg.Auth.SharedSecret, "from-env")
	}
	if cfg.Master.Credential != "env-pass" {
		t.Errorf("Master.Credential = %q, want %q", cfg.Master.Credential, "env-pass")
	}
}

func TestLoad_UnsetEnvVarFailsValidation(t *testing.T) {
	os.Unsetenv("TEST_MISSING_SECRET")

	configPath := writeConfig(t, "fleet.yaml", `
server:
  host: "localhost"
  port: 25565
master:
  identity: "MasterBot"
  credential: "x"
auth:
  shared_secret: "${TEST_MISSING_SECRET}"
allow_list: ["alice"]
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for empty shared secret")
	}
	if !strings.Contains(err.Error(), "auth.shared_secret") {
		t.Errorf("error = %v, want mention of auth.shared_secret", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/fleet.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "fleet.yaml", "server: [unclosed"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "fleet.yaml", validYAML+`
agents:
  retry_delay: "soon"
`))
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "retry_delay") {
		t.Errorf("error = %v, want mention of retry_delay", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{Host: "localhost", Port: 25565},
			Master:    MasterConfig{Identity: "MasterBot", Credential: "pw"},
			Auth:      AuthConfig{SharedSecret: "s"},
			AllowList: []string{"alice"},
			Registry:  RegistryConfig{Driver: DriverSQLite, Path: "slaves.db"},
			Agents:    AgentsConfig{RetryDelay: time.Second, RetryMaxDelay: time.Second},
			Logging:   LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing host", func(c *Config) { c.Server.Host = "" }, "server.host"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"missing master", func(c *Config) { c.Master.Identity = "" }, "master.identity"},
		{"master name too short", func(c *Config) { c.Master.Identity = "M" }, "master.identity"},
		{"master name has spaces", func(c *Config) { c.Master.Identity = "Master Bot" }, "master.identity"},
		{"missing master credential", func(c *Config) { c.Master.Credential = "" }, "master.credential"},
		{"missing secret", func(c *Config) { c.Auth.SharedSecret = "" }, "auth.shared_secret"},
		{"empty allow list", func(c *Config) { c.AllowList = nil }, "allow_list"},
		{"blank allow list entry", func(c *Config) { c.AllowList = []string{"alice", " "} }, "allow_list"},
		{"unknown driver", func(c *Config) { c.Registry.Driver = "postgres" }, "registry.driver"},
		{"redis without addr", func(c *Config) {
			c.Registry.Driver = DriverRedis
			c.Registry.RedisAddr = ""
		}, "registry.redis_addr"},
		{"max delay below delay", func(c *Config) { c.Agents.RetryMaxDelay = time.Millisecond }, "retry_max_delay"},
		{"negative send rate", func(c *Config) { c.Agents.SendRate = -1 }, "send_rate"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CHATFLEET_TEST_VAR", "value")

	tests := []struct {
		input string
		want  string
	}{
		{"${CHATFLEET_TEST_VAR}", "value"},
		{"prefix-${CHATFLEET_TEST_VAR}-suffix", "prefix-value-suffix"},
		{"${CHATFLEET_TEST_UNSET_VAR}", ""},
		{"no vars here", "no vars here"},
		{"$CHATFLEET_TEST_VAR", "$CHATFLEET_TEST_VAR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestYAMLDefines_WithTopLevelSequence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"explicit zero", validYAML + "agents:\n  send_rate: 0\n", true},
		{"explicit value", validYAML + "agents:\n  send_rate: 10\n", true},
		{"section without key", validYAML + "agents:\n  send_burst: 2\n", false},
		{"no section", validYAML, false},
		{"scalar section", validYAML + "agents: none\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yamlDefines(tt.content, "agents", "send_rate"); got != tt.want {
				t.Errorf("yamlDefines() = %v, want %v", got, tt.want)
			}
		})
	}
}
