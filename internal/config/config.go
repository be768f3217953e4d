package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultListen          = ":8090"
	defaultHealthPath      = "/healthz"
	defaultReadyPath       = "/readyz"
	defaultCommandTimeout  = 10
	defaultToastCapacity   = 4
	defaultSimpleDuration  = 3000
	defaultActionDuration  = 5000
	defaultExitDelay       = 400
	defaultNATSURL         = "nats://127.0.0.1:4222"
	defaultNATSSubject     = "noti.user"
	defaultLogLevel        = "info"
	defaultLogFormat       = "line"

	// PushTransportSSE consumes the platform event-stream endpoint.
	PushTransportSSE = "sse"
	// PushTransportWebSocket consumes a WebSocket push endpoint.
	PushTransportWebSocket = "websocket"
	// PushTransportNATS consumes the internal notification bus.
	PushTransportNATS = "nats"
)

// Config holds daemon runtime settings.
// Params: TOML sections decoded from the config file.
// Returns: validated runtime configuration.
type Config struct {
	Service ServiceConfig `toml:"service"`
	Log     LogConfig     `toml:"log"`
	Session SessionConfig `toml:"session"`
	Push    PushConfig    `toml:"push"`
	Command CommandConfig `toml:"command"`
	Toast   ToastConfig   `toml:"toast"`
	Mirror  MirrorConfig  `toml:"mirror"`
}

// ServiceConfig controls the local HTTP surface.
// Params: listen address and probe paths.
// Returns: service section values.
type ServiceConfig struct {
	Listen     string `toml:"listen"`
	HealthPath string `toml:"health_path"`
	ReadyPath  string `toml:"ready_path"`
}

// LogConfig selects log sinks.
// Params: console and file sink settings.
// Returns: log section values.
type LogConfig struct {
	Console LogSinkConfig `toml:"console"`
	File    LogSinkConfig `toml:"file"`
}

// LogSinkConfig describes one log sink.
// Params: enabled flag, level, format, and file path for the file sink.
// Returns: sink settings.
type LogSinkConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	Path    string `toml:"path"`
}

// SessionConfig carries the authenticated session identity.
// Params: bearer token and principal type.
// Returns: session section values; both blank means "run unauthenticated"
// and the push connection is simply never attempted.
type SessionConfig struct {
	Token         string `toml:"token"`
	PrincipalType string `toml:"principal_type"`
}

// PushConfig selects and configures the push transport.
// Params: transport kind plus endpoint settings per kind.
// Returns: push section values.
type PushConfig struct {
	Transport string   `toml:"transport"`
	URL       string   `toml:"url"`
	NATSURL   []string `toml:"nats_url"`
	Subject   string   `toml:"subject"`
}

// CommandConfig configures the platform command API client.
// Params: base URL and request timeout.
// Returns: command section values.
type CommandConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// ToastConfig tunes queue capacity and lifecycle durations.
// Defaults mirror the observed behavior (4 toasts, 3000/5000 ms).
// Params: capacity and millisecond durations.
// Returns: toast section values.
type ToastConfig struct {
	Capacity         int `toml:"capacity"`
	SimpleDurationMS int `toml:"simple_duration_ms"`
	ActionDurationMS int `toml:"action_duration_ms"`
	ExitDelayMS      int `toml:"exit_delay_ms"`
}

// MirrorConfig configures the optional Telegram mirror.
// Params: enabled flag, bot token, and chat id.
// Returns: mirror section values.
type MirrorConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// FromCLI validates the config file flag.
// Params: --config-file flag value.
// Returns: path or usage error.
func FromCLI(configFile string) (string, error) {
	trimmed := strings.TrimSpace(configFile)
	if trimmed == "" {
		return "", errors.New("--config-file is required")
	}
	info, err := os.Stat(trimmed)
	if err != nil {
		return "", fmt.Errorf("config file %q: %w", trimmed, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("config file %q is a directory", trimmed)
	}
	return trimmed, nil
}

// Load reads, decodes, defaults, and validates one config file.
// Params: TOML file path.
// Returns: validated config or load error.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills absent settings with defaults.
// Params: decoded config pointer.
// Returns: config mutated in place.
func applyDefaults(cfg *Config) {
	if cfg.Service.Listen == "" {
		cfg.Service.Listen = defaultListen
	}
	if cfg.Service.HealthPath == "" {
		cfg.Service.HealthPath = defaultHealthPath
	}
	if cfg.Service.ReadyPath == "" {
		cfg.Service.ReadyPath = defaultReadyPath
	}

	if !cfg.Log.Console.Enabled && !cfg.Log.File.Enabled {
		cfg.Log.Console.Enabled = true
	}
	applySinkDefaults(&cfg.Log.Console)
	applySinkDefaults(&cfg.Log.File)

	if cfg.Push.Transport == "" {
		cfg.Push.Transport = PushTransportSSE
	}
	cfg.Push.Transport = strings.ToLower(strings.TrimSpace(cfg.Push.Transport))
	if len(cfg.Push.NATSURL) == 0 {
		cfg.Push.NATSURL = []string{defaultNATSURL}
	}
	if cfg.Push.Subject == "" {
		cfg.Push.Subject = defaultNATSSubject
	}

	if cfg.Command.TimeoutSec <= 0 {
		cfg.Command.TimeoutSec = defaultCommandTimeout
	}

	if cfg.Toast.Capacity <= 0 {
		cfg.Toast.Capacity = defaultToastCapacity
	}
	if cfg.Toast.SimpleDurationMS <= 0 {
		cfg.Toast.SimpleDurationMS = defaultSimpleDuration
	}
	if cfg.Toast.ActionDurationMS <= 0 {
		cfg.Toast.ActionDurationMS = defaultActionDuration
	}
	if cfg.Toast.ExitDelayMS <= 0 {
		cfg.Toast.ExitDelayMS = defaultExitDelay
	}
}

// applySinkDefaults fills one sink's level and format.
// Params: sink config pointer.
// Returns: sink mutated in place.
func applySinkDefaults(sink *LogSinkConfig) {
	if sink.Level == "" {
		sink.Level = defaultLogLevel
	}
	if sink.Format == "" {
		sink.Format = defaultLogFormat
	}
}

// Validate checks cross-field constraints after defaults.
// Params: none.
// Returns: first validation error.
func (c Config) Validate() error {
	switch c.Push.Transport {
	case PushTransportSSE, PushTransportWebSocket:
		if strings.TrimSpace(c.Push.URL) == "" {
			return fmt.Errorf("push.url is required for transport %q", c.Push.Transport)
		}
	case PushTransportNATS:
		if len(c.Push.NATSURL) == 0 {
			return errors.New("push.nats_url is required for transport \"nats\"")
		}
	default:
		return fmt.Errorf("unsupported push.transport %q", c.Push.Transport)
	}

	if strings.TrimSpace(c.Command.BaseURL) == "" {
		return errors.New("command.base_url is required")
	}

	if c.Log.File.Enabled && strings.TrimSpace(c.Log.File.Path) == "" {
		return errors.New("log.file.path is required when file sink is enabled")
	}

	if c.Mirror.Enabled {
		if strings.TrimSpace(c.Mirror.BotToken) == "" {
			return errors.New("mirror.bot_token is required when mirror is enabled")
		}
		if strings.TrimSpace(c.Mirror.ChatID) == "" {
			return errors.New("mirror.chat_id is required when mirror is enabled")
		}
	}

	return nil
}
