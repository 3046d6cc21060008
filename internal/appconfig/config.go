package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/chatrelay/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	SettingsFile  string        `mapstructure:"settings_file" yaml:"settings_file"`
	Engine        EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Relay         RelayConfig   `mapstructure:"relay" yaml:"relay"`
	Surface       SurfaceConfig `mapstructure:"surface" yaml:"surface"`
	Console       ConsoleConfig `mapstructure:"console" yaml:"console"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// EngineConfig controls relay engine behavior. Durations are milliseconds.
type EngineConfig struct {
	BotName        string   `mapstructure:"bot_name" yaml:"bot_name"`
	HostPackage    string   `mapstructure:"host_package" yaml:"host_package"`
	WindowClasses  []string `mapstructure:"window_classes" yaml:"window_classes"`
	DeadZoneMs     int      `mapstructure:"dead_zone_ms" yaml:"dead_zone_ms"`
	ThrottleMs     int      `mapstructure:"throttle_ms" yaml:"throttle_ms"`
	PollIntervalMs int      `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	PollAttempts   int      `mapstructure:"poll_attempts" yaml:"poll_attempts"`
	AskedMax       int      `mapstructure:"asked_max" yaml:"asked_max"`
}

// RelayConfig configures the backend HTTP client.
type RelayConfig struct {
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds" yaml:"connect_timeout_seconds"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// SurfaceConfig configures the UI automation surface.
type SurfaceConfig struct {
	AttachURL   string    `mapstructure:"attach_url" yaml:"attach_url"`
	PageURL     string    `mapstructure:"page_url" yaml:"page_url"`
	Headless    bool      `mapstructure:"headless" yaml:"headless"`
	SettleMs    int       `mapstructure:"settle_ms" yaml:"settle_ms"`
	SendLabel   string    `mapstructure:"send_label" yaml:"send_label"`
	HostVersion string    `mapstructure:"host_version" yaml:"host_version"`
	IDs         IDsConfig `mapstructure:"ids" yaml:"ids"`
}

// IDsConfig overrides individual view identifiers. Empty fields keep the
// identifiers resolved from the host version table.
type IDsConfig struct {
	GroupName    string `mapstructure:"group_name" yaml:"group_name"`
	SenderName   string `mapstructure:"sender_name" yaml:"sender_name"`
	MessageBody  string `mapstructure:"message_body" yaml:"message_body"`
	ComposeField string `mapstructure:"compose_field" yaml:"compose_field"`
	SenderRow    string `mapstructure:"sender_row" yaml:"sender_row"`
	Avatar       string `mapstructure:"avatar" yaml:"avatar"`
}

// ConsoleConfig configures the SSH transcript console.
type ConsoleConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		SettingsFile:  filepath.Join(home, ".chatrelay", "settings.json"),
		Engine: EngineConfig{
			BotName:        "",
			HostPackage:    "com.tencent.mm",
			WindowClasses:  []string{"com.tencent.mm.ui.LauncherUI", "com.tencent.mm.ui.chatting.ChattingUI"},
			DeadZoneMs:     int(schema.DefaultDeadZone / time.Millisecond),
			ThrottleMs:     int(schema.DefaultThrottleWindow / time.Millisecond),
			PollIntervalMs: int(schema.DefaultPollInterval / time.Millisecond),
			PollAttempts:   schema.DefaultPollAttempts,
			AskedMax:       schema.DefaultAskedMax,
		},
		Relay: RelayConfig{
			ConnectTimeoutSeconds: 20,
			RequestTimeoutSeconds: 180,
		},
		Surface: SurfaceConfig{
			AttachURL:   "",
			PageURL:     "",
			Headless:    true,
			SettleMs:    2000,
			SendLabel:   "发送",
			HostVersion: "8.0.47",
		},
		Console: ConsoleConfig{
			Enabled:     false,
			Addr:        ":27922",
			HostKeyPath: filepath.Join(home, ".chatrelay", "ssh_host_key"),
		},
	}, nil
}

// EngineSettings converts the engine section to the engine's config type.
func (c Config) EngineSettings() schema.EngineConfig {
	return schema.EngineConfig{
		BotName:        c.Engine.BotName,
		HostPackage:    c.Engine.HostPackage,
		WindowClasses:  c.Engine.WindowClasses,
		DeadZone:       time.Duration(c.Engine.DeadZoneMs) * time.Millisecond,
		ThrottleWindow: time.Duration(c.Engine.ThrottleMs) * time.Millisecond,
		PollInterval:   time.Duration(c.Engine.PollIntervalMs) * time.Millisecond,
		PollAttempts:   c.Engine.PollAttempts,
		AskedMax:       c.Engine.AskedMax,
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatrelay", "config.yaml"), nil
}
