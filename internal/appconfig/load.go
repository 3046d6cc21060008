package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("settings_file", cfg.SettingsFile)
	v.SetDefault("engine.bot_name", cfg.Engine.BotName)
	v.SetDefault("engine.host_package", cfg.Engine.HostPackage)
	v.SetDefault("engine.window_classes", cfg.Engine.WindowClasses)
	v.SetDefault("engine.dead_zone_ms", cfg.Engine.DeadZoneMs)
	v.SetDefault("engine.throttle_ms", cfg.Engine.ThrottleMs)
	v.SetDefault("engine.poll_interval_ms", cfg.Engine.PollIntervalMs)
	v.SetDefault("engine.poll_attempts", cfg.Engine.PollAttempts)
	v.SetDefault("engine.asked_max", cfg.Engine.AskedMax)
	v.SetDefault("relay.connect_timeout_seconds", cfg.Relay.ConnectTimeoutSeconds)
	v.SetDefault("relay.request_timeout_seconds", cfg.Relay.RequestTimeoutSeconds)
	v.SetDefault("surface.attach_url", cfg.Surface.AttachURL)
	v.SetDefault("surface.page_url", cfg.Surface.PageURL)
	v.SetDefault("surface.headless", cfg.Surface.Headless)
	v.SetDefault("surface.settle_ms", cfg.Surface.SettleMs)
	v.SetDefault("surface.send_label", cfg.Surface.SendLabel)
	v.SetDefault("surface.host_version", cfg.Surface.HostVersion)
	v.SetDefault("surface.ids.group_name", cfg.Surface.IDs.GroupName)
	v.SetDefault("surface.ids.sender_name", cfg.Surface.IDs.SenderName)
	v.SetDefault("surface.ids.message_body", cfg.Surface.IDs.MessageBody)
	v.SetDefault("surface.ids.compose_field", cfg.Surface.IDs.ComposeField)
	v.SetDefault("surface.ids.sender_row", cfg.Surface.IDs.SenderRow)
	v.SetDefault("surface.ids.avatar", cfg.Surface.IDs.Avatar)
	v.SetDefault("console.enabled", cfg.Console.Enabled)
	v.SetDefault("console.addr", cfg.Console.Addr)
	v.SetDefault("console.host_key_path", cfg.Console.HostKeyPath)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return Config{}, err
			}
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	return cfg, nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.SettingsFile = expandEnv(cfg.SettingsFile)
	cfg.Surface.AttachURL = expandEnv(cfg.Surface.AttachURL)
	cfg.Surface.PageURL = expandEnv(cfg.Surface.PageURL)
	cfg.Console.HostKeyPath = expandEnv(cfg.Console.HostKeyPath)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
