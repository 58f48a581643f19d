package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "MEDREMIND"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Pushover  PushoverConfig  `mapstructure:"pushover"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // json or sqlite
	FilePath    string `mapstructure:"file_path"`
	SettingsDir string `mapstructure:"settings_dir"`
}

type RemindersConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// PushoverConfig enables push delivery when both Token and User are set.
type PushoverConfig struct {
	Token  string `mapstructure:"token"`
	User   string `mapstructure:"user"`
	APIURL string `mapstructure:"api_url"`
}

func (p PushoverConfig) Enabled() bool {
	return p.Token != "" && p.User != ""
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel parses Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func newViper(path string) *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.file_path", "data/reminders.json")
	v.SetDefault("storage.settings_dir", "data/settings")
	v.SetDefault("reminders.refresh_interval", "60s")
	v.SetDefault("pushover.token", "")
	v.SetDefault("pushover.user", "")
	v.SetDefault("pushover.api_url", "https://api.pushover.net/1/messages.json")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

// LoadConfig reads defaults, then the YAML file at path if it exists, then
// MEDREMIND_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := newViper(path)
	if err := readFile(v, path); err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch calls fn with the reloaded config each time the file at path
// changes. Reloads that fail validation are logged and skipped.
func Watch(path string, fn func(*Config)) error {
	if path == "" {
		return errors.New("config watch requires a file path")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}

	v := newViper(path)
	if err := readFile(v, path); err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			slog.Error("Ignoring invalid config reload", "file", e.Name, "error", err)
			return
		}
		slog.Info("Config reloaded", "file", e.Name, "op", e.Op.String())
		fn(cfg)
	})
	v.WatchConfig()
	return nil
}

func readFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid storage.driver %q: must be json or sqlite", c.Storage.Driver)
	}
	if c.Storage.FilePath == "" {
		return errors.New("storage.file_path is required")
	}
	if c.Reminders.RefreshInterval <= 0 {
		return fmt.Errorf("reminders.refresh_interval must be positive, got %s", c.Reminders.RefreshInterval)
	}
	return nil
}
