package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SAFECASE_FACILITY_ID.
const EnvPrefix = "SAFECASE"

// DefaultListenAddr is where `safecase serve` listens when nothing is configured.
const DefaultListenAddr = ":8080"

// Config holds the settings shared by the CLI and the HTTP server.
type Config struct {
	DBPath     string `mapstructure:"db_path"`
	FacilityID string `mapstructure:"facility_id"`
	ActorID    string `mapstructure:"actor_id"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// DefaultPath returns ~/.safecase/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".safecase", "config.yaml"), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv applies to Unmarshal.
	v.SetDefault("db_path", "")
	v.SetDefault("facility_id", "")
	v.SetDefault("actor_id", "")
	v.SetDefault("listen_addr", DefaultListenAddr)
	return v
}

// Load reads the config file at path, falling back to DefaultPath when path
// is empty. A missing file is not an error; environment variables still apply.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("db_path", cfg.DBPath)
	v.Set("facility_id", cfg.FacilityID)
	v.Set("actor_id", cfg.ActorID)
	v.Set("listen_addr", cfg.ListenAddr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
