// Package config reads the focussync configuration once at startup.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

// Config is the resolved configuration. It is a value; nothing mutates it
// after Load returns.
type Config struct {
	Path                    string `mapstructure:"path"`
	AppServerURL            string `mapstructure:"app_server_url"`
	Environment             string `mapstructure:"environment"`
	DestinationWalletID     string `mapstructure:"destination_wallet_id"`
	GoogleClientID          string `mapstructure:"google_client_id"`
	GoogleClientSecret      string `mapstructure:"google_client_secret"`
	GoogleRedirectURL       string `mapstructure:"google_redirect_url"`
	PaymentAmount           string `mapstructure:"payment_amount"`
	ImportSkipsVerification bool   `mapstructure:"import_skips_verification"`
	FailOpen                bool   `mapstructure:"fail_open"`
	LogLevel                string `mapstructure:"log_level"`
}

// BasePath is the diskv directory for the session store.
func (c Config) BasePath() string {
	return c.Path
}

// IsProduction reports whether the wallet runs against production.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.focussync.db")
	v.SetDefault("app_server_url", "http://localhost:8000")
	v.SetDefault("environment", EnvSandbox)
	v.SetDefault("destination_wallet_id", "your-actual-circle-wallet-id")
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("google_redirect_url", "http://localhost:5173/auth/google/callback")
	v.SetDefault("payment_amount", "0.23")
	v.SetDefault("import_skips_verification", true)
	v.SetDefault("fail_open", true)
	v.SetDefault("log_level", "warn")
}

// Load resolves configuration from defaults, a .focussync.yaml file and
// FOCUSSYNC_* environment variables, in increasing precedence.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".focussync") // .yaml is implicit
	v.SetEnvPrefix("FOCUSSYNC")
	v.AutomaticEnv()

	if override := os.Getenv("FOCUSSYNC_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Path:                    v.GetString("path"),
		AppServerURL:            strings.TrimRight(v.GetString("app_server_url"), "/"),
		Environment:             strings.ToLower(strings.TrimSpace(v.GetString("environment"))),
		DestinationWalletID:     v.GetString("destination_wallet_id"),
		GoogleClientID:          v.GetString("google_client_id"),
		GoogleClientSecret:      v.GetString("google_client_secret"),
		GoogleRedirectURL:       v.GetString("google_redirect_url"),
		PaymentAmount:           v.GetString("payment_amount"),
		ImportSkipsVerification: v.GetBool("import_skips_verification"),
		FailOpen:                v.GetBool("fail_open"),
		LogLevel:                v.GetString("log_level"),
	}

	path, err := homedir.Expand(cfg.Path)
	if err != nil {
		return Config{}, fmt.Errorf("config: expand path %q: %w", cfg.Path, err)
	}
	cfg.Path = path

	switch cfg.Environment {
	case EnvSandbox, EnvProduction:
	default:
		return Config{}, fmt.Errorf("config: environment must be %q or %q, got %q", EnvSandbox, EnvProduction, cfg.Environment)
	}
	return cfg, nil
}
