// Package config loads the dashboard configuration from an optional yaml file
// and from environment variables.
package config

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds everything the service needs at startup. Environment variables
// override file values, with dots replaced by underscores (e.g. MAIL_DOMAIN).
type Config struct {
	Port     int    `mapstructure:"port"`
	SiteName string `mapstructure:"siteName"`
	BaseURL  string `mapstructure:"baseURL"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	Mail struct {
		Domain string `mapstructure:"domain"`
		APIKey string `mapstructure:"apiKey"`
		Sender string `mapstructure:"sender"`
	} `mapstructure:"mail"`

	Auth struct {
		TokenTTLMinutes   int    `mapstructure:"tokenTTLMinutes"`
		SessionTTLMinutes int    `mapstructure:"sessionTTLMinutes"`
		SecretKey         string `mapstructure:"secretKey"`
		KeyPairPath       string `mapstructure:"keyPairPath"`
	} `mapstructure:"auth"`
}

// TokenTTL is the lifetime of activation and reset links.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// SessionTTL is the lifetime of a login session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLMinutes) * time.Minute
}

// Load reads the configuration from the given file path. A missing file is
// not an error; defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("port", 8080)
	v.SetDefault("siteName", "ODK Dashboard")
	v.SetDefault("baseURL", "http://localhost:8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "odk_dashboard")
	v.SetDefault("mail.domain", "")
	v.SetDefault("mail.apiKey", "")
	v.SetDefault("mail.sender", "ODK Dashboard <noreply@odk-dashboard.org>")
	v.SetDefault("auth.secretKey", "")
	v.SetDefault("auth.tokenTTLMinutes", 120)
	v.SetDefault("auth.sessionTTLMinutes", 1440)
	v.SetDefault("auth.keyPairPath", "configs/keypair.bin")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warnf("Could not read config file %s: %v, falling back to environment", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
