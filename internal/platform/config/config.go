package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Invites   InvitesConfig   `mapstructure:"invites"`
	Hooks     HooksConfig     `mapstructure:"hooks"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type RateLimitConfig struct {
	APIReadPerMinute  int `mapstructure:"api_read_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// BootstrapConfig designates the single super-admin principal seeded by the
// bootstrap procedure. Token is fixed so repeated runs upsert the same row.
type BootstrapConfig struct {
	SuperAdminEmail string `mapstructure:"super_admin_email"`
	Token           string `mapstructure:"token"`
	PublicOrgName   string `mapstructure:"public_org_name"`
}

type InvitesConfig struct {
	TTLDays int `mapstructure:"ttl_days"`
}

// HooksConfig secures the identity provider's signup callback.
type HooksConfig struct {
	SignupSecret string `mapstructure:"signup_secret"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Invites.TTLDays == 0 {
		config.Invites.TTLDays = 7
	}
	if config.Bootstrap.PublicOrgName == "" {
		config.Bootstrap.PublicOrgName = "Public"
	}

	return &config, nil
}
