package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Session SessionConfig `mapstructure:"session"`
	Relay   RelayConfig   `mapstructure:"relay"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
	// PublicURL is the externally reachable base URL embedded in the
	// scannable token payload.
	PublicURL string `mapstructure:"public_url"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MaxSessions   int           `mapstructure:"max_sessions"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RelayConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	QueueDepth        int           `mapstructure:"queue_depth"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaultValues()

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Server.PublicURL == "" {
		globalConfig.Server.PublicURL = fmt.Sprintf("http://localhost:%d", globalConfig.Server.Port)
	}
	if globalConfig.Session.TTL == 0 {
		globalConfig.Session.TTL = 30 * time.Minute
	}
	if globalConfig.Session.MaxSessions == 0 {
		globalConfig.Session.MaxSessions = 10000
	}
	if globalConfig.Session.SweepInterval == 0 {
		globalConfig.Session.SweepInterval = time.Minute
	}
	if globalConfig.Relay.HeartbeatInterval == 0 {
		globalConfig.Relay.HeartbeatInterval = 25 * time.Second
	}
	if globalConfig.Relay.QueueDepth == 0 {
		globalConfig.Relay.QueueDepth = 256
	}
}

func GetConfig() *Config {
	return &globalConfig
}
