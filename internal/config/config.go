package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bind      string `mapstructure:"bind"`
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"` // "console" or "json"

	MinPlayers        int `mapstructure:"min-players"`
	MaxRounds         int `mapstructure:"max-rounds"`
	SurvivorThreshold int `mapstructure:"survivor-threshold"`
	RoomCodeLength    int `mapstructure:"room-code-length"`

	VotingDelay   time.Duration `mapstructure:"voting-delay"`
	VotingTimeout time.Duration `mapstructure:"voting-timeout"`
	TeardownGrace time.Duration `mapstructure:"teardown-grace"`
}

// Load unmarshals the bound viper instance into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.MinPlayers < 3 {
		return fmt.Errorf("min-players must be at least 3, got %d", c.MinPlayers)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("max-rounds must be at least 1, got %d", c.MaxRounds)
	}
	if c.RoomCodeLength < 4 {
		return fmt.Errorf("room-code-length must be at least 4, got %d", c.RoomCodeLength)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}
