package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel       string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	TCPPort        string   `yaml:"tcp-port" env:"TCP_PORT" env-default:"12345"`
	HTTPPort       string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	AllowedOrigins []string `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-default:"*"`
	Session        Session  `yaml:"session"`
	Redis          Redis    `yaml:"redis"`
}

type Session struct {
	OutboundBuffer    int           `yaml:"outbound-buffer" env:"SESSION_OUTBOUND_BUFFER" env-default:"64"`
	WriteTimeout      time.Duration `yaml:"write-timeout" env:"SESSION_WRITE_TIMEOUT" env-default:"10s"`
	CommandsPerSecond float64       `yaml:"commands-per-second" env:"SESSION_COMMANDS_PER_SECOND" env-default:"20"`
	CommandBurst      int           `yaml:"command-burst" env:"SESSION_COMMAND_BURST" env-default:"40"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"tictactoe:rooms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path and applies environment overrides on top of it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
