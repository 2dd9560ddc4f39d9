// Package config loads service settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "TODO"

type Config struct {
	Env      string
	Port     string
	BasePath string

	Log     LogConfig
	Metrics MetricsConfig
	Sentry  SentryConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Port string
	Path string
}

type SentryConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
	LogFile string
}

// IsDev reports whether the service runs in the development environment.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("port", "6969")
	v.SetDefault("base_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.port", "8081")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.topic", "todo-events")
	v.SetDefault("kafka.group_id", "todo-event-logger")
	v.SetDefault("kafka.log_file", "todo-events.log")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keep the variables the Node service understood
	_ = v.BindEnv("env", "TODO_ENV", "NODE_ENV")
	_ = v.BindEnv("port", "TODO_PORT", "PORT")
	_ = v.BindEnv("config", "TODO_CONFIG")

	setDefaults(v)
	return v
}

// Load reads defaults, then the file named by TODO_CONFIG if set, then
// TODO_* environment variables, and validates the result.
func Load() (*Config, error) {
	v := newViper()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Env:      v.GetString("env"),
		Port:     v.GetString("port"),
		BasePath: v.GetString("base_path"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Metrics: MetricsConfig{
			Port: v.GetString("metrics.port"),
			Path: v.GetString("metrics.path"),
		},
		Sentry: SentryConfig{
			DSN: v.GetString("sentry.dsn"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Kafka: KafkaConfig{
			Broker:  v.GetString("kafka.broker"),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.group_id"),
			LogFile: v.GetString("kafka.log_file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is not configured")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with '/', got %q", c.BasePath)
	}
	if c.Metrics.Port != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	if c.Kafka.Broker != "" && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka.broker is set")
	}
	return nil
}
