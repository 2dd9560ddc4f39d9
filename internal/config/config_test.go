package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every variable Load looks at. Viper treats empty values
// as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"NODE_ENV", "PORT", "TODO_ENV", "TODO_PORT", "TODO_CONFIG", "TODO_BASE_PATH",
		"TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_METRICS_PORT", "TODO_METRICS_PATH",
		"TODO_SENTRY_DSN", "TODO_REDIS_ADDR", "TODO_REDIS_DB", "TODO_KAFKA_BROKER", "TODO_KAFKA_TOPIC",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != "6969" {
		t.Errorf("expected default port 6969, got %q", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Errorf("expected dev env, got %q", cfg.Env)
	}
	if cfg.BasePath != "" {
		t.Errorf("expected empty base path, got %q", cfg.BasePath)
	}
	if cfg.Metrics.Port != "8081" || cfg.Metrics.Path != "/metrics" {
		t.Errorf("unexpected metrics config: %+v", cfg.Metrics)
	}
	if cfg.Redis.Addr != "" || cfg.Kafka.Broker != "" || cfg.Sentry.DSN != "" {
		t.Errorf("expected optional integrations disabled, got %+v", cfg)
	}
	if cfg.Kafka.Topic != "todo-events" {
		t.Errorf("expected default topic, got %q", cfg.Kafka.Topic)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Run("prefixed variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TODO_PORT", "9000")
		t.Setenv("TODO_LOG_LEVEL", "debug")
		t.Setenv("TODO_REDIS_ADDR", "localhost:6379")
		t.Setenv("TODO_REDIS_DB", "2")
		t.Setenv("TODO_BASE_PATH", "/api")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "9000" || cfg.Log.Level != "debug" || cfg.BasePath != "/api" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
			t.Errorf("unexpected redis config: %+v", cfg.Redis)
		}
	})

	t.Run("legacy PORT and NODE_ENV", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "7000")
		t.Setenv("NODE_ENV", "production")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "7000" {
			t.Errorf("expected port 7000, got %q", cfg.Port)
		}
		if cfg.IsDev() {
			t.Error("expected non-dev env")
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "todo.yaml")
	content := "port: \"8088\"\nlog:\n  format: json\nkafka:\n  broker: localhost:9092\n  topic: audit\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TODO_CONFIG", path)
	t.Setenv("TODO_KAFKA_TOPIC", "override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != "8088" || cfg.Log.Format != "json" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Kafka.Broker != "localhost:9092" {
		t.Errorf("expected broker from file, got %q", cfg.Kafka.Broker)
	}
	if cfg.Kafka.Topic != "override" {
		t.Errorf("expected env to win over file, got %q", cfg.Kafka.Topic)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:    "6969",
			Log:     LogConfig{Level: "info", Format: "text"},
			Metrics: MetricsConfig{Port: "8081", Path: "/metrics"},
			Kafka:   KafkaConfig{Topic: "todo-events"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty port", func(c *Config) { c.Port = "" }, "port"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"relative base path", func(c *Config) { c.BasePath = "api" }, "base_path"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"metrics disabled ignores path", func(c *Config) { c.Metrics.Port = ""; c.Metrics.Path = "" }, ""},
		{"broker without topic", func(c *Config) { c.Kafka.Broker = "b:9092"; c.Kafka.Topic = "" }, "kafka.topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
