package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alphabot-ai/slashboard/internal/logging"
	"github.com/alphabot-ai/slashboard/internal/telemetry"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	Auth      AuthConfig       `yaml:"auth"`
	Feed      FeedConfig       `yaml:"feed"`
	Client    ClientConfig     `yaml:"client"`
	Log       logging.Config   `yaml:"log"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	TokenTTL     time.Duration `yaml:"token_ttl"`
	ChallengeTTL time.Duration `yaml:"challenge_ttl"`
}

// FeedConfig bounds page sizes and child fan-out on the read path.
type FeedConfig struct {
	PageSize      int `yaml:"page_size"`
	MaxPageSize   int `yaml:"max_page_size"`
	ChildPageSize int `yaml:"child_page_size"`
	Parallelism   int `yaml:"parallelism"`
}

type ClientConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	SnapshotCache int           `yaml:"snapshot_cache"`
}

func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "slashboard.db"},
		Auth: AuthConfig{
			TokenTTL:     24 * time.Hour,
			ChallengeTTL: 5 * time.Minute,
		},
		Feed: FeedConfig{
			PageSize:      25,
			MaxPageSize:   100,
			ChildPageSize: 5,
			Parallelism:   8,
		},
		Client: ClientConfig{
			BaseURL:       "http://localhost:8080",
			Timeout:       10 * time.Second,
			SnapshotCache: 64,
		},
		Log: logging.Config{Level: "info", Format: "text"},
		Telemetry: telemetry.Config{
			Exporter:    "none",
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "slashboard",
			SampleRatio: 1,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// SLASHBOARD_* environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = envString("SLASHBOARD_ADDR", cfg.Server.Addr)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SLASHBOARD_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Database.Path = envString("SLASHBOARD_DB", cfg.Database.Path)
	cfg.Auth.TokenTTL = envDuration("SLASHBOARD_TOKEN_TTL", cfg.Auth.TokenTTL)
	cfg.Auth.ChallengeTTL = envDuration("SLASHBOARD_CHALLENGE_TTL", cfg.Auth.ChallengeTTL)
	cfg.Feed.PageSize = envInt("SLASHBOARD_PAGE_SIZE", cfg.Feed.PageSize)
	cfg.Feed.MaxPageSize = envInt("SLASHBOARD_MAX_PAGE_SIZE", cfg.Feed.MaxPageSize)
	cfg.Feed.ChildPageSize = envInt("SLASHBOARD_CHILD_PAGE_SIZE", cfg.Feed.ChildPageSize)
	cfg.Feed.Parallelism = envInt("SLASHBOARD_FETCH_PARALLELISM", cfg.Feed.Parallelism)
	cfg.Client.BaseURL = envString("SLASHBOARD_URL", cfg.Client.BaseURL)
	cfg.Client.Timeout = envDuration("SLASHBOARD_CLIENT_TIMEOUT", cfg.Client.Timeout)
	cfg.Log.Level = envString("SLASHBOARD_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envString("SLASHBOARD_LOG_FORMAT", cfg.Log.Format)
	cfg.Telemetry.Exporter = envString("SLASHBOARD_TRACE_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = envString("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
