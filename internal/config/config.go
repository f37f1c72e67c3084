// Package config centraliza o carregamento de configurações do gateway.
//
// Ordem de precedência: defaults < arquivo YAML (RATE_CONFIG_FILE) < .env < variáveis
// de ambiente do processo.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr  string `yaml:"listen-addr"`
	UpstreamURL string `yaml:"upstream-url"`
	LogLevel    string `yaml:"log-level"`

	Rate  RateConfig  `yaml:"rate"`
	Redis RedisConfig `yaml:"redis"`
	Stats StatsConfig `yaml:"stats"`
}

type RateConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Store      string        `yaml:"store"` // "redis" ou "memory"
	Window     time.Duration `yaml:"window"`
	Max        int64         `yaml:"max"`
	KeyHeader  string        `yaml:"key-header"`
	SkipPaths  []string      `yaml:"skip-paths"`
	AddHeaders bool          `yaml:"add-headers"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type StatsConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
	Bucket    string        `yaml:"bucket"`
	TrackKeys bool          `yaml:"track-keys"`
}

func Default() Config {
	return Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		Rate: RateConfig{
			Enabled: true,
			Store:   "redis",
			Window:  time.Minute,
			Max:     100,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Stats: StatsConfig{
			Prefix: "ratelimit:stats",
			TTL:    24 * time.Hour,
			Bucket: "minute",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("RATE_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	str := func(k string, dst *string) {
		if v, ok := lookup(k); ok {
			*dst = v
		}
	}
	boolean := func(k string, dst *bool) {
		if v, ok := lookup(k); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", k, err))
				return
			}
			*dst = b
		}
	}
	integer := func(k string, dst *int64) {
		if v, ok := lookup(k); ok {
			i, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", k, err))
				return
			}
			*dst = i
		}
	}
	duration := func(k string, dst *time.Duration) {
		if v, ok := lookup(k); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", k, err))
				return
			}
			*dst = d
		}
	}

	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("UPSTREAM_URL", &cfg.UpstreamURL)
	str("LOG_LEVEL", &cfg.LogLevel)

	boolean("RATE_ENABLED", &cfg.Rate.Enabled)
	str("RATE_STORE", &cfg.Rate.Store)
	duration("RATE_WINDOW", &cfg.Rate.Window)
	integer("RATE_MAX", &cfg.Rate.Max)
	str("RATE_KEY_HEADER", &cfg.Rate.KeyHeader)
	if v, ok := lookup("RATE_SKIP_PATHS"); ok {
		cfg.Rate.SkipPaths = splitList(v)
	}
	boolean("ADD_RATELIMIT_HEADERS", &cfg.Rate.AddHeaders)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("REDIS_PREFIX", &cfg.Redis.Prefix)
	db := int64(cfg.Redis.DB)
	integer("REDIS_DB", &db)
	cfg.Redis.DB = int(db)

	boolean("RATE_STATS_ENABLED", &cfg.Stats.Enabled)
	str("RATE_STATS_PREFIX", &cfg.Stats.Prefix)
	duration("RATE_STATS_TTL", &cfg.Stats.TTL)
	str("RATE_STATS_BUCKET", &cfg.Stats.Bucket)
	boolean("RATE_STATS_TRACK_KEYS", &cfg.Stats.TrackKeys)

	return errors.Join(errs...)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.UpstreamURL) == "" {
		return errors.New("UPSTREAM_URL is required")
	}
	if !c.Rate.Enabled {
		return nil
	}
	if c.Rate.Window <= 0 || c.Rate.Window%time.Millisecond != 0 {
		return fmt.Errorf("RATE_WINDOW must be a positive whole number of milliseconds, got %s", c.Rate.Window)
	}
	if c.Rate.Max <= 0 {
		return errors.New("RATE_MAX must be > 0")
	}
	switch c.Rate.Store {
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("REDIS_ADDR is required when RATE_STORE=redis")
		}
	case "memory":
		if c.Stats.Enabled {
			return errors.New("RATE_STATS_ENABLED requires RATE_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported RATE_STORE: %q", c.Rate.Store)
	}
	return nil
}

func lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
