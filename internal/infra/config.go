package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pool_watch/internal/domain"
)

// PoolEndpoint pairs a pool's display name with its status URL.
type PoolEndpoint struct {
	Name string
	URL  string
}

// Config는 애플리케이션의 모든 설정을 담습니다.
// 파일은 선택 사항이며, 환경 변수가 항상 파일 값을 덮어씁니다.
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`

	Pools struct {
		Endpoints []string `yaml:"endpoints"`
		Names     []string `yaml:"names"`
	} `yaml:"pools"`

	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads the optional YAML file, applies environment overrides and
// validates the result. A missing file is fine; missing credentials are not.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only deployment
	default:
		return nil, err
	}

	overrideWithEnv(&cfg)

	if cfg.DB.Path == "" {
		cfg.DB.Path = "./pool_stats.db"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration validity. Any failure here is fatal at startup.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return &domain.ConfigError{Field: "telegram.token", Err: errors.New("bot token is required")}
	}
	if len(c.Pools.Endpoints) == 0 {
		return &domain.ConfigError{Field: "pools.endpoints", Err: errors.New("at least one pool endpoint is required")}
	}
	if len(c.Pools.Endpoints) != len(c.Pools.Names) {
		return &domain.ConfigError{
			Field: "pools.names",
			Err:   fmt.Errorf("%d names for %d endpoints", len(c.Pools.Names), len(c.Pools.Endpoints)),
		}
	}
	for _, u := range c.Pools.Endpoints {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return &domain.ConfigError{Field: "pools.endpoints", Err: fmt.Errorf("invalid URL: %s", u)}
		}
	}
	return nil
}

// PoolEndpoints zips the endpoint and name lists, positionally paired.
func (c *Config) PoolEndpoints() []PoolEndpoint {
	eps := make([]PoolEndpoint, len(c.Pools.Endpoints))
	for i, u := range c.Pools.Endpoints {
		eps[i] = PoolEndpoint{Name: c.Pools.Names[i], URL: u}
	}
	return eps
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if urls := os.Getenv("POOL_ENDPOINTS"); urls != "" {
		cfg.Pools.Endpoints = splitList(urls)
	}
	if names := os.Getenv("POOL_NAMES"); names != "" {
		cfg.Pools.Names = splitList(names)
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.DB.Path = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
