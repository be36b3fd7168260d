package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/herbarium/florasync/internal/infra/botapi"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Dedup.PageSize == 0 {
		cfg.Dedup.PageSize = 1000
	}

	// Trefle allows ~120 req/min, Perenual ~60 req/min.
	providerDefaults(&cfg.Providers.Trefle, "https://trefle.io/api/v1", 500*time.Millisecond)
	providerDefaults(&cfg.Providers.Perenual, "https://perenual.com/api", 1*time.Second)
}

func providerDefaults(pc *botapi.Config, baseURL string, minDelay time.Duration) {
	if pc.BaseURL == "" {
		pc.BaseURL = baseURL
	}
	if pc.MinDelay == 0 {
		pc.MinDelay = minDelay
	}
	if pc.Timeout == 0 {
		pc.Timeout = 10 * time.Second
	}
	if pc.MaxRetries == 0 {
		pc.MaxRetries = 3
	}
	if pc.RetryBaseDelay == 0 {
		pc.RetryBaseDelay = 1 * time.Second
	}
	if pc.FailureThreshold == 0 {
		pc.FailureThreshold = 5
	}
	if pc.SuccessThreshold == 0 {
		pc.SuccessThreshold = 2
	}
	if pc.Cooldown == 0 {
		pc.Cooldown = 60 * time.Second
	}
	if pc.CacheTTL == 0 {
		pc.CacheTTL = 24 * time.Hour
	}
}
