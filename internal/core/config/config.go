package config

import (
	"time"

	"github.com/herbarium/florasync/internal/infra/botapi"
	redisclient "github.com/herbarium/florasync/internal/infra/redis"
	"github.com/herbarium/florasync/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	Redis     redisclient.Config `yaml:"redis"`
	Database  postgres.Config    `yaml:"database"`
	Providers ProvidersConfig    `yaml:"providers"`
	Dedup     DedupConfig        `yaml:"dedup"`
}

// ServerConfig holds monitoring HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ProvidersConfig holds settings for both plant-data providers.
type ProvidersConfig struct {
	Trefle   botapi.Config `yaml:"trefle"`
	Perenual botapi.Config `yaml:"perenual"`
}

// DedupConfig holds entity-resolution settings.
type DedupConfig struct {
	// PageSize bounds the scientific-name scan during resolution.
	// Records beyond it are not compared, a documented limitation of
	// the linear scan.
	PageSize int `yaml:"page_size"`
	// ReconcileInterval enables the periodic bulk reconcile job when
	// non-zero. Only one reconcile pass runs at a time.
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}
