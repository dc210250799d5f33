// Package config loads the clamav-scan settings from an optional yaml file
// and CLAMAV_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/DevHatRo/clamav-sdk-go/grpc"
)

// Transports accepted by Config.Transport.
const (
	TransportREST = "rest"
	TransportGRPC = "grpc"
)

// Config is the CLI configuration. Environment variables override values
// read from the yaml file.
type Config struct {
	// Environment selects the logger setup (development or production).
	Environment string `env:"CLAMAV_ENVIRONMENT" env-default:"development" yaml:"environment"`
	// Transport is either "rest" or "grpc".
	Transport string `env:"CLAMAV_TRANSPORT" env-default:"rest" yaml:"transport"`
	// RESTURL is the base URL of the ClamAV REST API.
	RESTURL string `env:"CLAMAV_REST_URL" env-default:"http://localhost:6000" yaml:"restUrl"`
	// GRPCAddr is the address of the ClamAV gRPC API.
	GRPCAddr string `env:"CLAMAV_GRPC_ADDR" env-default:"localhost:9000" yaml:"grpcAddr"`
	// Timeout bounds one scan operation, including a whole multi-file session.
	Timeout time.Duration `env:"CLAMAV_TIMEOUT" env-default:"5m" yaml:"timeout"`
	// ChunkSize is the gRPC streaming frame size in bytes.
	ChunkSize int `env:"CLAMAV_CHUNK_SIZE" env-default:"65536" yaml:"chunkSize"`
	// Concurrency is the number of parallel REST uploads for multi-file scans.
	Concurrency int `env:"CLAMAV_CONCURRENCY" env-default:"4" yaml:"concurrency"`
	// Interleave is the gRPC multi-file frame order: sequential or round-robin.
	Interleave string `env:"CLAMAV_INTERLEAVE" env-default:"sequential" yaml:"interleave"`
	// MetricsAddr, when set, serves Prometheus metrics on /metrics.
	MetricsAddr string `env:"CLAMAV_METRICS_ADDR" yaml:"metricsAddr"`
}

// Load reads configPath, if non-empty, and the environment.
func Load(configPath string) (*Config, error) {
	var cfg Config

	var err error
	if configPath == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(configPath, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values the clients would otherwise reject later.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transport {
	case TransportREST, TransportGRPC:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if _, err := grpc.ParseInterleave(c.Interleave); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Usage describes the environment variables.
func Usage() string {
	var cfg Config
	s, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return s
}
