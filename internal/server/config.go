package server

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLogLevel = "PATCH_MCP_LOG_LEVEL"
	EnvWorkers  = "PATCH_MCP_WORKERS"
	EnvSeed     = "PATCH_MCP_SEED"
)

// Config holds the server settings.
type Config struct {
	// Debug enables per-request logging.
	Debug bool

	// Workers is the number of goroutines each extraction uses. Values
	// below 2 extract sequentially.
	Workers int

	// Seeded fixes the random sampling seed to Seed so repeated calls
	// return the same patches.
	Seeded bool
	Seed   uint64
}

// ConfigFromEnv reads the server settings from the environment:
//   - PATCH_MCP_LOG_LEVEL=debug enables debug logging
//   - PATCH_MCP_WORKERS sets the extraction worker count (default 1)
//   - PATCH_MCP_SEED fixes the random sampling seed (unset: random)
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Debug:   os.Getenv(EnvLogLevel) == "debug",
		Workers: 1,
	}

	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid %s %q: must be a positive integer", EnvWorkers, v)
		}
		cfg.Workers = n
	}

	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		cfg.Seeded = true
		cfg.Seed = seed
	}

	return cfg, nil
}
