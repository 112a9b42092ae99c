package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. One instance is built at
// process start and injected into constructors; there is no process-wide
// registry.
type Config struct {
	DBPath        string
	MetricsAddr   string
	CloudEndpoint string
	CloudToken    string
	CloudTimeout  time.Duration
	SweepInterval time.Duration
	SeedPath      string
	Debug         bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.DBPath = getEnv("RISKWATCH_DB", "riskwatch.db")
	cfg.MetricsAddr = getEnv("RISKWATCH_METRICS_ADDR", ":9090")
	cfg.CloudEndpoint = getEnv("RISKWATCH_CLOUD_ENDPOINT", "http://localhost:9696")
	cfg.CloudToken = getEnv("RISKWATCH_CLOUD_TOKEN", "")
	cloudTimeout := getEnvInt("RISKWATCH_CLOUD_TIMEOUT", 30)
	sweepInterval := getEnvInt("RISKWATCH_SWEEP_INTERVAL", 1800)
	cfg.SeedPath = getEnv("RISKWATCH_SEED", "")

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Metrics/health HTTP listen address")
	flag.StringVar(&cfg.CloudEndpoint, "cloud-endpoint", cfg.CloudEndpoint, "Cloud network control plane endpoint")
	flag.StringVar(&cfg.CloudToken, "cloud-token", cfg.CloudToken, "Service token for the control plane")
	flag.IntVar(&cloudTimeout, "cloud-timeout", cloudTimeout, "Control plane request timeout in seconds")
	flag.IntVar(&sweepInterval, "sweep-interval", sweepInterval, "Expiry sweep interval in seconds")
	flag.StringVar(&cfg.SeedPath, "seed", cfg.SeedPath, "Risk type seed file (empty to skip)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	cfg.CloudTimeout = time.Duration(cloudTimeout) * time.Second
	cfg.SweepInterval = time.Duration(sweepInterval) * time.Second

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
