// Package config provides configuration parsing for nabz.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Intensity selects the collection cadence. The same values are consumed by
// the external background-monitoring feature, so the names must stay stable.
type Intensity string

const (
	IntensityMinimal       Intensity = "minimal"       // 300s
	IntensityMedium        Intensity = "medium"        // 120s
	IntensityBalanced      Intensity = "balanced"      // 60s
	IntensityComprehensive Intensity = "comprehensive" // 15s
)

// Interval returns the collection cadence for the intensity.
// Unknown values fall back to balanced.
func (i Intensity) Interval() time.Duration {
	switch i {
	case IntensityMinimal:
		return 300 * time.Second
	case IntensityMedium:
		return 120 * time.Second
	case IntensityComprehensive:
		return 15 * time.Second
	default:
		return 60 * time.Second
	}
}

// Valid reports whether the intensity is one of the known values.
func (i Intensity) Valid() bool {
	switch i {
	case IntensityMinimal, IntensityMedium, IntensityBalanced, IntensityComprehensive:
		return true
	}
	return false
}

// Config carries runtime options for the nabz daemon.
type Config struct {
	// Intensity selects the collection cadence (minimal|medium|balanced|comprehensive).
	Intensity Intensity `yaml:"intensity"`
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// AllowedOrigins restricts CORS; empty means same-origin only.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// AllowedIPs restricts access to the listed client IPs; localhost is
	// always allowed and an empty list allows everyone.
	AllowedIPs []string `yaml:"allowed_ips"`
	// SessionRetention bounds the in-process snapshot history (duration string).
	SessionRetention string `yaml:"session_retention"`
	// AnomalyRetention bounds the active anomaly window (duration string).
	AnomalyRetention string `yaml:"anomaly_retention"`
	// TopProcesses is the ranked process list cutoff.
	TopProcesses int `yaml:"top_processes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Intensity:        IntensityBalanced,
		Listen:           "localhost:8080",
		SessionRetention: "1h",
		AnomalyRetention: "5m",
		TopProcesses:     20,
	}
}

// Load reads configuration from an optional YAML file, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if !cfg.Intensity.Valid() {
		return cfg, fmt.Errorf("config: unknown intensity %q", cfg.Intensity)
	}
	if cfg.TopProcesses <= 0 {
		cfg.TopProcesses = Default().TopProcesses
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NABZ_INTENSITY"); v != "" {
		cfg.Intensity = Intensity(v)
	}
	if v := os.Getenv("NABZ_LISTEN"); v != "" {
		cfg.Listen = v
	}
}

// SessionRetentionDuration parses SessionRetention, defaulting to one hour.
func (c Config) SessionRetentionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionRetention)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// AnomalyRetentionDuration parses AnomalyRetention, defaulting to 5 minutes.
func (c Config) AnomalyRetentionDuration() time.Duration {
	d, err := time.ParseDuration(c.AnomalyRetention)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
