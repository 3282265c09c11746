package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanPaths []string  `toml:"scan_paths"`
	Exclude   Exclude   `toml:"exclude"`
	Watch     Watch     `toml:"watch"`
	Output    Output    `toml:"output"`
	History   History   `toml:"history"`
	Telemetry Telemetry `toml:"telemetry"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce      time.Duration `toml:"debounce"`
	RescansPerSec float64       `toml:"rescans_per_sec"`
}

type Output struct {
	CallsTSV      string `toml:"calls_tsv"`
	PrioritiesTSV string `toml:"priorities_tsv"`
}

type History struct {
	Path string `toml:"path"`
}

type Telemetry struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RescansPerSec == 0 {
		cfg.Watch.RescansPerSec = 2
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "__pycache__", "*venv*", "node_modules"}
	}
}
