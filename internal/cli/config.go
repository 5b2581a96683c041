package cli

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

const defaultConfigPath = "configs/default.yaml"

// Config represents the complete system configuration structure
// Maps config file fields through YAML tags
type Config struct {
	Scheduler struct {
		Quantum       int `yaml:"quantum"`
		ContextSwitch int `yaml:"context_switch"`
	} `yaml:"scheduler"`

	Comparison struct {
		Workers    int      `yaml:"workers"`
		Algorithms []string `yaml:"algorithms"`
	} `yaml:"comparison"`

	Server struct {
		HTTPPort int `yaml:"http_port"`
		GRPCPort int `yaml:"grpc_port"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// defaultConfig is used as is when the default file is absent and as the
// base every config file is merged onto.
func defaultConfig() *Config {
	var cfg Config
	cfg.Scheduler.Quantum = 4
	cfg.Comparison.Algorithms = make([]string, len(types.Algorithms))
	for i, a := range types.Algorithms {
		cfg.Comparison.Algorithms[i] = string(a)
	}
	cfg.Server.HTTPPort = 8080
	cfg.Server.GRPCPort = 50051
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090
	return &cfg
}

// loadConfig reads path on top of the defaults. A missing file is only an
// error when the path was chosen explicitly.
func loadConfig(path string, explicit bool) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if _, err := cfg.algorithms(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// engineConfig returns the per-run engine configuration
func (c *Config) engineConfig() engine.Config {
	return engine.Config{
		Quantum:       c.Scheduler.Quantum,
		ContextSwitch: c.Scheduler.ContextSwitch,
	}
}

// algorithms parses the default comparison selection
func (c *Config) algorithms() ([]types.Algorithm, error) {
	return parseAlgorithms(c.Comparison.Algorithms)
}

func parseAlgorithms(names []string) ([]types.Algorithm, error) {
	algs := make([]types.Algorithm, 0, len(names))
	for _, name := range names {
		a, err := types.ParseAlgorithm(name)
		if err != nil {
			return nil, fmt.Errorf("%w (supported: %v)", err, types.Algorithms)
		}
		algs = append(algs, a)
	}
	return algs, nil
}
