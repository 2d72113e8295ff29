// Package config loads the YAML boot manifest.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init describes the root task scheduled at boot.
type Init struct {
	Msg  string `yaml:"msg"`
	Serv string `yaml:"serv"`
}

// Config is the boot manifest.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`
	MetricsAddr string `yaml:"metrics_addr"`
	StorePath   string `yaml:"store_path"`
	Stub        bool   `yaml:"stub"`
	Init        Init   `yaml:"init"`
}

// Default returns the manifest used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Init: Init{
			Msg:  "hello@test.echo",
			Serv: "sys.task",
		},
	}
}

// Load reads and validates a manifest file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Init.Serv == "" {
		return nil, fmt.Errorf("config: init.serv must name a service")
	}
	if cfg.Init.Msg == "" {
		return nil, fmt.Errorf("config: init.msg must hold a unit source")
	}
	return cfg, nil
}
