package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yooz-lang/go-yooz/engine"
)

// Config is the optional YAML configuration file. Flags override it.
type Config struct {
	Fallback     string `yaml:"fallback"`
	Rotation     string `yaml:"rotation"`
	StrictRender bool   `yaml:"strict_render"`
	Seed         int64  `yaml:"seed"`
	CacheSize    int    `yaml:"cache_size"`
	Transcript   string `yaml:"transcript"`
	Database     string `yaml:"database"`
}

// LoadConfig reads a YAML config file. An empty path yields the zero config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// EngineOptions converts the config into engine options.
func (c Config) EngineOptions() (engine.Options, error) {
	rotation, err := engine.ParseRotation(c.Rotation)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Fallback:     c.Fallback,
		Rotation:     rotation,
		StrictRender: c.StrictRender,
		Seed:         c.Seed,
		CacheSize:    c.CacheSize,
	}, nil
}
