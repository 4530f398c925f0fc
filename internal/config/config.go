// Package config loads the settings of the polyface command: the facet
// options used for every construction and the logging setup.
package config

import "github.com/Faultbox/polyface/pkg/facet"

// Config holds all settings.
type Config struct {
	Facet   facet.Options `yaml:"facet"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Facet: facet.Default(),
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	return c.Facet.Validate()
}
