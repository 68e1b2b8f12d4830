// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of the region daemon.
type Config struct {
	// DBPath is the path of the region database.
	DBPath string `yaml:"db-path"`
	// LoggingConfig is a loggo specification string, for example
	// "<root>=INFO;regiond.trigger=TRACE".
	LoggingConfig string `yaml:"logging-config"`
}

// Validate ensures that all the values that have to be set are set.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.NotValidf("missing db-path")
	}
	return nil
}

// ReadConfig loads and validates a configuration file.
func ReadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Annotate(err, "reading config")
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Annotate(err, "parsing config")
	}
	if config.LoggingConfig == "" {
		config.LoggingConfig = "<root>=INFO"
	}
	if err := config.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return config, nil
}
