package main

import (
	"fmt"

	"github.com/sliitlabs/neuroai/src/config"
)

// loadConfig loads and validates the configuration, honoring --config.
func loadConfig(cli *CLI) (*config.Config, error) {
	loader := config.NewLoader()

	var (
		cfg *config.Config
		err error
	)
	if cli.ConfigPath != "" {
		cfg, err = loader.LoadFile(cli.ConfigPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
