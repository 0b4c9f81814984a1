package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sliitlabs/neuroai/src/config"
)

// ConfigCmd manages configuration files
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a starter config file"`
}

// ConfigInitCmd writes the default configuration to disk
type ConfigInitCmd struct {
	Path  string `type:"path" help:"Where to write the config (defaults to the user config path)"`
	Force bool   `help:"Overwrite an existing file"`
}

// Run executes the config init command
func (c *ConfigInitCmd) Run(ctx *kong.Context, cli *CLI) error {
	loader := config.NewLoader()

	path := c.Path
	if path == "" {
		path = loader.UserConfigPath()
	}

	if !c.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := loader.SaveFile(config.DefaultConfig(), path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Add provider API keys there or export OPENAI_API_KEY, ANTHROPIC_API_KEY, or GOOGLE_API_KEY.")
	return nil
}
