package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/sliitlabs/neuroai/src/app"
	"github.com/sliitlabs/neuroai/src/client"
	"github.com/sliitlabs/neuroai/src/config"
	"github.com/sliitlabs/neuroai/src/console"
	"github.com/sliitlabs/neuroai/src/engine"
)

// ChatCmd starts an interactive chat session
type ChatCmd struct {
	Server   string `help:"Chat against a running server instead of in-process (base URL)"`
	Provider string `help:"Provider to use (openai, anthropic, google)"`
}

// Run executes the chat command
func (c *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	ui := console.NewUI(console.UIOptions{})

	if c.Server != "" {
		remote := client.New(c.Server, client.Options{Logger: logger})
		input := console.NewInput(config.GetStoragePaths(cfg.Data.Directory).InputHistoryPath)
		defer input.Close()

		ui.Welcome("server at " + c.Server)
		return console.Run(context.Background(), input, ui, remote.Send)
	}

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	input := console.NewInput(a.InputHistoryPath)
	defer input.Close()

	provider := c.Provider
	respond := func(ctx context.Context, message string) (string, error) {
		return a.Engine.Chat(ctx, message, engine.ChatOptions{Provider: provider})
	}

	name := provider
	if name == "" {
		name = a.Engine.DefaultProvider()
	}
	ui.Welcome(name)
	return console.Run(context.Background(), input, ui, respond)
}
