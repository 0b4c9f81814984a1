package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	ConfigPath string `name:"config" short:"c" type:"path" help:"Path to a config file (skips discovery)"`
	LogLevel string `default:"warn" help:"Log level (debug, info, warn, error)"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP chat server"`
	Chat    ChatCmd    `cmd:"" help:"Start an interactive chat session"`
	Prompt  PromptCmd  `cmd:"" help:"Send a single prompt"`
	Ingest  IngestCmd  `cmd:"" help:"Ingest documents for retrieval"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("neuro"),
		kong.Description("Neuro AI study assistant for SLIIT students"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
