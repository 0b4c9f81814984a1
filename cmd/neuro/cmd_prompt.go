package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/sliitlabs/neuroai/src/app"
	"github.com/sliitlabs/neuroai/src/engine"
)

// PromptCmd sends a single prompt and prints the reply
type PromptCmd struct {
	Text         []string `arg:"" optional:"" help:"The prompt text (reads stdin when omitted)"`
	Provider     string   `short:"p" help:"Provider to use (openai, anthropic, google)"`
	Temperature  *float64 `help:"Override sampling temperature"`
	MaxTokens    *int     `help:"Override max response tokens"`
	Conversation string   `help:"Conversation ID to continue"`
	JSON         bool     `help:"Print the result as JSON"`
}

// Run executes the prompt command
func (c *PromptCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	prompt := strings.TrimSpace(strings.Join(c.Text, " "))
	if prompt == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return fmt.Errorf("no prompt given: pass it as an argument or on stdin")
	}

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	text, err := a.Engine.Chat(context.Background(), prompt, engine.ChatOptions{
		ConversationID: c.Conversation,
		Provider:       c.Provider,
		Temperature:    c.Temperature,
		MaxTokens:      c.MaxTokens,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		name := c.Provider
		if name == "" {
			name = a.Engine.DefaultProvider()
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"provider": name,
			"response": text,
		})
	}

	fmt.Println(text)
	return nil
}
