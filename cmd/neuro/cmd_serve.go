package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/sliitlabs/neuroai/src/app"
	"github.com/sliitlabs/neuroai/src/server"
)

// ServeCmd runs the HTTP chat server
type ServeCmd struct {
	Host string `help:"Address to bind (defaults to config)"`
	Port int    `help:"Port to bind (defaults to config)"`
}

// Run executes the serve command
func (c *ServeCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.Engine, server.Options{
		Docs:   a.Docs,
		DB:     a.Store,
		Logger: logger,
	})

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	fmt.Printf("Neuro AI listening on http://%s\n", addr)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(runCtx, addr)
}
