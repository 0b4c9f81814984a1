package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/sliitlabs/neuroai/src/config"
	"github.com/sliitlabs/neuroai/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Run pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status"`
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(ctx *kong.Context, cli *CLI) error {
	db, err := openMigrateDB(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("Database ready: %s (migrations applied on open)\n", db.Path())
	return nil
}

// MigrateStatusCmd shows migration status
type MigrateStatusCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate status command
func (c *MigrateStatusCmd) Run(ctx *kong.Context, cli *CLI) error {
	db, err := openMigrateDB(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.AppliedMigrations()
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", db.Path())
	for _, version := range applied {
		fmt.Printf("  applied: %03d\n", version)
	}
	if len(applied) == 0 {
		fmt.Println("  no migrations applied")
	}
	return nil
}

func openMigrateDB(cli *CLI, dbPath string) (*storage.DB, error) {
	if dbPath == "" {
		cfg, err := loadConfig(cli)
		if err != nil {
			return nil, err
		}
		dbPath = config.GetStoragePaths(cfg.Data.Directory).DatabasePath
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
