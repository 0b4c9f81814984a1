package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/sliitlabs/neuroai/src/app"
	"github.com/sliitlabs/neuroai/src/docstore"
)

// IngestCmd ingests documents into the retrieval store
type IngestCmd struct {
	Paths []string `arg:"" help:"Files or directories to ingest (.pdf, .html, .md, .txt)"`
	Title string   `help:"Override the document title (single file only)"`
}

// Run executes the ingest command
func (c *IngestCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, logger, app.Options{SkipProviders: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Docs == nil {
		return docstore.ErrMissingEmbeddingKey
	}

	files, err := collectDocuments(afero.NewOsFs(), c.Paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no ingestible documents found (.pdf, .html, .md, .txt)")
	}
	if c.Title != "" && len(files) > 1 {
		return fmt.Errorf("--title only applies when ingesting a single file")
	}

	var failures int
	for _, path := range files {
		meta, err := a.Docs.IngestFile(context.Background(), path, docstore.IngestOptions{Title: c.Title})
		if err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "failed  %s: %v\n", path, err)
			continue
		}
		fmt.Printf("ingested %s (%q, %d chunks)\n", path, meta.Title, meta.ChunkCount)
	}

	fmt.Printf("\n%d ingested, %d failed\n", len(files)-failures, failures)
	if failures > 0 {
		return fmt.Errorf("%d document(s) failed to ingest", failures)
	}
	return nil
}

// collectDocuments expands paths into the supported files beneath them.
func collectDocuments(fs afero.Fs, paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := fs.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = afero.Walk(fs, path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && docstore.SupportedExtension(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
