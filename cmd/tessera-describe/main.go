// Package main implements the tessera-describe command.
// It loads a persisted array schema and prints it, or lists every array
// registered in the catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/tessera-db/tessera/internal/app"
	"github.com/tessera-db/tessera/internal/config"
	"github.com/tessera-db/tessera/pkg/schema"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		uri         string
		list        bool
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&uri, "uri", "", "Array URI to describe")
	flag.BoolVar(&list, "list", false, "List all registered arrays")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tessera-describe - inspect Tessera arrays\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tessera-describe [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tessera-describe --uri arrays/sensors\n")
		fmt.Fprintf(os.Stderr, "  tessera-describe --list\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("tessera-describe %s (commit %s)\n", version, commit)
		return
	}

	if !list && uri == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := loadConfig(configFile, dataDir)
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	// log.Fatalf skips deferred calls; close before exiting.
	err = run(ctx, a, uri, list)
	a.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, a *app.App, uri string, list bool) error {
	if list {
		return listArrays(ctx, a)
	}

	s, err := schema.LoadArraySchema(ctx, a.SchemaContext(), uri)
	if err != nil {
		return fmt.Errorf("failed to load array %s: %w", uri, err)
	}
	fmt.Println(s.String())
	return nil
}

func listArrays(ctx context.Context, a *app.App) error {
	records, err := a.Catalog().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list arrays: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("no arrays registered")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URI\tARRAY ID\tSIZE\tCREATED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			rec.URI, rec.ArrayID, rec.SizeBytes, rec.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
	return nil
}

func loadConfig(configFile, dataDir string) *config.Config {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg
}
