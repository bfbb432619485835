// Package main implements the tessera-create command.
// It builds an array schema from a YAML definition file and registers the
// array at the given URI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tessera-db/tessera/internal/app"
	"github.com/tessera-db/tessera/internal/arraydef"
	"github.com/tessera-db/tessera/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		defFile     string
		uri         string
		dryRun      bool
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&defFile, "definition", "", "Path to the array definition file (required)")
	flag.StringVar(&uri, "uri", "", "Array URI to create (required)")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the definition without creating the array")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tessera-create - create a Tessera array from a definition file\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tessera-create [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tessera-create --definition sensors.yaml --uri arrays/sensors\n")
		fmt.Fprintf(os.Stderr, "  tessera-create --config /etc/tessera/config.yaml --definition kv.yaml --uri arrays/kv --dry-run\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TESSERA_DATA_DIR       Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  TESSERA_STORAGE_TYPE   Storage backend (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  TESSERA_S3_BUCKET      S3 bucket for schema objects\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("tessera-create %s (commit %s)\n", version, commit)
		return
	}

	if defFile == "" || uri == "" {
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
	err = run(ctx, a, defFile, uri, dryRun)
	a.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, a *app.App, defFile, uri string, dryRun bool) error {
	def, err := arraydef.LoadFile(defFile)
	if err != nil {
		return fmt.Errorf("failed to load definition: %w", err)
	}

	s, err := def.Build(a.SchemaContext())
	if err != nil {
		return fmt.Errorf("invalid array definition: %w", err)
	}

	if dryRun {
		fmt.Println(s.String())
		log.Printf("Definition is valid, skipping create (--dry-run)")
		return nil
	}

	if err := s.Create(ctx, uri); err != nil {
		return fmt.Errorf("failed to create array: %w", err)
	}
	log.Printf("Created array at %s", uri)
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
