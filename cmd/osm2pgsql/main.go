// Command osm2pgsql decodes an OSM planet file and streams a
// PostGIS-ready relational representation into PostgreSQL. Grounded
// on thomersch-imposm3/goposm.go's main() shape: flag parsing,
// log.SetFlags(log.LstdFlags), phased read-then-write, and a final
// summary report in place of goposm's progress.Stop().
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-osm/osm2pgsql/internal/config"
	"github.com/go-osm/osm2pgsql/internal/decoder"
	"github.com/go-osm/osm2pgsql/internal/writer"
	"github.com/go-osm/osm2pgsql/pkg/osm2pgsql"
)

func main() {
	log.SetFlags(log.LstdFlags)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalf("osm2pgsql: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("osm2pgsql: %v", err)
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	input, err := openInput(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer input.Close()

	wpool, err := writer.Open(ctx, writer.Options{
		DatabaseURL: cfg.DatabaseURL,
		Workers:     cfg.Workers,
		BatchSize:   1000,
	})
	if err != nil {
		return fmt.Errorf("opening writer pool: %w", err)
	}

	dec := decoder.NewLineFormatDecoder(input, decoder.NewOrderChecker())
	imp := osm2pgsql.New(cfg)

	runErr := imp.Run(ctx, dec, wpool)
	closeErr := wpool.Close()

	imp.Stats.WriteSummary(os.Stdout)

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// openInput resolves spec.md §6's input path convention: "-" or ""
// means stdin.
func openInput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
