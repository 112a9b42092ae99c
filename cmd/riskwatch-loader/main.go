// Loads the risk-type catalog from a YAML seed file into the database.
//
// Usage:
//
//	riskwatch-loader -db riskwatch.db -seed risk_types.yaml
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/osvik/riskwatch/internal/adapters/catalog"
	"github.com/osvik/riskwatch/internal/adapters/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	dbPath := flag.String("db", "riskwatch.db", "Path to SQLite database")
	seedPath := flag.String("seed", "risk_types.yaml", "Risk type seed file")
	flag.Parse()

	store, err := storage.NewSQLiteAdapter(*dbPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := catalog.NewSeedLoader(store).LoadFromFile(*seedPath); err != nil {
		slog.Error("Failed to load seed file", "error", err)
		os.Exit(1)
	}
}
