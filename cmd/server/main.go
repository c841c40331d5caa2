/*
main.go - Application entry point

PURPOSE:
  Starts the recognition platform server: configuration, dependency
  wiring, graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML config (defaults if no file)
  3. Validate the level ladder - fail fast on a bad table
  4. Initialize logger and SQLite store
  5. Optionally import a CSV snapshot (full replace)
  6. Serve with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides config)
  -db      SQLite database path; ":memory:" for in-memory
  -config  YAML config path (optional)
  -import  Directory with users.csv / recognitions.csv / rewards.csv /
           redemptions.csv; replaces the stored snapshot before serving

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), close the store, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cresa/recognition-engine/api"
	"github.com/cresa/recognition-engine/config"
	"github.com/cresa/recognition-engine/engine"
	"github.com/cresa/recognition-engine/ingest"
	"github.com/cresa/recognition-engine/logging"
	"github.com/cresa/recognition-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "recognition.db", "SQLite database path")
	cfgPath := flag.String("config", "", "YAML config path")
	importDir := flag.String("import", "", "directory with snapshot CSVs to import before serving")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// The ladder is validated once, at startup. A bad table is fatal.
	levels, err := cfg.LevelTable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "level table: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	if *importDir != "" {
		if err := importSnapshot(store, *importDir); err != nil {
			log.Fatal("snapshot import failed", zap.String("dir", *importDir), zap.Error(err))
		}
		log.Info("snapshot imported", zap.String("dir", *importDir))
	}

	eng := engine.New(levels, cfg.EngineRules(), cfg.BadgeDefinitions())
	handler := api.NewHandler(store, eng, log)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// importSnapshot reads the four sheet exports from dir and replaces the
// stored raw log in one transaction. Missing files yield empty sections.
func importSnapshot(store *sqlite.Store, dir string) error {
	open := func(name string) *os.File {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil
		}
		return f
	}

	var readers ingest.SnapshotReaders
	if f := open("users.csv"); f != nil {
		defer f.Close()
		readers.Users = f
	}
	if f := open("recognitions.csv"); f != nil {
		defer f.Close()
		readers.Recognitions = f
	}
	if f := open("rewards.csv"); f != nil {
		defer f.Close()
		readers.Rewards = f
	}
	if f := open("redemptions.csv"); f != nil {
		defer f.Close()
		readers.Redemptions = f
	}

	snap, err := ingest.ParseSnapshot(readers)
	if err != nil {
		return err
	}
	return store.ImportSnapshot(context.Background(), snap)
}
