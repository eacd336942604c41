package main

import (
	"fmt"
	"net/http"
	"os"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/remote"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database and migrate the schema
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Optional remote mirror. Keep the interface nil when disabled so the
	// service can skip mirroring entirely.
	var mirror journal.Mirror
	if client := remote.NewClient(&cfg.Mirror, log); client != nil {
		mirror = client
	}

	service := journal.NewService(log, db, mirror)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, &cfg, service)
	apiHandler.Register(mux)

	// Static file serving for the web client, when bundled.
	if cfg.Server.StaticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.Server.StaticDir))))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting journal server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Journal server failed", zap.Error(err))
	}
}
