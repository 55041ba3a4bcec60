package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"schedulemanager/internal/config"
	"schedulemanager/internal/files"
	"schedulemanager/internal/http"
	"schedulemanager/internal/migration"
	"schedulemanager/internal/storage"
	"schedulemanager/internal/workspace"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	itemRepo := storage.NewItemRepo(db)
	blockRepo := storage.NewBlockRepo(db)
	dayNoteRepo := storage.NewDayNoteRepo(db)
	assetRepo := storage.NewAssetRepo(db)

	// Initialize the local file store
	fileStore, err := files.NewLocalStore(cfg.FilesBaseDir)
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}
	slog.Info("File store initialized", "base_dir", cfg.FilesBaseDir)

	// Create the import engine and the board service
	migrationService := migration.NewService(
		itemRepo,
		blockRepo,
		dayNoteRepo,
		assetRepo,
		fileStore,
		migration.WalkLimits{MaxDepth: cfg.MaxArchiveDepth, MaxBytes: cfg.MaxArchiveBytes},
	)
	boardService := workspace.NewService(itemRepo, blockRepo, dayNoteRepo)

	// Create router with dependencies
	deps := &http.Deps{
		DB:        db,
		Migration: migrationService,
		Board:     boardService,
		FileStore: fileStore,
		Assets:    assetRepo,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
