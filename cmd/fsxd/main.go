package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dot-do/fsx/internal/logger"
	"github.com/dot-do/fsx/pkg/config"
	"github.com/dot-do/fsx/pkg/fsx"
	"github.com/dot-do/fsx/pkg/gc"
	"github.com/dot-do/fsx/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	initConfig := flag.Bool("init-config", false, "Write a default config file and exit")
	forceInit := flag.Bool("force", false, "Overwrite an existing config file with -init-config")
	logLevel := flag.String("log-level", "", "Override the configured log level (DEBUG, INFO, WARN, ERROR)")
	gcNow := flag.Bool("gc-now", false, "Run one garbage collection pass at startup")
	flag.Parse()

	if *initConfig {
		path, err := config.InitConfig(*forceInit)
		if err != nil {
			log.Fatalf("Failed to initialize config: %v", err)
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := setupLogging(&cfg.Logging); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	fmt.Println("fsx - Virtual Filesystem Daemon")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics collection enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Step 1: Build stores from configuration
	store, err := config.CreateMetadataStore(ctx, &cfg.Metadata)
	if err != nil {
		log.Fatalf("Failed to create metadata store: %v", err)
	}
	logger.Info("Metadata store initialized: type=%s", cfg.Metadata.Type)

	blobs, err := config.CreateBlobStore(ctx, &cfg.Blob, metrics.NewBlobMetrics())
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}
	logger.Info("Blob store initialized: hot<=%dB warm<=%dB",
		cfg.Blob.HotMaxBytes, cfg.Blob.WarmMaxBytes)

	// Step 2: Build the filesystem (seeds the root directory on first run)
	filesystem, err := fsx.New(ctx, fsx.Options{
		Store: store,
		Blobs: blobs,
		Identity: fsx.Identity{
			UID:    cfg.Identity.UID,
			GID:    cfg.Identity.GID,
			Groups: cfg.Identity.Groups,
		},
		MaxLinkDepth: cfg.Filesystem.MaxLinkDepth,
		Metrics:      metrics.NewFilesystemMetrics(),
	})
	if err != nil {
		log.Fatalf("Failed to create filesystem: %v", err)
	}
	if _, err := filesystem.Stat(ctx, "/"); err != nil {
		log.Fatalf("Filesystem readiness check failed: %v", err)
	}
	logger.Info("Filesystem ready: uid=%d gid=%d max_link_depth=%d",
		cfg.Identity.UID, cfg.Identity.GID, cfg.Filesystem.MaxLinkDepth)

	// Step 3: Start background garbage collection
	collector, err := gc.NewCollector(store, blobs, gc.Config{
		Enabled:   cfg.GC.Enabled,
		Interval:  cfg.GC.Interval,
		BatchSize: cfg.GC.BatchSize,
		DryRun:    cfg.GC.DryRun,
	})
	if err != nil {
		log.Fatalf("Failed to create garbage collector: %v", err)
	}
	collector.Start()

	if *gcNow {
		stats, err := collector.RunNow(ctx)
		if err != nil {
			logger.Error("Startup garbage collection failed: %v", err)
		} else {
			logger.Info("Startup garbage collection: %s", stats.Summary())
		}
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("fsx is running. Press Ctrl+C to stop.")
	<-sigChan

	logger.Info("Shutdown signal received, initiating graceful shutdown...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := collector.Stop(shutdownCtx); err != nil {
		logger.Error("Garbage collector shutdown error: %v", err)
	}

	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Metadata store close error: %v", err)
		}
	}

	logger.Info("fsx stopped gracefully")
}

// setupLogging configures the process-wide logger from config.
func setupLogging(cfg *config.LoggingConfig) error {
	logger.SetLevel(cfg.Level)
	logger.SetFormat(cfg.Format)

	switch cfg.Output {
	case "stdout", "":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.Output, err)
		}
		logger.SetOutput(f)
	}
	return nil
}
