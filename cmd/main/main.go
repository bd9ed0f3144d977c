package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trade-brain/src/config"
	"trade-brain/src/feature"
	"trade-brain/src/interfaces"
	"trade-brain/src/live"
	"trade-brain/src/logger"
	"trade-brain/src/predictor"
	"trade-brain/src/server"
	"trade-brain/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Tick store
	var store interfaces.ITickStore

	switch config.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresTickStore(config.MConfig, appLogger)
	default:
		// Default to SQLite
		store, err = storage.NewSQLiteTickStore(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init tick store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate tick store: %v", err)
	}
	defer store.Close()

	if count, err := store.CountTicks(); err == nil {
		appLogger.Info("Tick store ready: %d ticks", count)
	}

	// 3. Model backend (loads artifact if one exists)
	pred, err := predictor.NewLinearPredictor(config.Model, config.Training, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init predictor: %v", err)
	}

	// 4. Live window and training set builder
	tracker := live.NewWindowTracker(config.Model.InputWindow)
	builder := feature.NewTrainingSetBuilder(config.Model, config.Training)

	// 5. Monitor server (optional observability surface)
	var publisher interfaces.IStatePublisher
	if config.Monitor.Enabled {
		monitor := server.NewMonitorServer(config.MConfig, appLogger)
		publisher = monitor

		go func() {
			if err := monitor.Start(); err != nil {
				appLogger.Error("Monitor failed: %v", err)
			}
		}()
	}

	// 6. Protocol server
	orch := server.NewOrchestrator(config.MConfig, store, pred, tracker, builder, publisher, appLogger)
	srv := server.NewTCPServer(config.MConfig, orch, appLogger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	case <-quit:
		appLogger.Info("Shutting down...")
		srv.Stop()
	}
}
