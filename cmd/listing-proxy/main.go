package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/di"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server ports.ListingServer,
	client core.AnalysisClient,
	cache core.DecisionCache,
	prices core.PriceSource,
	blocklist core.BlocklistStore,
) error {
	defer logger.Sync()

	// Start the server
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start listing server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the server
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop listing server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := client.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close analysis client", zap.Error(err))
		}
	}
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if stopper, ok := prices.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := blocklist.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close blocklist", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
