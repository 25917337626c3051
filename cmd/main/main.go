package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-dashboard/src/config"
	"market-dashboard/src/logger"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	// Lifecycle Management
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Setup Components
	app, err := setupApp(ctx, conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer app.Close()

	// 5. Start Servers
	servers := startServers(app, conf.MConfig, appLogger)

	// 6. Bootstrap (Initial Load)
	performInitialLoad(ctx, app, conf.MConfig, appLogger)

	// 7. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	app.Store.StopAutoRefresh()
	servers.Stop(shutdownCtx)
	cancel()
	appLogger.Info("Shutdown complete.")
}
