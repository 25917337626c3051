package main

import (
	"context"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
	"market-dashboard/src/storage"
	"market-dashboard/src/stores"
	"market-dashboard/src/utils"

	"golang.org/x/text/language"
)

// -----------------------------------------------------------------------------

// App holds the wired dashboard core
type App struct {
	DB       interfaces.IKeyValueStore
	Client   *network.RequestClient
	Probe    interfaces.IConnectivityProbe
	Registry *helpers.ErrorRegistry
	Store    *stores.CryptoStore
	Logger   *logger.Logger

	stopProbe func()
}

// Close releases everything setupApp acquired
func (a *App) Close() {
	a.Store.Market.Close()
	a.Registry.Close()
	if a.stopProbe != nil {
		a.stopProbe()
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warning("Failed to close storage: %v", err)
	}
}

// -----------------------------------------------------------------------------

// setupApp builds storage, transport and the stores from config
func setupApp(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) (*App, error) {
	db, err := setupDatabase(ctx, config, appLogger)
	if err != nil {
		return nil, err
	}

	selected, err := storage.NewLocalStorage(ctx, db, utils.SelectedCurrencyKey, config.Display.DefaultCurrency, logger.NewLogger(config, "LocalStorage"))
	if err != nil {
		appLogger.Critical("Failed to open selected currency storage: %v", err)
		db.Close()
		return nil, err
	}

	client := network.NewRequestClientFromConfig(config, logger.NewLogger(config, "RequestClient"))
	probe, stopProbe := setupConnectivity(ctx, config, appLogger)
	registry := helpers.NewErrorRegistry(probe, logger.NewLogger(config, "ErrorRegistry"))

	currencies := stores.NewCurrencyStore(client, config.Endpoints.CurrencyURL, selected, registry, logger.NewLogger(config, "CurrencyStore"))

	scheduler := utils.NewPollingScheduler(
		logger.NewLogger(config, "PollingScheduler"),
		utils.WithCountdownInterval(time.Duration(config.Polling.CountdownIntervalMs)*time.Millisecond),
	)
	market := stores.NewMarketStore(client, config.Endpoints.MarketURL, currencies, scheduler, logger.NewLogger(config, "MarketStore"),
		stores.WithRegistry(registry),
		stores.WithHistory(setupHistory(config, appLogger)),
		stores.WithLocale(setupLocale(config, appLogger)),
	)

	return &App{
		DB:        db,
		Client:    client,
		Probe:     probe,
		Registry:  registry,
		Store:     stores.NewCryptoStore(currencies, market, registry),
		Logger:    appLogger,
		stopProbe: stopProbe,
	}, nil
}

// -----------------------------------------------------------------------------

// setupDatabase opens the key-value backend named in config
func setupDatabase(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) (interfaces.IKeyValueStore, error) {
	dbLogger := logger.NewLogger(config, "Storage")
	db, err := storage.Open(ctx, config, dbLogger)
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
		return nil, err
	}
	appLogger.Info("Storage backend: %s", config.Storage.DBType)
	return db, nil
}

// -----------------------------------------------------------------------------

// setupConnectivity starts the HTTP probe when enabled, otherwise reports
// always online
func setupConnectivity(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) (interfaces.IConnectivityProbe, func()) {
	if !config.Connectivity.Enabled {
		return helpers.NewManualProbe(true), nil
	}

	probe := helpers.NewHTTPConnectivityProbe(
		config.Connectivity.ProbeURL,
		time.Duration(config.Connectivity.IntervalSeconds)*time.Second,
		logger.NewLogger(config, "ConnectivityProbe"),
	)
	if err := probe.Start(ctx); err != nil {
		appLogger.Warning("Connectivity probe disabled: %v", err)
		return helpers.NewManualProbe(true), nil
	}
	return probe, probe.Stop
}

// -----------------------------------------------------------------------------

// setupHistory sizes the price history ring buffers
func setupHistory(config *models.MConfig, appLogger *logger.Logger) *utils.MemoryManager {
	memLimit := config.History.MaxMemoryMB
	if memLimit == 0 {
		memLimit = helpers.RecommendedHistoryMemoryMB(appLogger)
	}
	appLogger.Info("History memory limit set to: %d MB (%d points per pair)", memLimit, config.History.MaxPoints)
	return utils.NewMemoryManager(memLimit, config.History.MaxPoints, logger.NewLogger(config, "MemoryManager"))
}

// setupLocale resolves the collation locale for name sorting
func setupLocale(config *models.MConfig, appLogger *logger.Logger) language.Tag {
	tag, err := language.Parse(config.Display.LocaleTag)
	if err != nil {
		appLogger.Warning("Invalid locale %q, using English collation: %v", config.Display.LocaleTag, err)
		return language.English
	}
	return tag
}

// -----------------------------------------------------------------------------

// performInitialLoad fetches the directory and first snapshot, then starts
// polling when configured to
func performInitialLoad(ctx context.Context, app *App, config *models.MConfig, appLogger *logger.Logger) {
	appLogger.Info("Fetching initial data...")

	loadCtx, cancel := context.WithTimeout(ctx, utils.APITimeout*utils.RetryAttempts+5*time.Second)
	defer cancel()

	if !app.Store.Refresh(loadCtx) {
		if err := app.Store.Error(); err != nil {
			appLogger.Warning("Initial load completed with errors: %v", err)
		}
	} else {
		appLogger.Info("Initialization complete. %d pairs for %s.", len(app.Store.FilteredMarketData()), app.Store.SelectedCurrency())
	}

	if config.Polling.AutoStart {
		interval := time.Duration(config.Polling.IntervalMs) * time.Millisecond
		if err := app.Store.StartAutoRefresh(interval); err != nil {
			appLogger.Error("Failed to start polling: %v", err)
			return
		}
		appLogger.Info("Polling every %v", interval)
	}
}
