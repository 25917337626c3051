package main

import (
	"flag"
	"fmt"
	"os"

	"market-dashboard/src/logger"
	"market-dashboard/src/stores"

	"github.com/gin-gonic/gin"
)

// mockapi serves the currency and market endpoints with random walk prices so
// the dashboard can run without the hosted mock service.
func main() {
	port := flag.Int("port", 8090, "listen port")
	seed := flag.Uint64("seed", 42, "random walk seed")
	flag.Parse()

	appLogger := logger.NewLogger(nil, "MockAPI")
	gin.SetMode(gin.ReleaseMode)

	market := newMockMarket(*seed, defaultBasePrices)
	engine := newRouter(market, stores.StaticCurrencies())

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	appLogger.Info("Serving mock currency and market endpoints on http://%s", addr)
	appLogger.Info("Point endpoints.currency_url at /api/currency and endpoints.market_url at /api/market")
	if err := engine.Run(addr); err != nil {
		appLogger.Error("Mock API failed: %v", err)
		os.Exit(1)
	}
}
