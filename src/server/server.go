package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/stores"

	"github.com/gin-gonic/gin"
)

// coalesceWindow batches bursts of store notifications into one broadcast
const coalesceWindow = 50 * time.Millisecond

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	engine   *gin.Engine
	store    *stores.CryptoStore
	registry *helpers.ErrorRegistry
	http     *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MDashboardState
	register   chan *Client
	unregister chan *Client
	changed    chan struct{}

	// Local cache
	latestState *models.MDashboardState
	stateMutex  sync.RWMutex

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	refreshMu sync.Mutex // orders refresh wg.Add against Stop's cancel
	startOnce sync.Once
	unwatch   func()
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, store *stores.CryptoStore, registry *helpers.ErrorRegistry, log *logger.Logger) *DashboardServer {
	if cfg.LogLevel != "DEBUG" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &DashboardServer{
		Config:     cfg,
		Logger:     log,
		engine:     gin.New(),
		store:      store,
		registry:   registry,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MDashboardState, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		changed:    make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.engine.Use(gin.Recovery())
	if cfg.LogLevel == "DEBUG" {
		s.engine.Use(gin.Logger())
	}

	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for httptest
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)

	api.GET("/currencies", s.getCurrencies)
	api.POST("/currencies/refresh", s.refreshCurrencies)
	api.PUT("/currency", s.changeCurrency)

	api.GET("/market", s.getMarket)
	api.POST("/market/refresh", s.refreshMarket)
	api.PUT("/market/view", s.updateView)

	api.GET("/crypto/:primary", s.getCrypto)
	api.POST("/crypto/:primary/tooltip", s.getTooltip)

	api.GET("/errors", s.getErrors)
	api.DELETE("/errors/:key", s.deleteError)
	api.DELETE("/errors", s.clearErrors)

	api.GET("/polling", s.getPolling)
	api.POST("/polling/start", s.startPolling)
	api.POST("/polling/stop", s.stopPolling)

	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Run starts the hub and the store watcher without listening; Start calls it
func (s *DashboardServer) Run() {
	s.startOnce.Do(func() {
		s.unwatch = s.store.Subscribe(func(string) {
			select {
			case s.changed <- struct{}{}:
			default:
			}
		})

		s.wg.Add(2)
		go s.handleWebsockets()
		go s.watchStore()
	})
}

func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)

	s.Run()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop(ctx context.Context) error {
	if s.unwatch != nil {
		s.unwatch()
	}

	err := s.http.Shutdown(ctx)

	s.refreshMu.Lock()
	s.cancel()
	s.refreshMu.Unlock()

	s.wg.Wait()
	return err
}

// -----------------------------------------------------------------------------

// watchStore turns store notifications into coalesced UPDATE broadcasts
func (s *DashboardServer) watchStore() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.changed:
		}

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(coalesceWindow):
		}

		// notifications that arrived during the window are covered by this snapshot
		select {
		case <-s.changed:
		default:
		}

		state := s.store.Snapshot(models.StateUpdate)
		s.Broadcast(&state)
	}
}

// ConnectionCount returns the number of connected views
func (s *DashboardServer) ConnectionCount() int {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return len(s.clients)
}
