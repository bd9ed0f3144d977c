package server

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"trade-brain/src/logger"
	"trade-brain/src/models"
	"trade-brain/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// MonitorServer
//
// Read-only observability surface next to the TCP protocol: REST endpoints
// for health/config/metrics and a websocket hub pushing a state snapshot on
// every FEED_DATA/PREDICT/TRAIN. It implements interfaces.IStatePublisher.
// -----------------------------------------------------------------------------

type MonitorServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	// WebSocket clients
	clients     map[*Client]struct{}
	clientCount int64
	broadcast   chan *models.MMonitorState // Strongly typed and Buffered Queue
	register    chan *Client
	unregister  chan *Client

	// Local cache
	latestState *models.MMonitorState
	stateMutex  sync.RWMutex

	calendar  *utils.TradingCalendar
	startedAt time.Time
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewMonitorServer(cfg *models.MConfig, log *logger.Logger) *MonitorServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &MonitorServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel so publishers never block on slow fan-out
		broadcast:  make(chan *models.MMonitorState, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MMonitorState{
			Type:           "INITIAL",
			WindowCapacity: cfg.Model.InputWindow,
		},
		calendar:  utils.NewTradingCalendar(cfg.Monitor.MarketMIC),
		startedAt: time.Now(),
	}

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *MonitorServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/metrics", s.getMetrics)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *MonitorServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Monitor.Host, s.Config.Monitor.Port)
	s.Logger.Info("Starting monitor on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Handler exposes the route tree for tests and embedding.
func (s *MonitorServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// IStatePublisher
// -----------------------------------------------------------------------------

// Publish queues a state snapshot for the hub. Non-blocking: if the queue
// is full the snapshot is dropped, a newer one is always right behind it.
func (s *MonitorServer) Publish(state models.MMonitorState) {
	state.Type = "UPDATE"

	select {
	case s.broadcast <- &state:
	default:
		s.Logger.Debug("Monitor queue full, dropping snapshot")
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *MonitorServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	latest := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":         "ok",
		"connections":    atomic.LoadInt64(&s.clientCount),
		"latest_update":  latest,
		"market_open":    s.calendar.IsOpenOnMinute(time.Now()),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	})
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"input_window":    s.Config.Model.InputWindow,
		"predict_horizon": s.Config.Model.PredictHorizon,
		"predict_stride":  s.Config.Model.PredictStride,
		"output_steps":    s.Config.Model.OutputSteps(),
		"time_features":   s.Config.Model.TimeFeatures,
	})
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getMetrics(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(200, s.latestState)
}
