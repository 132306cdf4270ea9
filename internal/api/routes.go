package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cacsx/intel-engine/internal/assistant"
	"github.com/cacsx/intel-engine/internal/feed"
	"github.com/cacsx/intel-engine/internal/graph"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/internal/store"
	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs. Graph may be nil.
type Deps struct {
	Source    feed.DataSource
	State     *store.StateStore
	Alerts    *heuristics.AlertManager
	Cases     *heuristics.CaseManager
	Watchlist *heuristics.WalletWatchlist
	Assistant *assistant.Assistant
	Graph     *graph.Syncer
	Hub       *Hub

	AuthToken      string
	AllowedOrigins []string
	RateLimitRPM   int
	RateLimitBurst int
	DBConnected    bool
}

type APIHandler struct {
	Deps
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(deps.AllowedOrigins))

	if deps.Assistant == nil {
		deps.Assistant = assistant.New()
	}
	if deps.Watchlist == nil {
		deps.Watchlist = heuristics.NewWalletWatchlist()
	}
	if deps.RateLimitRPM <= 0 {
		deps.RateLimitRPM = 30
	}
	if deps.RateLimitBurst <= 0 {
		deps.RateLimitBurst = 10
	}
	handler := &APIHandler{Deps: deps}
	limiter := NewRateLimiter(deps.RateLimitRPM, deps.RateLimitBurst).Middleware()

	api := r.Group("/api/v1")
	api.Use(mutating(AuthMiddleware(deps.AuthToken)))
	{
		api.GET("/health", handler.handleHealth)
		if deps.Hub != nil {
			api.GET("/stream", deps.Hub.Subscribe)
		}

		api.GET("/wallets", handler.handleListWallets)
		api.GET("/wallets/high-risk", handler.handleHighRiskWallets)
		api.GET("/wallets/:id", handler.handleGetWallet)
		api.GET("/wallets/:id/transactions", handler.handleWalletTransactions)
		api.GET("/wallets/:id/transactions/:hash", handler.handleWalletTransaction)
		api.GET("/wallets/:id/assessment", handler.handleWalletAssessment)
		api.GET("/wallets/:id/graph", handler.handleWalletGraph)
		api.GET("/wallets/:id/related", handler.handleRelatedWallets)
		api.GET("/wallets/:id/evidence", handler.handleWalletEvidence)

		patterns := api.Group("/patterns", limiter)
		patterns.POST("/detect", handler.handleDetectPatterns)
		patterns.POST("/scan", handler.handleScanPatterns)

		api.GET("/alerts", handler.handleListAlerts)
		api.GET("/stats", handler.handleStats)
		api.GET("/scan", handler.handleScanState)
		api.POST("/scan/start", handler.handleStartScan)
		api.POST("/scan/stop", handler.handleStopScan)

		api.GET("/cases", handler.handleListCases)
		api.POST("/cases", handler.handleCreateCase)
		api.GET("/cases/:id", handler.handleGetCase)
		api.PATCH("/cases/:id", handler.handleUpdateCase)
		api.POST("/cases/:id/evidence", handler.handleAddEvidence)
		api.GET("/cases/:id/report.csv", handler.handleCaseReport)

		api.GET("/watchlist", handler.handleListWatchlist)
		api.POST("/watchlist", handler.handleAddWatchlist)
		api.DELETE("/watchlist/:address", handler.handleRemoveWatchlist)

		api.POST("/assistant", limiter, handler.handleAssistant)
		api.GET("/reports/high-risk.csv", handler.handleHighRiskReport)

		api.GET("/settings", handler.handleGetSettings)
		api.PATCH("/settings", handler.handleUpdateSettings)
	}

	return r
}

// corsMiddleware allows the listed origins, or any origin when none are set.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range allowedOrigins {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// handleHealth returns engine status and capabilities for service discovery
func (h *APIHandler) handleHealth(c *gin.Context) {
	graphConnected := false
	if h.Graph != nil {
		graphConnected = h.Graph.Healthy(c.Request.Context()) == nil
	}
	streamClients := 0
	if h.Hub != nil {
		streamClients = h.Hub.Clients()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "CACS-X Intelligence Engine",
		"capabilities": gin.H{
			"layering_detection": true,
			"threat_assessment":  true,
			"case_management":    true,
			"watchlist":          true,
			"relationship_graph": graphConnected,
		},
		"dbConnected":    h.DBConnected,
		"graphConnected": graphConnected,
		"streamClients":  streamClients,
		"scan":           h.State.ScanState(),
	})
}

// sourceError maps a data source failure to a response.
func sourceError(c *gin.Context, err error) {
	if errors.Is(err, feed.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read wallet data", "details": err.Error()})
}
