package api

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/internal/report"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
)

const defaultAlertLimit = 50

// GET /api/v1/alerts?severity=high&type=layering-pattern&limit=20
// severity is a minimum: "high" also returns critical alerts.
func (h *APIHandler) handleListAlerts(c *gin.Context) {
	var f heuristics.AlertFilter
	var err error

	if v := c.Query("severity"); v != "" {
		if f.MinSeverity, err = models.ParseSeverity(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if v := c.Query("type"); v != "" {
		if f.Type, err = models.ParseAlertType(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	f.Limit = defaultAlertLimit
	if v := c.Query("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil || f.Limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
	}

	alerts := h.Alerts.GetAlerts(f)
	c.JSON(http.StatusOK, gin.H{"data": alerts, "totalCount": len(alerts)})
}

func (h *APIHandler) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":    h.State.Stats(),
		"lastScan": h.State.LastScan(),
	})
}

func (h *APIHandler) handleScanState(c *gin.Context) {
	c.JSON(http.StatusOK, h.State.ScanState())
}

// POST /api/v1/scan/start
func (h *APIHandler) handleStartScan(c *gin.Context) {
	h.setScanning(c, true)
}

// POST /api/v1/scan/stop
func (h *APIHandler) handleStopScan(c *gin.Context) {
	h.setScanning(c, false)
}

func (h *APIHandler) setScanning(c *gin.Context, on bool) {
	if err := h.State.SetScanning(on); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update scan state", "details": err.Error()})
		return
	}
	state := "off"
	if on {
		state = "on"
	}
	log.Printf("[Scan] Scanning switched %s", state)
	c.JSON(http.StatusOK, h.State.ScanState())
}

func (h *APIHandler) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.State.Settings())
}

// PATCH /api/v1/settings
// Partial update: only the fields present in the body change, including
// individual alert toggles ({"alerts": {"pii": false}}). Unknown fields are
// rejected.
func (h *APIHandler) handleUpdateSettings(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	settings := h.State.Settings()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &settings,
		ErrorUnused: true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := decoder.Decode(patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings: " + err.Error()})
		return
	}
	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.State.SaveSettings(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings", "details": err.Error()})
		return
	}

	log.Printf("[Settings] Updated: layering=%v threshold=%dms interval=%ds",
		settings.LayeringEnabled, settings.LayeringThresholdMs, settings.ScanIntervalSec)
	c.JSON(http.StatusOK, settings)
}

// POST /api/v1/assistant { "message": "..." }
func (h *APIHandler) handleAssistant(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message is required"})
		return
	}
	c.JSON(http.StatusOK, h.Assistant.Respond(req.Message))
}

// GET /api/v1/reports/high-risk.csv
func (h *APIHandler) handleHighRiskReport(c *gin.Context) {
	wallets, err := h.highRiskWallets(c.Request.Context())
	if err != nil {
		sourceError(c, err)
		return
	}
	writeCSV(c, report.Filename("high-risk-wallets-report", time.Now()), wallets)
}

func writeCSV(c *gin.Context, filename string, wallets []models.Wallet) {
	var buf bytes.Buffer
	if err := report.WriteWalletsCSV(&buf, wallets); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report", "details": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
