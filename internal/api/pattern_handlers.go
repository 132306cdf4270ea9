package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/gin-gonic/gin"
)

// maxDetectTransactions bounds one ad-hoc detection request.
const maxDetectTransactions = 50000

// scanTimeout bounds a batch sweep over all critical wallets.
const scanTimeout = 30 * time.Second

type detectRequest struct {
	Transactions []detectTransaction `json:"transactions"`
	ThresholdMs  *int64              `json:"thresholdMs"`
	Enabled      *bool               `json:"enabled"`
}

// detectTransaction is a submitted record. Kinds stay raw strings so one
// unreadable record is skipped by the detector instead of failing the call.
type detectTransaction struct {
	ID          string `json:"id"`
	Hash        string `json:"hash"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	From        string `json:"from"`
	To          string `json:"to"`
	Timestamp   string `json:"timestamp"`
	Status      string `json:"status"`
	Fee         string `json:"fee"`
	BlockNumber int64  `json:"blockNumber"`
}

func (d detectTransaction) toModel() models.Transaction {
	dir, err := models.ParseDirection(d.Type)
	if err != nil {
		dir = models.Direction(d.Type)
	}
	return models.Transaction{
		ID:          d.ID,
		Hash:        d.Hash,
		Direction:   dir,
		Amount:      d.Amount,
		Currency:    d.Currency,
		From:        d.From,
		To:          d.To,
		Timestamp:   d.Timestamp,
		Status:      models.TxStatus(d.Status),
		Fee:         d.Fee,
		BlockNumber: d.BlockNumber,
	}
}

// POST /api/v1/patterns/detect
// { "transactions": [...], "thresholdMs": 60000, "enabled": true }
// Runs the layering detector over a submitted history. Omitted options come
// from the current settings. No scan policy applies here.
func (h *APIHandler) handleDetectPatterns(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(req.Transactions) > maxDetectTransactions {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many transactions", "max": maxDetectTransactions})
		return
	}

	opts := heuristics.LayeringOptionsFromSettings(h.State.Settings())
	if req.ThresholdMs != nil {
		if *req.ThresholdMs > models.MaxLayeringThresholdMs {
			c.JSON(http.StatusBadRequest, gin.H{"error": "thresholdMs too large", "max": models.MaxLayeringThresholdMs})
			return
		}
		opts.Threshold = heuristics.ThresholdFromMillis(*req.ThresholdMs)
	}
	if req.Enabled != nil {
		opts.Enabled = *req.Enabled
	}

	txs := make([]models.Transaction, len(req.Transactions))
	for i, d := range req.Transactions {
		txs[i] = d.toModel()
	}

	matches, err := heuristics.DetectLayeringContext(c.Request.Context(), txs, opts)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Detection cancelled", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, heuristics.NewLayeringReport("", opts.Enabled, matches, opts))
}

// POST /api/v1/patterns/scan
// Sweeps every critical wallet for layering in parallel and raises alerts for
// new findings.
func (h *APIHandler) handleScanPatterns(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), scanTimeout)
	defer cancel()

	wallets, err := h.Source.ListWallets(ctx)
	if err != nil {
		sourceError(c, err)
		return
	}

	byID := make(map[string]models.Wallet)
	var histories []heuristics.WalletHistory
	for _, w := range wallets {
		if !heuristics.ShouldScanForLayering(w.RiskScore) {
			continue
		}
		txs, err := h.Source.ListTransactions(ctx, w.ID)
		if err != nil {
			sourceError(c, err)
			return
		}
		byID[w.ID] = w
		histories = append(histories, heuristics.WalletHistory{WalletID: w.ID, Transactions: txs})
	}

	settings := h.State.Settings()
	opts := heuristics.LayeringOptionsFromSettings(settings)
	reports, err := heuristics.ScanWallets(ctx, histories, opts, settings.MaxConcurrent)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "Layering scan failed", "details": err.Error()})
		return
	}

	total, alerted := 0, 0
	for id, r := range reports {
		total += r.PatternCount
		if _, raised := h.Alerts.EmitLayeringAlert(byID[id], r); raised {
			alerted++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"walletsScanned": len(reports),
		"patternCount":   total,
		"alertsRaised":   alerted,
		"reports":        reports,
	})
}
