package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cacsx/intel-engine/internal/chain"
	"github.com/cacsx/intel-engine/internal/feed"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/internal/report"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/gin-gonic/gin"
)

// ════════════════════════════════════════════════════════════════════
// Case File and Watchlist Handlers
// ════════════════════════════════════════════════════════════════════

// caseError maps a case manager failure to a response.
func caseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, heuristics.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
	case errors.Is(err, models.ErrUnknownValue), errors.Is(err, heuristics.ErrInvalidCase):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update case", "details": err.Error()})
	}
}

// GET /api/v1/cases?status=open
func (h *APIHandler) handleListCases(c *gin.Context) {
	var status models.CaseStatus
	if v := c.Query("status"); v != "" {
		parsed, err := models.ParseCaseStatus(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = parsed
	}
	cases := h.Cases.List(status)
	c.JSON(http.StatusOK, gin.H{"data": cases, "totalCount": len(cases)})
}

// POST /api/v1/cases
// Opens a case. Its wallets are added to the watchlist.
func (h *APIHandler) handleCreateCase(c *gin.Context) {
	var req heuristics.NewCase
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if unknown := h.unknownWallets(c.Request.Context(), req.Wallets); len(unknown) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown wallets", "wallets": unknown})
		return
	}

	cf, err := h.Cases.Create(c.Request.Context(), req)
	if err != nil {
		caseError(c, err)
		return
	}
	h.watchCase(c.Request.Context(), cf)

	c.JSON(http.StatusCreated, gin.H{"status": "created", "case": cf})
}

// GET /api/v1/cases/:id
// The case with its timeline.
func (h *APIHandler) handleGetCase(c *gin.Context) {
	cf, err := h.Cases.Get(c.Param("id"))
	if err != nil {
		caseError(c, err)
		return
	}
	timeline, _ := h.Cases.Timeline(cf.ID)
	c.JSON(http.StatusOK, gin.H{"case": cf, "timeline": timeline})
}

// PATCH /api/v1/cases/:id
// { "status": "investigating", "notes": "...", "attachWallets": ["3"] }
func (h *APIHandler) handleUpdateCase(c *gin.Context) {
	var req heuristics.CaseUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if unknown := h.unknownWallets(c.Request.Context(), req.AttachWallets); len(unknown) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown wallets", "wallets": unknown})
		return
	}

	cf, err := h.Cases.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		caseError(c, err)
		return
	}
	if len(req.AttachWallets) > 0 {
		h.watchCase(c.Request.Context(), cf)
	}
	c.JSON(http.StatusOK, cf)
}

// POST /api/v1/cases/:id/evidence { "item": "Exchange KYC response" }
func (h *APIHandler) handleAddEvidence(c *gin.Context) {
	var req struct {
		Item string `json:"item" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: item is required"})
		return
	}

	cf, err := h.Cases.AddEvidence(c.Request.Context(), c.Param("id"), req.Item)
	if err != nil {
		caseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cf)
}

// GET /api/v1/cases/:id/report.csv
func (h *APIHandler) handleCaseReport(c *gin.Context) {
	cf, err := h.Cases.Get(c.Param("id"))
	if err != nil {
		caseError(c, err)
		return
	}

	wallets := make([]models.Wallet, 0, len(cf.Wallets))
	for _, id := range cf.Wallets {
		w, err := h.Source.GetWallet(c.Request.Context(), id)
		if errors.Is(err, feed.ErrNotFound) {
			continue
		}
		if err != nil {
			sourceError(c, err)
			return
		}
		wallets = append(wallets, w)
	}
	writeCSV(c, report.Filename("case "+cf.Name, time.Now()), wallets)
}

func (h *APIHandler) unknownWallets(ctx context.Context, ids []string) []string {
	var unknown []string
	for _, id := range ids {
		if _, err := h.Source.GetWallet(ctx, id); err != nil {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// watchCase puts a case's wallets on the watchlist.
func (h *APIHandler) watchCase(ctx context.Context, cf models.CaseFile) {
	added := h.Watchlist.LoadFromCase(cf, func(id string) (models.Wallet, bool) {
		w, err := h.Source.GetWallet(ctx, id)
		return w, err == nil
	})
	if added > 0 {
		log.Printf("[Watchlist] Watching %d wallet(s) from case %s", added, cf.ID)
	}
}

func (h *APIHandler) handleListWatchlist(c *gin.Context) {
	entries := h.Watchlist.ListAll()
	c.JSON(http.StatusOK, gin.H{"data": entries, "totalCount": len(entries)})
}

type watchRequest struct {
	Address    string          `json:"address" binding:"required"`
	Chain      models.Chain    `json:"chain"`
	Category   models.Category `json:"category"`
	Label      string          `json:"label"`
	Role       string          `json:"role"` // theft/sanctioned/suspect/exchange/service
	CaseID     string          `json:"caseId"`
	AlertLevel models.Severity `json:"alertLevel"`
}

// POST /api/v1/watchlist
// The address must be valid for its chain; without a chain it must be
// recognisable as one of the monitored chains.
func (h *APIHandler) handleAddWatchlist(c *gin.Context) {
	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Chain == "" {
		detected, ok := chain.DetectChain(req.Address)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unrecognised address format"})
			return
		}
		req.Chain = detected
	} else if err := chain.ValidateAddress(req.Chain, req.Address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Category == "" {
		req.Category = models.CategoryUnknown
	}
	if req.AlertLevel == "" {
		req.AlertLevel = models.SeverityHigh
		if req.Role != "" {
			req.AlertLevel = heuristics.SeverityForRole(req.Role)
		}
	}

	h.Watchlist.Add(req.Address, req.Category, req.Label, req.CaseID, req.AlertLevel)
	entry, _ := h.Watchlist.Get(req.Address)
	c.JSON(http.StatusCreated, gin.H{"chain": req.Chain, "entry": entry})
}

// DELETE /api/v1/watchlist/:address
func (h *APIHandler) handleRemoveWatchlist(c *gin.Context) {
	if !h.Watchlist.Remove(c.Param("address")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not on watchlist"})
		return
	}
	c.Status(http.StatusNoContent)
}
