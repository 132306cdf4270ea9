package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cacsx/intel-engine/internal/chain"
	"github.com/cacsx/intel-engine/internal/graph"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/internal/report"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/wallets?minRisk=75&category=scam&chain=ETH
func (h *APIHandler) handleListWallets(c *gin.Context) {
	minRisk := 0
	if v := c.Query("minRisk"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minRisk must be an integer between 0 and 100"})
			return
		}
		minRisk = n
	}

	var category models.Category
	if v := c.Query("category"); v != "" {
		parsed, err := models.ParseCategory(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category = parsed
	}

	var chainFilter models.Chain
	if v := c.Query("chain"); v != "" {
		parsed, err := models.ParseChain(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		chainFilter = parsed
	}

	wallets, err := h.Source.ListWallets(c.Request.Context())
	if err != nil {
		sourceError(c, err)
		return
	}

	filtered := make([]models.Wallet, 0, len(wallets))
	for _, w := range wallets {
		if w.RiskScore < minRisk {
			continue
		}
		if category != "" && w.Category != category {
			continue
		}
		if chainFilter != "" && w.Chain != chainFilter {
			continue
		}
		filtered = append(filtered, w)
	}

	c.JSON(http.StatusOK, gin.H{"data": filtered, "totalCount": len(filtered)})
}

// GET /api/v1/wallets/high-risk
// Wallets at or above the configured high-risk threshold.
func (h *APIHandler) handleHighRiskWallets(c *gin.Context) {
	wallets, err := h.highRiskWallets(c.Request.Context())
	if err != nil {
		sourceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       wallets,
		"totalCount": len(wallets),
		"threshold":  h.State.Settings().HighRiskThreshold,
	})
}

func (h *APIHandler) highRiskWallets(ctx context.Context) ([]models.Wallet, error) {
	wallets, err := h.Source.ListWallets(ctx)
	if err != nil {
		return nil, err
	}
	threshold := h.State.Settings().HighRiskThreshold
	out := make([]models.Wallet, 0, len(wallets))
	for _, w := range wallets {
		if w.RiskScore >= threshold {
			out = append(out, w)
		}
	}
	return out, nil
}

func (h *APIHandler) handleGetWallet(c *gin.Context) {
	w, err := h.Source.GetWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		sourceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet":    w,
		"riskLevel": heuristics.ClassifyRisk(w.RiskScore),
		"watched":   h.Watchlist.Contains(w.Address),
	})
}

// walletAnalysis is a wallet with its history and the layering scan result.
type walletAnalysis struct {
	wallet   models.Wallet
	txs      []models.Transaction
	layering heuristics.LayeringReport
}

// analyzeWallet loads a wallet's history and runs the layering detector when
// the scan policy allows it. A non-empty result raises an alert.
func (h *APIHandler) analyzeWallet(ctx context.Context, id string) (walletAnalysis, error) {
	w, err := h.Source.GetWallet(ctx, id)
	if err != nil {
		return walletAnalysis{}, err
	}
	txs, err := h.Source.ListTransactions(ctx, id)
	if err != nil {
		return walletAnalysis{}, err
	}

	opts := heuristics.LayeringOptionsFromSettings(h.State.Settings())
	scanned := opts.Enabled && heuristics.ShouldScanForLayering(w.RiskScore)
	matches := heuristics.MatchSet{}
	if scanned {
		matches, err = heuristics.DetectLayeringContext(ctx, txs, opts)
		if err != nil {
			return walletAnalysis{}, err
		}
	}

	layering := heuristics.NewLayeringReport(w.ID, scanned, matches, opts)
	h.Alerts.EmitLayeringAlert(w, layering)
	return walletAnalysis{wallet: w, txs: txs, layering: layering}, nil
}

// GET /api/v1/wallets/:id/transactions
// The wallet's history plus the layering pairs found in it. Only critical
// wallets are scanned; for the rest "scanned" is false and matches is empty.
func (h *APIHandler) handleWalletTransactions(c *gin.Context) {
	a, err := h.analyzeWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		sourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walletId":      a.wallet.ID,
		"transactions":  a.txs,
		"matches":       a.layering.Matches,
		"pairs":         a.layering.Pairs,
		"patternCount":  a.layering.PatternCount,
		"scanned":       a.layering.Scanned,
		"thresholdMs":   a.layering.ThresholdMs,
		"watchlistHits": h.Watchlist.CheckTransactions(a.txs),
	})
}

// GET /api/v1/wallets/:id/transactions/:hash
// One transfer from the wallet's history and the transfers it pairs with.
func (h *APIHandler) handleWalletTransaction(c *gin.Context) {
	a, err := h.analyzeWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		sourceError(c, err)
		return
	}

	hash := c.Param("hash")
	if err := chain.ValidateTxHash(a.wallet.Chain, hash); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, tx := range a.txs {
		if strings.EqualFold(tx.Hash, hash) {
			c.JSON(http.StatusOK, gin.H{
				"transaction": tx,
				"partners":    a.layering.Matches.Partners(tx.ID),
			})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
}

// GET /api/v1/wallets/:id/assessment
func (h *APIHandler) handleWalletAssessment(c *gin.Context) {
	a, err := h.analyzeWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		sourceError(c, err)
		return
	}

	hits := h.Watchlist.CheckTransactions(a.txs)
	assessment := heuristics.AssessWallet(a.wallet, a.layering.Matches, hits)
	c.JSON(http.StatusOK, heuristics.WithActivity(assessment, heuristics.ProfileActivity(a.txs)))
}

// GET /api/v1/wallets/:id/graph
// The relationship network around a wallet. When a graph database is
// configured the network is also merged into it.
func (h *APIHandler) handleWalletGraph(c *gin.Context) {
	a, err := h.analyzeWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		sourceError(c, err)
		return
	}

	net := graph.BuildWalletNetwork(a.wallet, a.txs, a.layering.Matches)
	if h.Graph != nil {
		if err := h.Graph.SyncWallet(c.Request.Context(), a.wallet.ID, net); err != nil {
			log.Printf("[Graph] Sync of wallet %s failed: %v", a.wallet.ID, err)
		}
	}
	c.JSON(http.StatusOK, net)
}

// GET /api/v1/wallets/:id/related
// Wallets sharing PII with this one, as recorded in the graph database.
func (h *APIHandler) handleRelatedWallets(c *gin.Context) {
	if h.Graph == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph database not connected"})
		return
	}

	w, err := h.Source.GetWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		sourceError(c, err)
		return
	}
	related, err := h.Graph.RelatedByPII(c.Request.Context(), w.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query graph", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": w.Address, "related": related})
}

// GET /api/v1/wallets/:id/evidence
func (h *APIHandler) handleWalletEvidence(c *gin.Context) {
	w, err := h.Source.GetWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		sourceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"walletId": w.ID, "evidence": report.BuildEvidence(w, time.Now())})
}
