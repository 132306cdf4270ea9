package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWalletsCSV(t *testing.T) {
	wallets := []models.Wallet{
		{
			ID:        "1",
			Address:   "0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1",
			Chain:     models.ChainETH,
			RiskScore: 92,
			Category:  models.CategoryScam,
			TxCount:   1247,
			FirstSeen: time.Date(2024, 3, 15, 8, 22, 0, 0, time.UTC),
			LastSeen:  time.Date(2025, 12, 6, 14, 30, 0, 0, time.UTC),
			Sources:   []string{"BitcoinAbuse", "ScamAlert.io"},
			PII:       []models.PII{{Kind: "name", Value: "Rajesh Kumar"}},
			Metadata:  models.WalletMetadata{TotalValue: "$2.4M"},
		},
		{ID: "2", Address: "bc1qxy", Chain: models.ChainBTC, Category: models.CategoryMixer, Metadata: models.WalletMetadata{TotalValue: "$1,200"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWalletsCSV(&buf, wallets))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Address,Chain,Risk Score,Category,Total Value,TX Count,First Seen,Last Seen,Sources,PII Count", lines[0])
	assert.Equal(t, "0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1,ETH,92,scam,$2.4M,1247,2024-03-15T08:22:00Z,2025-12-06T14:30:00Z,BitcoinAbuse; ScamAlert.io,1", lines[1])
	assert.Equal(t, `bc1qxy,BTC,0,mixer,"$1,200",0,,,,0`, lines[2])
}

func TestWriteWalletsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWalletsCSV(&buf, nil))
	assert.Equal(t, strings.Join(WalletHeader, ",")+"\n", buf.String())
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 12, 6, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "high-risk-wallets-report-2025-12-06.csv", Filename("High Risk Wallets Report", now))
	assert.Equal(t, "case-lockbit-ransomware-2025-12-06.csv", Filename("case LockBit/Ransomware", now))
	assert.Equal(t, "report-2025-12-06.csv", Filename("  ", now))
}

func TestBuildEvidence(t *testing.T) {
	now := time.Date(2025, 12, 6, 12, 0, 0, 0, time.UTC)
	w := models.Wallet{
		OSINTSnippet: "seen in a Telegram pump group",
		Sources:      []string{"FBI IC3", "Reddit r/CryptoScams", "BitcoinAbuse", "Telegram Reports"},
	}

	items := BuildEvidence(w, now)
	require.Len(t, items, 4)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, sourceReports["FBI IC3"][0], items[0].Snippet)
	assert.Equal(t, []string{"federal investigation", "ransomware"}, items[0].Highlights)
	assert.Equal(t, "https://fbiic3.com", items[0].URL)
	assert.Equal(t, CredibilityHigh, items[0].Credibility)

	assert.Equal(t, sourceReports["Reddit r/CryptoScams"][1], items[1].Snippet)
	assert.Equal(t, []string{"community report", "victim testimony"}, items[1].Highlights)
	assert.Equal(t, CredibilityHigh, items[1].Credibility)

	assert.Equal(t, sourceReports["BitcoinAbuse"][2], items[2].Snippet)
	assert.Equal(t, CredibilityMedium, items[2].Credibility)
	assert.Equal(t, now.Add(-48*time.Hour), items[2].Timestamp)

	assert.Equal(t, w.OSINTSnippet, items[3].Snippet)
	assert.Equal(t, []string{"scam alert", "fraud pattern"}, items[3].Highlights)
}
