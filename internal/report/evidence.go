package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
)

// Credibility rates how far an evidence item can be trusted.
type Credibility string

const (
	CredibilityHigh   Credibility = "high"
	CredibilityMedium Credibility = "medium"
	CredibilityLow    Credibility = "low"
)

// EvidenceItem is one source's report about a wallet, as shown on the
// evidence timeline.
type EvidenceItem struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	Snippet     string      `json:"snippet"`
	Timestamp   time.Time   `json:"timestamp"`
	Credibility Credibility `json:"credibility"`
	URL         string      `json:"url"`
	Highlights  []string    `json:"highlights"`
}

var sourceReports = map[string][]string{
	"BitcoinAbuse": {
		"Reported for investment fraud scheme targeting elderly victims with promises of 300% returns",
		"Multiple victims reported losing funds to fake crypto exchange operated by this address",
		"Address linked to romance scam operation collecting funds from dating app victims",
		"Pig butchering scam wallet - victim reported 6-month relationship before fund loss",
		"Address received funds from victims of fake ICO promising revolutionary DeFi protocol",
	},
	"ScamAlert.io": {
		"Multiple user reports indicating this address received funds from known phishing campaigns targeting DeFi users",
		"Address flagged for impersonating official Binance support on social media platforms",
		"Wallet associated with fake airdrop scam that collected gas fees from thousands of victims",
		"Reported as destination for funds stolen via malicious smart contract approval",
		"Address linked to rug pull project that drained liquidity pool of $2.5M",
	},
	"Reddit r/CryptoScams": {
		"Community member reported losing $15,000 after being directed to this wallet by a fake customer support agent on Telegram",
		"User shared evidence of this address being promoted in pump-and-dump Discord group",
		"Multiple Redditors identified this wallet as part of coordinated social engineering attack",
		"Address posted in scam alert thread - connected to fake crypto mining operation",
		"Community investigation revealed this address received funds from 47 confirmed victims",
	},
	"FBI IC3": {
		"Identified as LockBit 3.0 ransom collection address in federal investigation report",
		"Address listed in active investigation of international cybercrime syndicate",
		"Flagged in money laundering investigation - suspected terrorist financing links",
		"Part of ongoing federal case involving crypto ATM fraud network",
	},
	"Chainalysis Reactor": {
		"High-risk address with direct exposure to sanctioned entities",
		"Traced funds to known darknet marketplace wallets",
		"Address shows pattern consistent with professional money laundering operation",
		"Mixer interaction detected - funds traced to ransomware collection wallet",
	},
}

// BuildEvidence lists one evidence item per reporting source, newest first:
// the i-th source is dated i days before now. The first two sources rank
// high credibility, the rest medium. Sources without canned reports fall
// back to the wallet's OSINT snippet.
func BuildEvidence(w models.Wallet, now time.Time) []EvidenceItem {
	items := make([]EvidenceItem, 0, len(w.Sources))
	for i, src := range w.Sources {
		snippet := w.OSINTSnippet
		if reports := sourceReports[src]; len(reports) > 0 {
			snippet = reports[i%len(reports)]
		}

		cred := CredibilityMedium
		if i < 2 {
			cred = CredibilityHigh
		}

		items = append(items, EvidenceItem{
			ID:          strconv.Itoa(i + 1),
			Source:      src,
			Snippet:     snippet,
			Timestamp:   now.Add(-time.Duration(i) * 24 * time.Hour).UTC(),
			Credibility: cred,
			URL:         "https://" + strings.ToLower(strings.Join(strings.Fields(src), "")) + ".com",
			Highlights:  highlightsFor(src),
		})
	}
	return items
}

func highlightsFor(source string) []string {
	switch {
	case strings.Contains(source, "FBI"):
		return []string{"federal investigation", "ransomware"}
	case strings.Contains(source, "Reddit"):
		return []string{"community report", "victim testimony"}
	default:
		return []string{"scam alert", "fraud pattern"}
	}
}
