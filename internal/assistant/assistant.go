// Package assistant answers the dashboard chat widget. It recognises wallet
// addresses and a handful of feature questions; everything it says is
// deterministic so the widget can be tested.
package assistant

import (
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/cacsx/intel-engine/internal/chain"
	"github.com/cacsx/intel-engine/pkg/models"
)

// Greeting is the first message the widget shows.
const Greeting = "Welcome to CACS-X Intelligence Assistant. I can analyze cryptocurrency wallets and explain our risk intelligence capabilities. How can I help you today?"

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(0x)?[a-f0-9]{40}$`),
	regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{26,35}$`),
	regexp.MustCompile(`(?i)^bc1[a-z0-9]{39,59}$`),
}

// Intent names what kind of answer a Reply carries.
type Intent string

const (
	IntentWalletAnalysis Intent = "wallet-analysis"
	IntentRiskScoring    Intent = "risk-scoring"
	IntentClustering     Intent = "clustering"
	IntentGraph          Intent = "graph"
	IntentSources        Intent = "sources"
	IntentLayering       Intent = "layering"
	IntentFallback       Intent = "fallback"
)

// WalletAnalysis is the simulated verdict on a pasted address.
type WalletAnalysis struct {
	Address        string       `json:"address"`
	Chain          models.Chain `json:"chain,omitempty"`
	RiskScore      int          `json:"riskScore"`
	RiskCategory   string       `json:"riskCategory"`
	RelatedWallets int          `json:"relatedWallets"`
	Explanation    string       `json:"explanation"`
	RiskFactors    []string     `json:"riskFactors"`
}

type Reply struct {
	Text     string          `json:"text"`
	Intent   Intent          `json:"intent"`
	Analysis *WalletAnalysis `json:"walletAnalysis,omitempty"`
}

type topic struct {
	intent   Intent
	keywords []string
	answer   string
}

var topics = []topic{
	{
		intent:   IntentRiskScoring,
		keywords: []string{"risk scoring", "how does risk", "risk score"},
		answer:   "CACS-X scores every wallet from 0 to 100 by weighing transaction patterns, network connections and historical behaviour. Indicators include mixer usage, transaction velocity and links to known malicious entities. Scores of 90 and above are treated as critical.",
	},
	{
		intent:   IntentClustering,
		keywords: []string{"clustering", "related address", "common ownership"},
		answer:   "Clustering links wallets through graph analysis of transaction flows and common-ownership patterns, so a single operator's addresses can be followed across chains.",
	},
	{
		intent:   IntentGraph,
		keywords: []string{"graph visualization", "network graph", "graph"},
		answer:   "The wallet page draws a relationship graph of the wallet, its attributed PII, the sources that reported it and its busiest counterparties. Counterparties involved in layering are highlighted.",
	},
	{
		intent:   IntentSources,
		keywords: []string{"source reliability", "data sources", "osint"},
		answer:   "Intelligence is aggregated from OSINT feeds such as abuse reports, sanction lists, dark web monitoring and exchange reports. Every finding keeps the list of sources that reported it.",
	},
	{
		intent:   IntentLayering,
		keywords: []string{"layering", "co-occurrence", "pass-through"},
		answer:   "Layering detection looks for an incoming and an outgoing transfer of exactly the same amount recorded within 60 seconds of each other. Critical wallets are scanned automatically and every matched pair raises a layering alert.",
	},
}

var fallbacks = []string{
	"I can help you analyze cryptocurrency wallets and explain CACS-X capabilities. Try pasting a wallet address or asking about a feature.",
	"CACS-X provides cryptocurrency risk intelligence. Which aspect would you like to know more about?",
	"I'm here to assist with wallet analysis and system information. What would you like to explore?",
}

var categoryExplanations = map[string]string{
	"Low":      "This wallet shows normal transaction patterns with minimal risk indicators.",
	"Medium":   "This wallet has some concerning associations that warrant monitoring.",
	"High":     "This wallet demonstrates significant risk factors and connections to suspicious activity.",
	"Critical": "This wallet exhibits critical risk patterns with strong ties to illicit activities.",
}

var categoryFactors = map[string][]string{
	"Low":      {"Low transaction volume", "No mixer interactions", "Clean blockchain history"},
	"Medium":   {"Moderate transaction frequency", "Some high-risk counterparties", "Unusual timing patterns"},
	"High":     {"Frequent mixer usage", "Connections to known bad actors", "Rapid fund movement"},
	"Critical": {"Direct ransomware links", "Extensive mixer network", "Money laundering patterns"},
}

var quartiles = []string{"Low", "Medium", "High", "Critical"}

// Assistant answers chat messages. The zero value is ready to use.
type Assistant struct {
	fallbackTurn atomic.Uint64
}

func New() *Assistant {
	return &Assistant{}
}

// Respond answers one user message.
func (a *Assistant) Respond(input string) Reply {
	input = strings.TrimSpace(input)
	if addr, ok := FindAddress(input); ok {
		analysis := AnalyzeAddress(addr)
		return Reply{Text: "Wallet Analysis Complete", Intent: IntentWalletAnalysis, Analysis: &analysis}
	}

	lower := strings.ToLower(input)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return Reply{Text: t.answer, Intent: t.intent}
			}
		}
	}

	turn := a.fallbackTurn.Add(1) - 1
	return Reply{Text: fallbacks[turn%uint64(len(fallbacks))], Intent: IntentFallback}
}

// FindAddress returns the wallet address in a message: either the whole
// message or its last word, e.g. "Analyze this wallet: 0x742d...".
func FindAddress(input string) (string, bool) {
	candidates := []string{strings.TrimSpace(input)}
	if fields := strings.Fields(input); len(fields) > 1 {
		candidates = append(candidates, strings.Trim(fields[len(fields)-1], ".,;:!?\"'()"))
	}
	for _, c := range candidates {
		if IsAddress(c) {
			return c, true
		}
	}
	return "", false
}

// IsAddress reports whether s looks like an ETH, legacy BTC/TRX or bech32
// address.
func IsAddress(s string) bool {
	for _, re := range addressPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// AnalyzeAddress derives a stable pseudo-analysis from the address text. It
// is a demo stand-in, not a risk model: the same address always gets the
// same answer.
func AnalyzeAddress(address string) WalletAnalysis {
	hash := 0
	for _, r := range address {
		hash += int(r)
	}
	score := hash % 100
	category := quartiles[score/25]

	analysis := WalletAnalysis{
		Address:        address,
		RiskScore:      score,
		RiskCategory:   category,
		RelatedWallets: hash%50 + 1,
		Explanation:    categoryExplanations[category],
		RiskFactors:    append([]string(nil), categoryFactors[category]...),
	}
	if c, ok := chain.DetectChain(address); ok {
		analysis.Chain = c
	}
	return analysis
}
