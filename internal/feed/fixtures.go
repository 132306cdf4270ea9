package feed

import (
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixtureWallet pairs a profiled wallet with the size of its generated history.
type fixtureWallet struct {
	wallet  models.Wallet
	history int
}

func fixtureWallets() []fixtureWallet {
	return []fixtureWallet{
		{history: 50, wallet: models.Wallet{
			ID: "1", Address: "0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1", Chain: models.ChainETH,
			RiskScore: 92, Category: models.CategoryScam, TxCount: 1247,
			LastTx: ts("2025-12-06T14:30:00Z"), FirstSeen: ts("2024-03-15T08:00:00Z"), LastSeen: ts("2025-12-06T14:30:00Z"),
			OSINTSnippet: "Reported on BitcoinAbuse for investment fraud scheme targeting elderly victims...",
			Sources:      []string{"BitcoinAbuse", "ScamAlert.io", "CryptoScamDB", "Twitter Reports"},
			PII: []models.PII{
				{Kind: "name", Value: "Rajesh Kumar"},
				{Kind: "email", Value: "raj***@proton.me"},
				{Kind: "username", Value: "CryptoKing2024"},
				{Kind: "telegram", Value: "@fast_profits_btc"},
			},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"Rapid incoming transfers", "Immediate mixer routing", "Multiple chain hopping"},
				TotalValue:          "$2.4M",
				AssociatedAddresses: 47,
			},
		}},
		{history: 40, wallet: models.Wallet{
			ID: "2", Address: "TLa2f6VPqDgRE67v1736s7bJ8Ray5wYjU7", Chain: models.ChainTRX,
			RiskScore: 88, Category: models.CategoryPhishing, TxCount: 892,
			LastTx: ts("2025-12-05T22:15:00Z"), FirstSeen: ts("2024-06-20T12:00:00Z"), LastSeen: ts("2025-12-05T22:15:00Z"),
			OSINTSnippet: "Associated with fake Binance support phishing campaign on Telegram...",
			Sources:      []string{"PhishTank", "ScamAdviser", "Reddit Reports"},
			PII: []models.PII{
				{Kind: "name", Value: "Priya Sharma"},
				{Kind: "email", Value: "pri***@yahoo.com"},
				{Kind: "phone", Value: "+91-***-***-4521"},
				{Kind: "username", Value: "BinanceSupport_Real"},
			},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"Small test transactions", "Immediate USDT conversion", "CEX deposit patterns"},
				TotalValue:          "$890K",
				AssociatedAddresses: 23,
			},
		}},
		{history: 30, wallet: models.Wallet{
			ID: "3", Address: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", Chain: models.ChainBTC,
			RiskScore: 95, Category: models.CategoryRansomware, TxCount: 156,
			LastTx: ts("2025-12-04T09:45:00Z"), FirstSeen: ts("2024-01-10T00:00:00Z"), LastSeen: ts("2025-12-04T09:45:00Z"),
			OSINTSnippet: "Identified as LockBit 3.0 ransom collection address in FBI IC3 report...",
			Sources:      []string{"FBI IC3", "Chainalysis Reactor", "OFAC SDN List"},
			PII: []models.PII{
				{Kind: "name", Value: "Amit Patel"},
				{Kind: "email", Value: "lock***@onion.mail"},
			},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"Round number deposits", "CoinJoin usage", "Long dormancy periods"},
				TotalValue:          "$5.2M",
				AssociatedAddresses: 89,
			},
		}},
		{history: 60, wallet: models.Wallet{
			ID: "4", Address: "0x8B3765eDA5207fB21690874B722ae276B96260E0", Chain: models.ChainETH,
			RiskScore: 78, Category: models.CategoryMixer, TxCount: 3421,
			LastTx: ts("2025-12-06T11:20:00Z"), FirstSeen: ts("2023-11-05T16:00:00Z"), LastSeen: ts("2025-12-06T11:20:00Z"),
			OSINTSnippet: "Tornado Cash interaction wallet with high-volume cross-chain bridging...",
			Sources:      []string{"Elliptic", "TRM Labs"},
			PII: []models.PII{
				{Kind: "name", Value: "Sneha Gupta"},
				{Kind: "email", Value: "sne***@outlook.com"},
			},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"Tornado Cash deposits", "Cross-chain bridges", "DEX aggregator usage"},
				TotalValue:          "$12.1M",
				AssociatedAddresses: 234,
			},
		}},
		{history: 25, wallet: models.Wallet{
			ID: "5", Address: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", Chain: models.ChainSOL,
			RiskScore: 45, Category: models.CategoryUnknown, TxCount: 567,
			LastTx: ts("2025-12-06T16:00:00Z"), FirstSeen: ts("2024-08-12T10:00:00Z"), LastSeen: ts("2025-12-06T16:00:00Z"),
			OSINTSnippet: `Under investigation - possible connection to rug pull project "SolMoon"...`,
			Sources:      []string{"RugDoc", "Community Reports"},
			PII: []models.PII{
				{Kind: "name", Value: "Vikram Singh"},
				{Kind: "email", Value: "vik***@gmail.com"},
				{Kind: "twitter", Value: "@sol_dev_anon"},
			},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"NFT minting activity", "LP token burns", "Large single transactions"},
				TotalValue:          "$340K",
				AssociatedAddresses: 12,
			},
		}},
		{history: 100, wallet: models.Wallet{
			ID: "6", Address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", Chain: models.ChainETH,
			RiskScore: 15, Category: models.CategoryClean, TxCount: 12500,
			LastTx: ts("2025-12-06T17:00:00Z"), FirstSeen: ts("2020-09-17T00:00:00Z"), LastSeen: ts("2025-12-06T17:00:00Z"),
			OSINTSnippet: "Verified Uniswap Protocol contract address - legitimate DeFi infrastructure...",
			Sources:      []string{"Etherscan Verified", "DeFiLlama"},
			PII:          []models.PII{},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"Governance token", "High liquidity", "Audited smart contract"},
				TotalValue:          "$4.2B",
				AssociatedAddresses: 1000000,
			},
		}},
		{history: 35, wallet: models.Wallet{
			ID: "7", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Chain: models.ChainETH,
			RiskScore: 82, Category: models.CategoryScam, TxCount: 432,
			LastTx: ts("2025-12-05T08:30:00Z"), FirstSeen: ts("2024-10-01T00:00:00Z"), LastSeen: ts("2025-12-05T08:30:00Z"),
			OSINTSnippet: "Pig butchering scam wallet - romance fraud targeting victims on dating apps...",
			Sources:      []string{"CipherTrace", "BBB Scam Tracker", "Reddit r/Scams"},
			PII: []models.PII{
				{Kind: "name", Value: "Ananya Desai"},
				{Kind: "email", Value: "ana***@gmail.com"},
				{Kind: "phone", Value: "+91-****-8821"},
				{Kind: "username", Value: "InvestWithSarah"},
			},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"P2P platform deposits", "Gift card redemptions", "Wire transfer origins"},
				TotalValue:          "$1.8M",
				AssociatedAddresses: 31,
			},
		}},
		{history: 45, wallet: models.Wallet{
			ID: "8", Address: "TNPeeaaFB7K9cmo4uQpcU32zGK8G1NYqeL", Chain: models.ChainTRX,
			RiskScore: 67, Category: models.CategoryUnknown, TxCount: 2100,
			LastTx: ts("2025-12-06T12:00:00Z"), FirstSeen: ts("2024-04-15T00:00:00Z"), LastSeen: ts("2025-12-06T12:00:00Z"),
			OSINTSnippet: "High-volume USDT transfers with potential OTC desk connections...",
			Sources:      []string{"Whale Alert", "TronScan Analytics"},
			PII: []models.PII{
				{Kind: "name", Value: "Arjun Reddy"},
				{Kind: "email", Value: "arj***@proton.me"},
			},
			Metadata: models.WalletMetadata{
				Patterns:            []string{"Large USDT transfers", "CEX hot wallet interactions", "Regular intervals"},
				TotalValue:          "$45M",
				AssociatedAddresses: 156,
			},
		}},
	}
}

func fixtureAlerts() []models.Alert {
	return []models.Alert{
		{ID: "1", Type: models.AlertHighRisk, Severity: models.SeverityCritical, Timestamp: ts("2025-12-06T14:35:00Z"),
			Message: "New wallet flagged with risk score 92 - Identified scam pattern", WalletAddress: "0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1"},
		{ID: "2", Type: models.AlertSuspiciousPII, Severity: models.SeverityHigh, Timestamp: ts("2025-12-06T14:20:00Z"),
			Message: "PII extracted: Email address linked to known fraud operator", WalletAddress: "TLa2f6VPqDgRE67v1736s7bJ8Ray5wYjU7"},
		{ID: "3", Type: models.AlertRapidActivity, Severity: models.SeverityMedium, Timestamp: ts("2025-12-06T14:10:00Z"),
			Message: "47 transactions detected in last hour - Unusual velocity", WalletAddress: "0x8B3765eDA5207fB21690874B722ae276B96260E0"},
		{ID: "4", Type: models.AlertNewWallet, Severity: models.SeverityCritical, Timestamp: ts("2025-12-06T13:55:00Z"),
			Message: "New ransomware-associated wallet added to watchlist", WalletAddress: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"},
		{ID: "5", Type: models.AlertHighRisk, Severity: models.SeverityHigh, Timestamp: ts("2025-12-06T13:40:00Z"),
			Message: "Risk score increased from 65 to 82 - New OSINT evidence", WalletAddress: "0xdAC17F958D2ee523a2206206994597C13D831ec7"},
	}
}

func fixtureCases() []models.CaseFile {
	return []models.CaseFile{
		{
			ID: "1", Name: "LockBit 3.0 Ransom Network",
			Description: "Investigation into ransomware payment collection network spanning multiple chains",
			Status:      models.CaseInvestigating, Priority: models.SeverityCritical, Wallets: []string{"1", "3"},
			CreatedAt: ts("2025-12-01T08:00:00Z"), UpdatedAt: ts("2025-12-06T14:30:00Z"), Assignee: "Agent Smith",
			Notes:    "Primary collection wallet identified. Funds traced through 3 intermediate addresses before reaching mixer. Working with FBI IC3 on attribution.",
			Evidence: []string{"FBI IC3 Report #2025-1234", "Chainalysis Reactor Analysis", "Victim Statement - Company XYZ"},
		},
		{
			ID: "2", Name: "Pig Butchering Ring #47",
			Description: "Romance scam operation targeting dating app users with fake investment schemes",
			Status:      models.CaseOpen, Priority: models.SeverityHigh, Wallets: []string{"7"},
			CreatedAt: ts("2025-12-03T10:00:00Z"), UpdatedAt: ts("2025-12-06T11:00:00Z"), Assignee: "Agent Johnson",
			Notes:    "47 victims identified across 12 countries. Total losses estimated at $3.2M. Primary suspect located in SE Asia.",
			Evidence: []string{"Victim Interviews (47)", "Telegram Chat Logs", "Dating App Profile Screenshots"},
		},
		{
			ID: "3", Name: "Binance Phishing Campaign",
			Description: "Fake customer support scam collecting credentials via Telegram",
			Status:      models.CaseInvestigating, Priority: models.SeverityHigh, Wallets: []string{"2"},
			CreatedAt: ts("2025-11-28T14:00:00Z"), UpdatedAt: ts("2025-12-05T16:00:00Z"), Assignee: "Agent Smith",
			Notes:    "Phishing kit analysis complete. Infrastructure hosted on bulletproof hosting in Moldova.",
			Evidence: []string{"Phishing Kit Source Code", "Domain Registration Records", "Telegram Bot Analysis"},
		},
		{
			ID: "4", Name: "DeFi Rug Pull - SolMoon",
			Description: "Suspected rug pull investigation involving NFT minting and LP token burns",
			Status:      models.CaseClosed, Priority: models.SeverityMedium, Wallets: []string{"5"},
			CreatedAt: ts("2025-11-15T09:00:00Z"), UpdatedAt: ts("2025-11-30T17:00:00Z"), Assignee: "Agent Williams",
			Notes:    "Case closed. Developer identified and assets frozen by law enforcement. Recovery proceedings initiated.",
			Evidence: []string{"Smart Contract Audit", "Developer Wallet Trace", "Discord Server Archive"},
		},
	}
}
