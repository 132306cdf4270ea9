package chain

import (
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cacsx/intel-engine/pkg/models"
)

func segwitAddress(t *testing.T, params *chaincfg.Params) string {
	t.Helper()
	addr, err := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), params)
	if err != nil {
		t.Fatalf("NewAddressWitnessPubKeyHash: %v", err)
	}
	return addr.EncodeAddress()
}

func tronAddress() string {
	return base58.CheckEncode(make([]byte, 20), tronVersion)
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		chain   models.Chain
		addr    string
		wantErr bool
	}{
		{"BTC genesis P2PKH", models.ChainBTC, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false},
		{"BTC segwit", models.ChainBTC, segwitAddress(t, &chaincfg.MainNetParams), false},
		{"BTC testnet rejected", models.ChainBTC, segwitAddress(t, &chaincfg.TestNet3Params), true},
		{"BTC garbage", models.ChainBTC, "1notanaddress", true},
		{"ETH checksummed", models.ChainETH, "0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1", false},
		{"ETH checksum vector", models.ChainETH, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"ETH lower case", models.ChainETH, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
		{"ETH upper case", models.ChainETH, "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", false},
		{"ETH bad checksum", models.ChainETH, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD", true},
		{"ETH too short", models.ChainETH, "0x742d35", true},
		{"ETH missing prefix", models.ChainETH, "742d35Cc6634C0532925a3b844Bc9e7595f2BdE1", true},
		{"TRX", models.ChainTRX, tronAddress(), false},
		{"TRX known account", models.ChainTRX, "T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb", false},
		{"TRX bad checksum", models.ChainTRX, "T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwa", true},
		{"TRX wrong version", models.ChainTRX, base58.CheckEncode(make([]byte, 20), 0x42), true},
		{"TRX wrong prefix", models.ChainTRX, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{"SOL system program", models.ChainSOL, strings.Repeat("1", 32), false},
		{"SOL invalid character", models.ChainSOL, strings.Repeat("0", 32), true},
		{"Empty", models.ChainETH, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.chain, tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%s, %q) error = %v, wantErr %v", tt.chain, tt.addr, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("Expected ErrInvalidAddress, got %v", err)
			}
		})
	}
}

func TestValidateAddress_UnknownChain(t *testing.T) {
	err := ValidateAddress("DOGE", "D8vFz4p1L37jdg47HXKtSHA5uYLYxbGgPD")
	if !errors.Is(err, models.ErrUnknownValue) {
		t.Errorf("Expected ErrUnknownValue, got %v", err)
	}
}

func TestDetectChain(t *testing.T) {
	tests := []struct {
		addr string
		want models.Chain
		ok   bool
	}{
		{"0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1", models.ChainETH, true},
		{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", models.ChainBTC, true},
		{tronAddress(), models.ChainTRX, true},
		{strings.Repeat("1", 32), models.ChainSOL, true},
		{"what is a mixer?", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectChain(tt.addr)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DetectChain(%q) = %s, %v; want %s, %v", tt.addr, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValidateTxHash(t *testing.T) {
	btcHash := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	tests := []struct {
		name    string
		chain   models.Chain
		hash    string
		wantErr bool
	}{
		{"BTC genesis coinbase", models.ChainBTC, btcHash, false},
		{"BTC short", models.ChainBTC, btcHash[:10], true},
		{"BTC non-hex", models.ChainBTC, strings.Repeat("z", 64), true},
		{"ETH", models.ChainETH, "0x" + strings.Repeat("ab", 32), false},
		{"ETH without prefix", models.ChainETH, strings.Repeat("ab", 32), true},
		{"SOL any", models.ChainSOL, "5h3k", false},
		{"Empty", models.ChainTRX, " ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTxHash(tt.chain, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTxHash(%s, %q) error = %v, wantErr %v", tt.chain, tt.hash, err, tt.wantErr)
			}
		})
	}
}

func TestShortAddress(t *testing.T) {
	if got := ShortAddress("0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1"); got != "0x742d...bDe1" {
		t.Errorf("ShortAddress() = %q", got)
	}
	if got := ShortAddress("short"); got != "short" {
		t.Errorf("ShortAddress() = %q", got)
	}
}
