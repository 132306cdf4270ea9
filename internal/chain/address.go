// Package chain validates addresses and transaction hashes for the
// monitored chains.
package chain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cacsx/intel-engine/pkg/models"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidAddress is returned for addresses that do not parse for their chain.
var ErrInvalidAddress = errors.New("invalid address")

// ErrInvalidTxHash is returned for malformed transaction hashes.
var ErrInvalidTxHash = errors.New("invalid transaction hash")

var (
	evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	evmTxHashRe  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// tronVersion is the leading byte of every decoded Tron address.
const tronVersion = 0x41

// ValidateAddress checks addr against the address format of c.
func ValidateAddress(c models.Chain, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	switch c {
	case models.ChainBTC:
		decoded, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams)
		if err != nil {
			return fmt.Errorf("%w: %s address %q: %v", ErrInvalidAddress, c, addr, err)
		}
		if !decoded.IsForNet(&chaincfg.MainNetParams) {
			return fmt.Errorf("%w: %q is not a mainnet address", ErrInvalidAddress, addr)
		}
		return nil

	case models.ChainETH:
		if !evmAddressRe.MatchString(addr) {
			return fmt.Errorf("%w: %s address %q", ErrInvalidAddress, c, addr)
		}
		if !validEIP55(addr) {
			return fmt.Errorf("%w: %s address %q fails its mixed-case checksum", ErrInvalidAddress, c, addr)
		}
		return nil

	case models.ChainTRX:
		// base58check: version byte, 20 byte account, 4 byte checksum
		account, version, err := base58.CheckDecode(addr)
		if err != nil {
			return fmt.Errorf("%w: %s address %q: %v", ErrInvalidAddress, c, addr, err)
		}
		if addr[0] != 'T' || version != tronVersion || len(account) != 20 {
			return fmt.Errorf("%w: %s address %q", ErrInvalidAddress, c, addr)
		}
		return nil

	case models.ChainSOL:
		// ed25519 public key
		raw := base58.Decode(addr)
		if len(addr) < 32 || len(addr) > 44 || len(raw) != 32 {
			return fmt.Errorf("%w: %s address %q", ErrInvalidAddress, c, addr)
		}
		return nil
	}
	return fmt.Errorf("%w: chain %q", models.ErrUnknownValue, c)
}

// validEIP55 checks the mixed-case checksum of a 0x-prefixed hex address.
// Single-case addresses carry no checksum and pass.
func validEIP55(addr string) bool {
	digits := addr[2:]
	lower := strings.ToLower(digits)
	if digits == lower || digits == strings.ToUpper(digits) {
		return true
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	for i := 0; i < len(lower); i++ {
		ch := lower[i]
		if ch < 'a' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		want := ch
		if nibble&0x0f >= 8 {
			want = ch - 'a' + 'A'
		}
		if digits[i] != want {
			return false
		}
	}
	return true
}

// DetectChain guesses which chain an address belongs to. EVM and Bitcoin
// formats are unambiguous; anything else that decodes as a Tron or Solana
// key is reported as such.
func DetectChain(addr string) (models.Chain, bool) {
	addr = strings.TrimSpace(addr)
	for _, c := range []models.Chain{models.ChainETH, models.ChainBTC, models.ChainTRX, models.ChainSOL} {
		if ValidateAddress(c, addr) == nil {
			return c, true
		}
	}
	return "", false
}

// ValidateTxHash checks a transaction hash. Chains without a fixed hash
// format only need a non-empty value.
func ValidateTxHash(c models.Chain, hash string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTxHash)
	}

	switch c {
	case models.ChainBTC:
		if len(hash) != chainhash.MaxHashStringSize {
			return fmt.Errorf("%w: %s hash must be %d hex characters", ErrInvalidTxHash, c, chainhash.MaxHashStringSize)
		}
		if _, err := chainhash.NewHashFromStr(hash); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTxHash, err)
		}
		return nil
	case models.ChainETH:
		if !evmTxHashRe.MatchString(hash) {
			return fmt.Errorf("%w: %s hash %q", ErrInvalidTxHash, c, hash)
		}
		return nil
	case models.ChainTRX, models.ChainSOL:
		return nil
	}
	return fmt.Errorf("%w: chain %q", models.ErrUnknownValue, c)
}

// ShortAddress abbreviates an address for display, e.g. "0x742d...bDe1".
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
