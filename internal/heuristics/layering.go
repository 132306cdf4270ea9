package heuristics

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/shopspring/decimal"
)

// Layering Pattern Detector
//
// Layering moves funds through many hops to hide where they came from. One
// cheap on-wallet signature of it is the synchronized offsetting transfer:
// an incoming and an outgoing transfer of exactly the same value recorded
// within seconds of each other, i.e. the wallet is a pass-through.
//
// A pair (a, b) matches when:
//   - direction(a) != direction(b)
//   - amount(a) == amount(b)            exact decimal value, never float
//   - |timestamp(a) - timestamp(b)| <= threshold   (inclusive, default 60s)
//
// Matching is many-to-many: one transfer can pair with several partners.
//
// Records with an unreadable timestamp, a non-numeric amount or no
// direction cannot match anything and are skipped; the rest of the history
// is still scanned.
//
// Cost: records are sorted by time and each one only looks forward while
// inside the window, so sparse histories are close to linear. A burst of
// records sharing one instant is still quadratic; callers bound this by only
// scanning critical wallets (ShouldScanForLayering).

// DefaultLayeringThreshold is the maximum gap between two offsetting transfers.
const DefaultLayeringThreshold = 60 * time.Second

// cancelCheckEvery is how many pair comparisons run between context checks.
const cancelCheckEvery = 4096

// LayeringOptions tunes a detector run.
type LayeringOptions struct {
	Threshold time.Duration `json:"threshold"`
	Enabled   bool          `json:"enabled"`
}

// DefaultLayeringOptions returns an enabled detector with a 60 second window.
func DefaultLayeringOptions() LayeringOptions {
	return LayeringOptions{Threshold: DefaultLayeringThreshold, Enabled: true}
}

// MatchSet maps a transaction ID to the sorted IDs it was matched with.
// Transactions without a partner have no entry.
type MatchSet map[string][]string

// MatchPair is one unordered match, stored with A < B.
type MatchPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Has reports whether id took part in at least one match.
func (m MatchSet) Has(id string) bool {
	return len(m[id]) > 0
}

// Partners returns the IDs matched with id.
func (m MatchSet) Partners(id string) []string {
	return m[id]
}

// Len is the number of transactions that are part of a match.
func (m MatchSet) Len() int {
	return len(m)
}

// PairCount is the number of distinct matches. Every match is recorded from
// both sides, so this is half the total number of recorded partners.
func (m MatchSet) PairCount() int {
	sides := 0
	for _, partners := range m {
		sides += len(partners)
	}
	return sides / 2
}

// Pairs lists every match once, sorted.
func (m MatchSet) Pairs() []MatchPair {
	pairs := make([]MatchPair, 0, m.PairCount())
	for id, partners := range m {
		for _, p := range partners {
			if id < p {
				pairs = append(pairs, MatchPair{A: id, B: p})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// layeringCandidate is a transaction that parsed cleanly enough to be matched.
type layeringCandidate struct {
	id     string
	at     time.Time
	amount decimal.Decimal
	dir    models.Direction
}

// DetectLayering returns every synchronized offsetting pair in one wallet's
// history. It never fails: bad records are skipped and a disabled run or a
// negative threshold yields an empty set.
func DetectLayering(txs []models.Transaction, opts LayeringOptions) MatchSet {
	matches, _ := DetectLayeringContext(context.Background(), txs, opts)
	return matches
}

// DetectLayeringContext is DetectLayering with cooperative cancellation for
// callers that fan out across many wallets. The only error it returns is
// ctx.Err().
func DetectLayeringContext(ctx context.Context, txs []models.Transaction, opts LayeringOptions) (MatchSet, error) {
	matches := MatchSet{}
	if !opts.Enabled || opts.Threshold < 0 || len(txs) < 2 {
		return matches, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := parseLayeringCandidates(txs)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].at.Before(candidates[j].at)
	})

	partners := make(map[string]map[string]struct{})
	steps := 0
	for i := range candidates {
		a := candidates[i]
		for j := i + 1; j < len(candidates); j++ {
			steps++
			if steps%cancelCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}

			b := candidates[j]
			if b.at.Sub(a.at) > opts.Threshold {
				break
			}
			if !isOffsettingPair(a, b) {
				continue
			}
			link(partners, a.id, b.id)
			link(partners, b.id, a.id)
		}
	}

	for id, set := range partners {
		ids := make([]string, 0, len(set))
		for p := range set {
			ids = append(ids, p)
		}
		sort.Strings(ids)
		matches[id] = ids
	}
	return matches, nil
}

func isOffsettingPair(a, b layeringCandidate) bool {
	return a.id != b.id && a.dir != b.dir && a.amount.Equal(b.amount)
}

func link(partners map[string]map[string]struct{}, from, to string) {
	set, ok := partners[from]
	if !ok {
		set = make(map[string]struct{})
		partners[from] = set
	}
	set[to] = struct{}{}
}

// parseLayeringCandidates keeps input order so the stable sort leaves
// simultaneous records in the order the source supplied them.
func parseLayeringCandidates(txs []models.Transaction) []layeringCandidate {
	out := make([]layeringCandidate, 0, len(txs))
	for _, tx := range txs {
		if !tx.Direction.Valid() {
			continue
		}
		at, ok := ParseInstant(tx.Timestamp)
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(tx.Amount))
		if err != nil {
			continue
		}
		out = append(out, layeringCandidate{id: tx.ID, at: at, amount: amount, dir: tx.Direction})
	}
	return out
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseInstant reads an ISO-8601 timestamp or an integer count of epoch
// milliseconds. Values without a zone are taken as UTC.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
