package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWallet() models.Wallet {
	return models.Wallet{
		ID:        "1",
		Address:   "0x742d35cC6634c0532925a3b844Bc9e7595f2bDe1",
		RiskScore: 92,
		Sources:   []string{"BitcoinAbuse", "FBI IC3"},
		PII: []models.PII{
			{Kind: "name", Value: "Rajesh Kumar"},
			{Kind: "telegram", Value: "@fast_profits_btc"},
		},
	}
}

func TestBuildWalletNetwork(t *testing.T) {
	w := sampleWallet()
	var txs []models.Transaction
	// eight counterparties, cp0 busiest
	for i := 0; i < 8; i++ {
		for j := 0; j <= 8-i; j++ {
			txs = append(txs, models.Transaction{
				ID:        fmt.Sprintf("t%d-%d", i, j),
				Direction: models.DirectionOutgoing,
				From:      w.Address,
				To:        fmt.Sprintf("0xcp%d", i),
			})
		}
	}
	// the quietest counterparty took part in a layering pair
	txs = append(txs, models.Transaction{ID: "lay", Direction: models.DirectionIncoming, From: "0xcp7", To: w.Address})
	matches := heuristics.MatchSet{"lay": {"t0-0"}, "t0-0": {"lay"}}

	net := BuildWalletNetwork(w, txs, matches)

	require.NotEmpty(t, net.Nodes)
	center := net.Nodes[0]
	assert.Equal(t, w.Address, center.ID)
	require.NotNil(t, center.Risk)
	assert.Equal(t, 92, *center.Risk)

	counts := map[NodeType]int{}
	ids := map[string]bool{}
	for _, n := range net.Nodes {
		counts[n.Type]++
		ids[n.ID] = true
	}
	assert.Equal(t, 2, counts[NodePII])
	assert.Equal(t, 2, counts[NodeEntity])
	// layering counterparties rank first, then the busiest fill the rest
	assert.Equal(t, 1+maxCounterparties, counts[NodeWallet])
	assert.True(t, ids["0xcp7"])
	assert.True(t, ids["0xcp3"])
	assert.False(t, ids["0xcp4"])

	for _, e := range net.Edges {
		assert.True(t, ids[e.Source], "dangling source %s", e.Source)
		assert.True(t, ids[e.Target], "dangling target %s", e.Target)
		if e.Target == "0xcp0" || e.Target == "0xcp7" {
			assert.Equal(t, "layering", e.Label)
		}
	}
}

func TestBuildWalletNetwork_NoHistory(t *testing.T) {
	net := BuildWalletNetwork(models.Wallet{ID: "6", Address: "0xabc"}, nil, nil)
	assert.Len(t, net.Nodes, 1)
	assert.NotNil(t, net.Edges)
}

func TestSyncer_SyncWallet(t *testing.T) {
	client := NewMemoryClient()
	s := NewSyncer(client)
	w := sampleWallet()

	require.NoError(t, s.SyncWallet(context.Background(), w.ID, BuildWalletNetwork(w, nil, nil)))

	calls := client.WriteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, w.Address, calls[0].Params["address"])
	assert.Equal(t, 92, calls[0].Params["risk"])
	assert.Len(t, calls[0].Params["nodes"], 5)
	assert.Len(t, calls[0].Params["edges"], 4)
	assert.Contains(t, calls[0].Query, "CASE WHEN x.type = 'wallet' THEN 'wallet'")
	assert.Contains(t, calls[0].Query, "w.type = 'wallet'")

	assert.Error(t, s.SyncWallet(context.Background(), "x", Network{}))
}

func TestSyncer_PropagatesErrors(t *testing.T) {
	boom := errors.New("bolt down")
	s := NewSyncer(NewMemoryClient().WithError(boom))

	err := s.SyncWallet(context.Background(), "1", BuildWalletNetwork(sampleWallet(), nil, nil))
	assert.ErrorIs(t, err, boom)
	_, err = s.RelatedByPII(context.Background(), "0xabc")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Healthy(context.Background()), boom)
}

func TestSyncer_RelatedByPII(t *testing.T) {
	client := NewMemoryClient()
	client.PushReadResult(Result{Records: []Record{
		{"address": "0xother", "shared": []any{"Rajesh Kumar"}},
		{"address": "", "shared": []any{}},
	}})

	related, err := NewSyncer(client).RelatedByPII(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, SharedPII{Address: "0xother", Shared: []string{"Rajesh Kumar"}}, related[0])
	assert.Equal(t, "0xabc", client.ReadCalls()[0].Params["address"])
}
