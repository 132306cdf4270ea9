package graph

import (
	"context"
	"fmt"
	"log"
)

const mergeWalletNetworkCypher = `
UNWIND $nodes AS n
MERGE (x:Node {id: n.id})
ON CREATE SET x.type = n.type
SET x.label = n.label,
    x.type = CASE WHEN x.type = 'wallet' THEN 'wallet' ELSE n.type END
WITH count(*) AS merged
MATCH (w:Node {id: $address})
SET w.walletId = $walletId, w.risk = $risk, w.type = 'wallet'
WITH w
UNWIND $edges AS e
MATCH (a:Node {id: e.source}), (b:Node {id: e.target})
MERGE (a)-[r:LINKED {label: e.label}]->(b)
`

const sharedPIICypher = `
MATCH (a:Node {id: $address})-[]->(p:Node {type: 'pii'})
MATCH (p)<-[]-(b:Node {type: 'wallet'})
WHERE b.id <> $address
RETURN DISTINCT b.id AS address, collect(DISTINCT p.label) AS shared
ORDER BY address
`

// Syncer mirrors wallet networks into a graph database.
type Syncer struct {
	client Client
}

func NewSyncer(client Client) *Syncer {
	return &Syncer{client: client}
}

// SyncWallet merges a wallet's network into the graph. Nodes are keyed by
// ID so repeated syncs are idempotent. A node once typed as a wallet stays
// one when it later appears as someone else's counterparty.
func (s *Syncer) SyncWallet(ctx context.Context, walletID string, net Network) error {
	if len(net.Nodes) == 0 {
		return fmt.Errorf("wallet %s: empty network", walletID)
	}
	center := net.Nodes[0]
	risk := 0
	if center.Risk != nil {
		risk = *center.Risk
	}

	nodes := make([]map[string]any, 0, len(net.Nodes))
	for _, n := range net.Nodes {
		nodes = append(nodes, map[string]any{"id": n.ID, "label": n.Label, "type": string(n.Type)})
	}
	edges := make([]map[string]any, 0, len(net.Edges))
	for _, e := range net.Edges {
		edges = append(edges, map[string]any{"source": e.Source, "target": e.Target, "label": e.Label})
	}

	params := map[string]any{
		"address":  center.ID,
		"walletId": walletID,
		"risk":     risk,
		"nodes":    nodes,
		"edges":    edges,
	}
	if _, err := s.client.ExecuteWrite(ctx, mergeWalletNetworkCypher, params); err != nil {
		return fmt.Errorf("sync wallet %s: %w", walletID, err)
	}
	return nil
}

// SharedPII is another wallet tied to the same personal information.
type SharedPII struct {
	Address string   `json:"address"`
	Shared  []string `json:"shared"`
}

// RelatedByPII lists wallets that share at least one PII node with address.
func (s *Syncer) RelatedByPII(ctx context.Context, address string) ([]SharedPII, error) {
	res, err := s.client.ExecuteRead(ctx, sharedPIICypher, map[string]any{"address": address})
	if err != nil {
		return nil, fmt.Errorf("related wallets of %s: %w", address, err)
	}

	out := make([]SharedPII, 0, len(res.Records))
	for _, rec := range res.Records {
		addr, _ := rec["address"].(string)
		if addr == "" {
			continue
		}
		related := SharedPII{Address: addr}
		if shared, ok := rec["shared"].([]any); ok {
			for _, v := range shared {
				if label, ok := v.(string); ok {
					related.Shared = append(related.Shared, label)
				}
			}
		}
		out = append(out, related)
	}
	return out, nil
}

// Healthy reports whether the graph database answers.
func (s *Syncer) Healthy(ctx context.Context) error {
	return s.client.VerifyConnectivity(ctx)
}

// Close releases the underlying client.
func (s *Syncer) Close(ctx context.Context) error {
	if err := s.client.Close(ctx); err != nil {
		log.Printf("[Graph] Close failed: %v", err)
		return err
	}
	return nil
}
