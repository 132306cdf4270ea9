// Package graph builds the relationship network shown on a wallet page and
// mirrors it into a graph database.
package graph

import (
	"fmt"
	"sort"

	"github.com/cacsx/intel-engine/internal/chain"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/pkg/models"
)

// maxCounterparties caps how many counterparties are drawn around a wallet.
const maxCounterparties = 5

// NodeType is the kind of a network node.
type NodeType string

const (
	NodeWallet NodeType = "wallet"
	NodePII    NodeType = "pii"
	NodeEntity NodeType = "entity"
)

type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  NodeType `json:"type"`
	Risk  *int     `json:"risk,omitempty"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Network is a wallet-centred graph.
type Network struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildWalletNetwork draws a wallet with its PII, the OSINT sources that
// reported it and its busiest counterparties. Counterparties involved in a
// layering match are always drawn and their edges labelled "layering".
func BuildWalletNetwork(w models.Wallet, txs []models.Transaction, matches heuristics.MatchSet) Network {
	risk := w.RiskScore
	net := Network{
		Nodes: []Node{{ID: w.Address, Label: w.Address, Type: NodeWallet, Risk: &risk}},
		Edges: []Edge{},
	}

	for _, p := range w.PII {
		id := piiNodeID(p)
		net.Nodes = append(net.Nodes, Node{ID: id, Label: p.Value, Type: NodePII})
		net.Edges = append(net.Edges, Edge{Source: w.Address, Target: id, Label: p.Kind})
	}

	for _, src := range w.Sources {
		id := "source-" + src
		net.Nodes = append(net.Nodes, Node{ID: id, Label: src, Type: NodeEntity})
		net.Edges = append(net.Edges, Edge{Source: id, Target: w.Address, Label: "reported"})
	}

	for _, cp := range topCounterparties(txs, matches) {
		net.Nodes = append(net.Nodes, Node{ID: cp.address, Label: chain.ShortAddress(cp.address), Type: NodeWallet})
		label := fmt.Sprintf("%d tx", cp.count)
		if cp.layering {
			label = "layering"
		}
		if cp.outgoing >= cp.count-cp.outgoing {
			net.Edges = append(net.Edges, Edge{Source: w.Address, Target: cp.address, Label: label})
		} else {
			net.Edges = append(net.Edges, Edge{Source: cp.address, Target: w.Address, Label: label})
		}
	}
	return net
}

// piiNodeID keys PII by content so wallets sharing an identity meet at the
// same node.
func piiNodeID(p models.PII) string {
	return "pii:" + p.Kind + ":" + p.Value
}

type counterparty struct {
	address  string
	count    int
	outgoing int
	layering bool
}

func topCounterparties(txs []models.Transaction, matches heuristics.MatchSet) []counterparty {
	byAddr := make(map[string]*counterparty)
	for _, tx := range txs {
		addr := tx.Counterparty()
		if addr == "" {
			continue
		}
		cp, ok := byAddr[addr]
		if !ok {
			cp = &counterparty{address: addr}
			byAddr[addr] = cp
		}
		cp.count++
		if tx.Direction == models.DirectionOutgoing {
			cp.outgoing++
		}
		if matches.Has(tx.ID) {
			cp.layering = true
		}
	}

	list := make([]counterparty, 0, len(byAddr))
	for _, cp := range byAddr {
		list = append(list, *cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].layering != list[j].layering {
			return list[i].layering
		}
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].address < list[j].address
	})

	keep := 0
	for i, cp := range list {
		if i < maxCounterparties || cp.layering {
			list[keep] = cp
			keep++
		}
	}
	return list[:keep]
}
