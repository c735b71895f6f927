package txgraph

import (
	"github.com/chainlens/chainlens/pkg/blockchain"
	"github.com/chainlens/chainlens/pkg/errors"
)

// Build converts one fetched transaction page into a partial graph
// centered on the page's address.
//
// Edges follow the money relative to the center. A transaction yields
// inbound edges (funding address into the center) only when one of its
// outputs pays the center, and outbound edges (center to recipient)
// only when one of its inputs spends from the center. A transaction
// the center merely co-signs, or that pays it nothing, contributes no
// edges. Legs without an address (coinbase inputs, OP_RETURN outputs)
// and legs touching the center itself are skipped. Edges are
// deduplicated on (source, target, txHash); the first value observed
// for a key is kept.
//
// The center node is always present and carries the page's balance and
// transaction count. Counterparty nodes appear only once they occur in
// an emitted edge. A transaction without a hash or a leg with a
// negative value marks the page malformed and aborts the build.
func Build(details *blockchain.AddressDetails) (*Graph, error) {
	center := details.Address

	g := &Graph{}
	have := make(map[string]bool)
	addNode := func(n Node) {
		if have[n.ID] {
			return
		}
		have[n.ID] = true
		g.Nodes = append(g.Nodes, n)
	}

	addNode(Node{
		ID:      center,
		Label:   ShortLabel(center),
		Balance: details.FinalBalance,
		TxCount: details.NTx,
	})

	seen := make(map[EdgeKey]bool)
	addEdge := func(source, target string, value int64, tx *blockchain.Transaction) {
		e := Edge{Source: source, Target: target, Value: value, TxHash: tx.Hash, Timestamp: tx.Time}
		if seen[e.Key()] {
			return
		}
		seen[e.Key()] = true

		other := source
		if other == center {
			other = target
		}
		addNode(Node{ID: other, Label: ShortLabel(other)})

		g.Links = append(g.Links, e)
	}

	for i := range details.Txs {
		tx := &details.Txs[i]
		if tx.Hash == "" {
			return nil, errors.New(errors.ErrCodeInvalidPage,
				"transaction without a hash in page for %s", center)
		}

		spendsCenter := false
		for _, in := range tx.Inputs {
			if in.PrevOut == nil {
				continue
			}
			if in.PrevOut.Value < 0 {
				return nil, errors.New(errors.ErrCodeInvalidPage,
					"negative value %d in transaction %s", in.PrevOut.Value, tx.Hash)
			}
			if in.PrevOut.Addr == center {
				spendsCenter = true
			}
		}
		paysCenter := false
		for _, out := range tx.Out {
			if out.Value < 0 {
				return nil, errors.New(errors.ErrCodeInvalidPage,
					"negative value %d in transaction %s", out.Value, tx.Hash)
			}
			if out.Addr == center {
				paysCenter = true
			}
		}

		if paysCenter {
			for _, in := range tx.Inputs {
				if in.PrevOut == nil || in.PrevOut.Addr == "" || in.PrevOut.Addr == center {
					continue
				}
				addEdge(in.PrevOut.Addr, center, in.PrevOut.Value, tx)
			}
		}
		if spendsCenter {
			for _, out := range tx.Out {
				if out.Addr == "" || out.Addr == center {
					continue
				}
				addEdge(center, out.Addr, out.Value, tx)
			}
		}
	}

	return g, nil
}
