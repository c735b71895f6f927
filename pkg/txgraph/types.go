// Package txgraph turns transaction pages into an address relationship
// graph and merges partial graphs from successive fetches.
package txgraph

// Node is one address in the relationship graph. Balance and TxCount
// are known only for addresses whose details have been fetched; nodes
// discovered through transaction legs carry zeros.
type Node struct {
	ID      string `json:"id" bson:"id"`
	Label   string `json:"label" bson:"label"`
	Balance int64  `json:"balance" bson:"balance"`
	TxCount int64  `json:"txCount" bson:"txCount"`
}

// Edge is one observed value flow between two addresses within a single
// transaction. Value is satoshis, Timestamp is the transaction time in
// Unix seconds.
type Edge struct {
	Source    string `json:"source" bson:"source"`
	Target    string `json:"target" bson:"target"`
	Value     int64  `json:"value" bson:"value"`
	TxHash    string `json:"txHash" bson:"txHash"`
	Timestamp int64  `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

// Key identifies an edge. Two legs with the same source, target, and
// transaction hash describe the same flow regardless of value.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, TxHash: e.TxHash}
}

// EdgeKey is the identity of an [Edge].
type EdgeKey struct {
	Source string
	Target string
	TxHash string
}

// Graph is a set of address nodes and the value flows between them.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Edge `json:"links" bson:"links"`
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// ShortLabel abbreviates an address for display, keeping the first and
// last eight characters.
func ShortLabel(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-8:]
}
