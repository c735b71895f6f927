package txgraph

// Merge unites two partial graphs into a new graph, leaving both
// arguments untouched.
//
// Nodes are united by ID and links by (source, target, txHash). On a
// collision the entry from a is kept, so accumulating pages into a
// session preserves whatever was learned first. Merging a graph with
// itself returns an equal graph, and the resulting node and link sets
// do not depend on argument order.
func Merge(a, b *Graph) *Graph {
	out := &Graph{}
	if a == nil && b == nil {
		return out
	}

	have := make(map[string]bool)
	seen := make(map[EdgeKey]bool)

	for _, g := range []*Graph{a, b} {
		if g == nil {
			continue
		}
		for _, n := range g.Nodes {
			if have[n.ID] {
				continue
			}
			have[n.ID] = true
			out.Nodes = append(out.Nodes, n)
		}
		for _, e := range g.Links {
			if seen[e.Key()] {
				continue
			}
			seen[e.Key()] = true
			out.Links = append(out.Links, e)
		}
	}

	return out
}
