package txgraph

import (
	"bytes"
	"fmt"
	"strings"
)

const satsPerBTC = 100_000_000

// ToDOT converts a graph to Graphviz DOT format. The output is plain
// text; rendering it to an image is left to external tooling.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph addresses {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, n.Label)
	}

	buf.WriteString("\n")
	for _, e := range g.Links {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, FormatBTC(e.Value))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// FormatBTC renders a satoshi amount as BTC with trailing zeros
// trimmed.
func FormatBTC(sats int64) string {
	neg := sats < 0
	if neg {
		sats = -sats
	}
	s := fmt.Sprintf("%d", sats/satsPerBTC)
	if frac := sats % satsPerBTC; frac > 0 {
		s += strings.TrimRight(fmt.Sprintf(".%08d", frac), "0")
	}
	if neg {
		s = "-" + s
	}
	return s + " BTC"
}
