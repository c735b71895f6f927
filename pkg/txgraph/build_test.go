package txgraph

import (
	"testing"

	"github.com/chainlens/chainlens/pkg/blockchain"
	"github.com/chainlens/chainlens/pkg/errors"
)

const (
	centerAddr = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	addrB      = "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"
	addrC      = "1CounterpartyXXXXXXXXXXXXXXXUWLpVr"
	addrD      = "1DxHtbbvD8E3FZtLH6Eb4E25RWhmPgt2HW"
)

func page(txs ...blockchain.Transaction) *blockchain.AddressDetails {
	return &blockchain.AddressDetails{
		Address:      centerAddr,
		NTx:          int64(len(txs)),
		FinalBalance: 100000000,
		Txs:          txs,
	}
}

func in(addr string, value int64) blockchain.Input {
	return blockchain.Input{PrevOut: &blockchain.PrevOut{Addr: addr, Value: value}}
}

func out(addr string, value int64) blockchain.Output {
	return blockchain.Output{Addr: addr, Value: value}
}

func TestBuild_InboundEdge(t *testing.T) {
	g, err := Build(page(blockchain.Transaction{
		Hash:   "h1",
		Time:   1700000000,
		Inputs: []blockchain.Input{in(addrB, 50000000)},
		Out:    []blockchain.Output{out(centerAddr, 100000000)},
	}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Nodes) != 2 {
		t.Fatalf("got %d nodes, want center and one counterparty", len(g.Nodes))
	}
	if g.Node(centerAddr) == nil || g.Node(addrB) == nil {
		t.Errorf("nodes = %+v", g.Nodes)
	}

	if len(g.Links) != 1 {
		t.Fatalf("got %d links, want 1", len(g.Links))
	}
	e := g.Links[0]
	if e.Source != addrB || e.Target != centerAddr || e.Value != 50000000 || e.TxHash != "h1" {
		t.Errorf("edge = %+v", e)
	}
	if e.Timestamp != 1700000000 {
		t.Errorf("timestamp = %d", e.Timestamp)
	}
}

func TestBuild_FanOut(t *testing.T) {
	g, err := Build(page(blockchain.Transaction{
		Hash: "h1",
		Inputs: []blockchain.Input{
			in(addrB, 30000000),
			in(centerAddr, 1000000),
		},
		Out: []blockchain.Output{
			out(addrC, 10000000),
			out(addrD, 15000000),
			out(centerAddr, 4000000), // change back, no edge
		},
	}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Nodes) != 4 {
		t.Errorf("got %d nodes, want 4", len(g.Nodes))
	}
	if len(g.Links) != 3 {
		t.Fatalf("got %d links, want 3", len(g.Links))
	}

	want := map[EdgeKey]int64{
		{Source: addrB, Target: centerAddr, TxHash: "h1"}: 30000000,
		{Source: centerAddr, Target: addrC, TxHash: "h1"}: 10000000,
		{Source: centerAddr, Target: addrD, TxHash: "h1"}: 15000000,
	}
	for _, e := range g.Links {
		v, ok := want[e.Key()]
		if !ok {
			t.Errorf("unexpected edge %+v", e)
			continue
		}
		if e.Value != v {
			t.Errorf("edge %+v, want value %d", e, v)
		}
	}
}

func TestBuild_DuplicateEdgeKeepsFirstValue(t *testing.T) {
	g, err := Build(page(blockchain.Transaction{
		Hash: "h1",
		Inputs: []blockchain.Input{
			in(addrB, 100),
			in(addrB, 200), // same (source, target, txHash)
		},
		Out: []blockchain.Output{out(centerAddr, 250)},
	}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Links) != 1 {
		t.Fatalf("got %d links, want deduplicated edge", len(g.Links))
	}
	if g.Links[0].Value != 100 {
		t.Errorf("value = %d, first observed value must win", g.Links[0].Value)
	}
}

func TestBuild_SkipsAddresslessLegs(t *testing.T) {
	g, err := Build(page(blockchain.Transaction{
		Hash: "h1",
		Inputs: []blockchain.Input{
			{PrevOut: nil},                           // coinbase
			{PrevOut: &blockchain.PrevOut{Value: 5}}, // no address
			in(addrB, 100),
			in(centerAddr, 10),
		},
		Out: []blockchain.Output{
			{Value: 0}, // OP_RETURN
			out(addrC, 50),
			out(centerAddr, 5),
		},
	}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Links) != 2 {
		t.Errorf("got %d links, want 2", len(g.Links))
	}
	if len(g.Nodes) != 3 {
		t.Errorf("got %d nodes, want 3", len(g.Nodes))
	}
}

func TestBuild_InboundRequiresPaymentToCenter(t *testing.T) {
	// h1 pays the center, h2 does not. Only h1's funder gets an edge,
	// and the side payment to addrC never becomes an outbound edge
	// because the center funds neither transaction.
	g, err := Build(page(
		blockchain.Transaction{
			Hash:   "h1",
			Inputs: []blockchain.Input{in(addrB, 100)},
			Out:    []blockchain.Output{out(centerAddr, 70), out(addrC, 30)},
		},
		blockchain.Transaction{
			Hash:   "h2",
			Inputs: []blockchain.Input{in(addrD, 100)},
			Out:    []blockchain.Output{out(addrC, 100)},
		},
	))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Links) != 1 {
		t.Fatalf("got %d links, want 1", len(g.Links))
	}
	e := g.Links[0]
	if e.Source != addrB || e.Target != centerAddr || e.TxHash != "h1" {
		t.Errorf("edge = %+v", e)
	}
	if len(g.Nodes) != 2 {
		t.Errorf("got %d nodes, want center and the funder only", len(g.Nodes))
	}
}

func TestBuild_OutboundRequiresSpendFromCenter(t *testing.T) {
	// The center co-spends alongside addrB, paying addrC. The payment
	// out is real; addrB is a co-spender, not a funder of the center,
	// so no inbound edge appears.
	g, err := Build(page(blockchain.Transaction{
		Hash:   "h1",
		Inputs: []blockchain.Input{in(centerAddr, 40), in(addrB, 60)},
		Out:    []blockchain.Output{out(addrC, 100)},
	}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Links) != 1 {
		t.Fatalf("got %d links, want 1", len(g.Links))
	}
	e := g.Links[0]
	if e.Source != centerAddr || e.Target != addrC || e.Value != 100 {
		t.Errorf("edge = %+v", e)
	}
	if g.Node(addrB) != nil {
		t.Error("co-spender must not become a node")
	}
}

func TestBuild_SelfTransferHasNoEdges(t *testing.T) {
	g, err := Build(page(blockchain.Transaction{
		Hash:   "h1",
		Inputs: []blockchain.Input{in(centerAddr, 100)},
		Out:    []blockchain.Output{out(centerAddr, 99)},
	}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Links) != 0 {
		t.Errorf("got %d links, want none", len(g.Links))
	}
	if len(g.Nodes) != 1 || g.Nodes[0].ID != centerAddr {
		t.Errorf("nodes = %+v, want only the center", g.Nodes)
	}
}

func TestBuild_EmptyPageKeepsCenterNode(t *testing.T) {
	g, err := Build(page())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(g.Nodes))
	}
	n := g.Nodes[0]
	if n.ID != centerAddr || n.Balance != 100000000 {
		t.Errorf("center node = %+v", n)
	}
	if n.Label != ShortLabel(centerAddr) {
		t.Errorf("label = %q", n.Label)
	}
}

func TestBuild_MalformedPage(t *testing.T) {
	tests := []struct {
		name string
		tx   blockchain.Transaction
	}{
		{
			"missing hash",
			blockchain.Transaction{Inputs: []blockchain.Input{in(addrB, 100)}},
		},
		{
			"negative input value",
			blockchain.Transaction{Hash: "h1", Inputs: []blockchain.Input{in(addrB, -1)}},
		},
		{
			"negative output value",
			blockchain.Transaction{Hash: "h1", Out: []blockchain.Output{out(addrC, -5)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(page(tt.tx))
			if !errors.Is(err, errors.ErrCodeInvalidPage) {
				t.Errorf("error = %v, want INVALID_PAGE", err)
			}
		})
	}
}

func TestShortLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{centerAddr, "1A1zP1eP...v7DivfNa"},
		{"short", "short"},
		{"exactly16chars!!", "exactly16chars!!"},
	}
	for _, tt := range tests {
		if got := ShortLabel(tt.in); got != tt.want {
			t.Errorf("ShortLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
