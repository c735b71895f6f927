package blockchain

// PrevOut is the resolved source of a transaction input. Coinbase
// inputs have no previous output and therefore no address.
type PrevOut struct {
	Addr  string `json:"addr,omitempty"`
	Value int64  `json:"value"`
}

// Input is one transaction input as returned by the ledger API.
type Input struct {
	Sequence int64    `json:"sequence,omitempty"`
	PrevOut  *PrevOut `json:"prev_out,omitempty"`
	Script   string   `json:"script,omitempty"`
}

// Output is one transaction output. OP_RETURN outputs carry no address.
type Output struct {
	Addr  string `json:"addr,omitempty"`
	Value int64  `json:"value"`
	Spent bool   `json:"spent,omitempty"`
	N     int    `json:"n,omitempty"`
}

// Transaction is a single transaction from an address page. Inputs and
// outputs keep their upstream order.
type Transaction struct {
	Hash   string   `json:"hash"`
	Time   int64    `json:"time"` // Unix seconds
	Fee    int64    `json:"fee,omitempty"`
	Result int64    `json:"result,omitempty"` // balance change for the page's address
	Inputs []Input  `json:"inputs"`
	Out    []Output `json:"out"`
}

// AddressDetails is the upstream response for one address page.
// Monetary values are satoshis.
type AddressDetails struct {
	Address       string        `json:"address"`
	NTx           int64         `json:"n_tx"`
	TotalReceived int64         `json:"total_received"`
	TotalSent     int64         `json:"total_sent"`
	FinalBalance  int64         `json:"final_balance"`
	Txs           []Transaction `json:"txs"`
}
