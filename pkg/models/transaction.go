package models

// Transaction is a single transfer in a wallet's history.
//
// Amount is kept as the decimal string the source reported so that equality
// checks never go through a float. Timestamp is likewise left unparsed; the
// analysis code decides what to do with values it cannot read.
type Transaction struct {
	ID          string    `json:"id"`
	Hash        string    `json:"hash"`
	Direction   Direction `json:"type"` // incoming/outgoing, relative to the owning wallet
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Timestamp   string    `json:"timestamp"` // ISO-8601, or epoch milliseconds
	Status      TxStatus  `json:"status,omitempty"`
	Fee         string    `json:"fee,omitempty"`
	BlockNumber int64     `json:"blockNumber,omitempty"`
}

// Counterparty returns the address on the other side of the transfer.
func (t Transaction) Counterparty() string {
	if t.Direction == DirectionIncoming {
		return t.From
	}
	return t.To
}
