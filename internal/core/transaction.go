package core

// Transaction is a signed value transfer from sender to recipient. Sender
// and recipient are hex-encoded DER public keys (see internal/wallet), with
// one exception: the protocol-injected mining reward uses MiningSender as
// its sender and carries an empty signature.
//
// Transactions are immutable once constructed. A Transaction travels over
// the wire and through the open-transaction pool by value copy.
type Transaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Signature string  `json:"signature"`
}

// NewTransaction builds a Transaction. It performs no validation —
// signature and funds checks live in internal/verify, so that the same
// predicate serves both pool admission and the signature sweep over the
// pool before mining.
func NewTransaction(sender, recipient, signature string, amount float64) Transaction {
	return Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Signature: signature,
	}
}

// NewRewardTransaction builds the sentinel reward transaction injected by
// the miner after proof-of-work is found. Per protocol contract it is
// excluded from the proof-of-work input (see internal/verify.ValidProof)
// precisely because it is created after the proof is already known.
func NewRewardTransaction(minerPublicKey string) Transaction {
	return Transaction{
		Sender:    MiningSender,
		Recipient: minerPublicKey,
		Amount:    MiningReward,
		Signature: "",
	}
}

// IsReward reports whether tx is a protocol-injected mining reward rather
// than a user-signed transfer.
func (tx Transaction) IsReward() bool {
	return tx.Sender == MiningSender
}

// Matches reports whether tx and other carry the same (sender, recipient,
// amount, signature) tuple. Used by the engine to drop pool entries that a
// newly accepted block has already confirmed.
func (tx Transaction) Matches(other Transaction) bool {
	return tx.Sender == other.Sender &&
		tx.Recipient == other.Recipient &&
		tx.Amount == other.Amount &&
		tx.Signature == other.Signature
}
