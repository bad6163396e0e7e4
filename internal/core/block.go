package core

// Block is one unit of the chain. Transactions carries the reward
// transaction last when mining produced it; genesis carries none.
//
// Index equals the block's position in the chain. PreviousHash is the hex
// digest of the prior block, or "" for genesis. Proof is the nonce for
// which the proof-of-work predicate holds over Transactions (minus any
// trailing reward), PreviousHash, and Proof itself.
type Block struct {
	Index        int64         `json:"index"`
	PreviousHash string        `json:"previous_hash"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	Proof        int64         `json:"proof"`
}

// NewBlock constructs a block. Timestamp is seconds since epoch, matching
// the persisted and wire formats.
func NewBlock(index int64, previousHash string, transactions []Transaction, proof int64, timestamp int64) Block {
	return Block{
		Index:        index,
		PreviousHash: previousHash,
		Timestamp:    timestamp,
		Transactions: transactions,
		Proof:        proof,
	}
}

// Genesis returns the chain's immutable first block. It must be
// byte-identical on every node: index 0, empty previous hash, no
// transactions, proof fixed at 100, zero timestamp.
func Genesis() Block {
	return Block{
		Index:        0,
		PreviousHash: "",
		Timestamp:    0,
		Transactions: []Transaction{},
		Proof:        100,
	}
}

// NonRewardTransactions returns the transaction slice with any trailing
// reward transaction excluded — the slice the proof-of-work predicate was
// computed over. The last entry is dropped only when Transaction.IsReward
// reports it as a reward; a block without a trailing reward is returned
// whole.
func (b Block) NonRewardTransactions() []Transaction {
	if len(b.Transactions) == 0 {
		return b.Transactions
	}
	last := b.Transactions[len(b.Transactions)-1]
	if last.IsReward() {
		return b.Transactions[:len(b.Transactions)-1]
	}
	return b.Transactions
}
