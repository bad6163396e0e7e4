package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// HashString returns the lowercase hex SHA-256 digest of data.
func HashString(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// canonicalTx is the signature-excluding, alphabetically-keyed projection
// of a Transaction used inside HashBlock. Field declaration order doubles
// as JSON key order since encoding/json emits struct fields in declaration
// order with no reordering — declaring them amount, recipient, sender
// below reproduces the "keys sorted alphabetically at every nesting level"
// contract without a runtime sort.
type canonicalTx struct {
	Amount    float64 `json:"amount"`
	Recipient string  `json:"recipient"`
	Sender    string  `json:"sender"`
}

// canonicalBlock is the alphabetically-keyed projection of a Block used by
// HashBlock: index, previous_hash, proof, timestamp, transactions.
type canonicalBlock struct {
	Index        int64         `json:"index"`
	PreviousHash string        `json:"previous_hash"`
	Proof        int64         `json:"proof"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []canonicalTx `json:"transactions"`
}

// HashBlock computes the hex SHA-256 digest of a block's canonical JSON
// projection. The projection carries exactly index, previous_hash,
// timestamp, proof, and transactions — with each transaction reduced to
// sender, recipient, amount. Signatures are deliberately excluded: the
// chain of block hashes covers value transfer, not authorization: that is
// checked separately by internal/verify.
func HashBlock(b Block) (string, error) {
	view := canonicalBlock{
		Index:        b.Index,
		PreviousHash: b.PreviousHash,
		Proof:        b.Proof,
		Timestamp:    b.Timestamp,
		Transactions: make([]canonicalTx, len(b.Transactions)),
	}
	for i, tx := range b.Transactions {
		view.Transactions[i] = canonicalTx{Amount: tx.Amount, Recipient: tx.Recipient, Sender: tx.Sender}
	}
	encoded, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return HashString(encoded), nil
}
