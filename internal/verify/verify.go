// Package verify holds the pure predicates the rest of tinychain is built
// around: ValidProof (proof-of-work), VerifyChain (block-to-block
// integrity), VerifyTransaction (signature and, optionally, funds), and
// VerifyTransactions (pool-wide signature sweep). None of these mutate
// anything or hold state; internal/blockchain is the only caller that
// translates a predicate result into a state change.
package verify

import (
	"strconv"
	"strings"

	"github.com/tinychain/tinychain/internal/core"
	"github.com/tinychain/tinychain/internal/wallet"
)

// Difficulty is the required hex prefix on the proof-of-work digest. Fixed
// at two leading zero hex digits, giving an expected ~256 tries per block.
const Difficulty = "00"

// ProofText reconstructs the exact textual input the reference
// implementation hashes inside valid_proof:
// str([tx.to_ordered_dict() for tx in transactions]) + str(last_hash) +
// str(proof). Each transaction's to_ordered_dict() returns a
// collections.OrderedDict, whose repr wraps the insertion-ordered
// (sender, recipient, amount) pairs as
// OrderedDict([('sender', ...), ('recipient', ...), ('amount', ...)]) —
// not a plain dict literal. Two nodes that disagree on this text can never
// cross-verify each other's proofs, so this function is the single place
// that textual form is produced.
func ProofText(transactions []core.Transaction, lastHash string, proof int64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, tx := range transactions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("OrderedDict([('sender', ")
		b.WriteString(pyStr(tx.Sender))
		b.WriteString("), ('recipient', ")
		b.WriteString(pyStr(tx.Recipient))
		b.WriteString("), ('amount', ")
		b.WriteString(core.FormatPythonFloat(tx.Amount))
		b.WriteString(")])")
	}
	b.WriteByte(']')
	b.WriteString(lastHash)
	b.WriteString(strconv.FormatInt(proof, 10))
	return b.String()
}

// pyStr renders s single-quoted, with backslashes and embedded single
// quotes escaped. For strings with no quote, backslash or control
// character this is exactly Python's repr(); for a string containing a
// single quote but no double quote, repr() would switch to double quotes
// instead, and control characters are not escaped here. tinychain's sender
// and recipient values are hex digests or the MINING sentinel, which
// contain none of these characters.
func pyStr(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// ValidProof reports whether proof solves the puzzle for transactions
// (reward excluded by the caller) chained onto lastHash: the hex SHA-256 of
// ProofText must start with Difficulty.
func ValidProof(transactions []core.Transaction, lastHash string, proof int64) bool {
	digest := core.HashString([]byte(ProofText(transactions, lastHash, proof)))
	return strings.HasPrefix(digest, Difficulty)
}

// VerifyChain checks that every non-genesis block in chain correctly
// references its predecessor's hash and carries a valid proof-of-work over
// its non-reward transactions. An empty or single-block chain is
// trivially valid.
func VerifyChain(chain []core.Block) bool {
	for i, block := range chain {
		if i == 0 {
			continue
		}
		prevHash, err := core.HashBlock(chain[i-1])
		if err != nil {
			return false
		}
		if block.PreviousHash != prevHash {
			return false
		}
		if !ValidProof(block.NonRewardTransactions(), block.PreviousHash, block.Proof) {
			return false
		}
	}
	return true
}

// BalanceFunc resolves a participant's current balance. It exists as a
// function type, rather than a concrete dependency on *blockchain.Blockchain,
// so that verify stays free of a dependency cycle with the engine package
// that calls into it.
type BalanceFunc func(participant string) float64

// VerifyTransaction checks a transaction's signature and, when checkFunds
// is true, that the sender's current balance covers the amount. A
// mining-reward transaction (core.Transaction.IsReward) always verifies: it
// carries no signature by protocol contract and is never funds-checked.
func VerifyTransaction(tx core.Transaction, getBalance BalanceFunc, checkFunds bool) bool {
	if tx.IsReward() {
		return true
	}
	if tx.Amount < 0 {
		return false
	}
	if !wallet.VerifySignature(tx.Sender, tx.Recipient, tx.Amount, tx.Signature) {
		return false
	}
	if checkFunds && getBalance(tx.Sender) < tx.Amount {
		return false
	}
	return true
}

// VerifyTransactions runs a signature-only check (no funds check) over
// every entry in pool. Used to catch a pool gone stale against another
// node's view of the world before mining includes it in a block.
func VerifyTransactions(pool []core.Transaction, getBalance BalanceFunc) bool {
	for _, tx := range pool {
		if !VerifyTransaction(tx, getBalance, false) {
			return false
		}
	}
	return true
}
