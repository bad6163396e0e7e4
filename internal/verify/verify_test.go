package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinychain/tinychain/internal/core"
	"github.com/tinychain/tinychain/internal/wallet"
)

func zeroBalance(string) float64 { return 0 }

func TestProofTextMatchesInsertionOrder(t *testing.T) {
	txs := []core.Transaction{core.NewTransaction("alice", "bob", "sig", 2.5)}
	text := ProofText(txs, "lasthash", 7)
	assert.Equal(t, "[OrderedDict([('sender', 'alice'), ('recipient', 'bob'), ('amount', 2.5)])]lasthash7", text)
}

func TestProofTextEscapesSingleQuotes(t *testing.T) {
	txs := []core.Transaction{core.NewTransaction("ali'ce", "bob", "sig", 1)}
	text := ProofText(txs, "h", 0)
	assert.Contains(t, text, `'ali\'ce'`)
}

func TestValidProofFindsWorkingNonce(t *testing.T) {
	txs := []core.Transaction{core.NewTransaction("alice", "bob", "sig", 1)}
	var proof int64
	for !ValidProof(txs, "genesis-hash", proof) {
		proof++
	}
	assert.True(t, ValidProof(txs, "genesis-hash", proof))
}

func TestVerifyChainGenesisOnly(t *testing.T) {
	assert.True(t, VerifyChain([]core.Block{core.Genesis()}))
}

func TestVerifyChainDetectsBrokenParentHash(t *testing.T) {
	genesis := core.Genesis()
	bogus := core.NewBlock(1, "not-the-real-hash", nil, 0, 1)
	assert.False(t, VerifyChain([]core.Block{genesis, bogus}))
}

func TestVerifyChainValidSecondBlock(t *testing.T) {
	genesis := core.Genesis()
	lastHash, err := core.HashBlock(genesis)
	require.NoError(t, err)

	var proof int64
	for !ValidProof(nil, lastHash, proof) {
		proof++
	}
	next := core.NewBlock(1, lastHash, []core.Transaction{}, proof, 1)
	assert.True(t, VerifyChain([]core.Block{genesis, next}))
}

func TestVerifyTransactionRewardAlwaysPasses(t *testing.T) {
	reward := core.NewRewardTransaction("miner")
	assert.True(t, VerifyTransaction(reward, zeroBalance, true))
}

func TestVerifyTransactionRejectsBadSignature(t *testing.T) {
	w, err := wallet.CreateKeys()
	require.NoError(t, err)
	tx := core.NewTransaction(w.PublicKey, "bob", "not-a-real-signature", 1)
	assert.False(t, VerifyTransaction(tx, zeroBalance, false))
}

func TestVerifyTransactionChecksFunds(t *testing.T) {
	w, err := wallet.CreateKeys()
	require.NoError(t, err)
	sig, err := w.SignTransaction(w.PublicKey, "bob", 100)
	require.NoError(t, err)
	tx := core.NewTransaction(w.PublicKey, "bob", sig, 100)

	assert.False(t, VerifyTransaction(tx, zeroBalance, true), "zero balance cannot cover the amount")

	rich := func(string) float64 { return 1000 }
	assert.True(t, VerifyTransaction(tx, rich, true))
}

func TestVerifyTransactionsStopsAtFirstBadSignature(t *testing.T) {
	w, err := wallet.CreateKeys()
	require.NoError(t, err)
	good, err := w.SignTransaction(w.PublicKey, "bob", 1)
	require.NoError(t, err)

	pool := []core.Transaction{
		core.NewTransaction(w.PublicKey, "bob", good, 1),
		core.NewTransaction(w.PublicKey, "carol", "forged", 1),
	}
	assert.False(t, VerifyTransactions(pool, zeroBalance))
}
