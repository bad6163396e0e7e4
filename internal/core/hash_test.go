package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashStringIsHexSHA256(t *testing.T) {
	got := HashString([]byte("tinychain"))
	assert.Len(t, got, 64)
	assert.Equal(t, got, HashString([]byte("tinychain")), "hashing the same bytes twice must be stable")
	assert.NotEqual(t, got, HashString([]byte("tinychain2")))
}

func TestHashBlockExcludesSignature(t *testing.T) {
	withSig := Block{
		Index:        1,
		PreviousHash: "abc",
		Timestamp:    100,
		Proof:        42,
		Transactions: []Transaction{{Sender: "s", Recipient: "r", Amount: 5, Signature: "deadbeef"}},
	}
	withoutSig := withSig
	withoutSig.Transactions = []Transaction{{Sender: "s", Recipient: "r", Amount: 5, Signature: ""}}

	h1, err := HashBlock(withSig)
	require.NoError(t, err)
	h2, err := HashBlock(withoutSig)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "signature must not affect the block hash")
}

func TestHashBlockIsDeterministic(t *testing.T) {
	b := Block{
		Index:        2,
		PreviousHash: "xyz",
		Timestamp:    200,
		Proof:        7,
		Transactions: []Transaction{
			{Sender: "alice", Recipient: "bob", Amount: 1.5},
			{Sender: "bob", Recipient: "carol", Amount: 2},
		},
	}
	h1, err := HashBlock(b)
	require.NoError(t, err)
	h2, err := HashBlock(b)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHashBlockDiffersOnAmountChange(t *testing.T) {
	base := Block{Index: 1, PreviousHash: "p", Timestamp: 1, Proof: 1, Transactions: []Transaction{{Sender: "a", Recipient: "b", Amount: 1}}}
	changed := base
	changed.Transactions = []Transaction{{Sender: "a", Recipient: "b", Amount: 2}}

	h1, err := HashBlock(base)
	require.NoError(t, err)
	h2, err := HashBlock(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
