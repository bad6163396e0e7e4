// Package blockchain is the engine at the center of tinychain: it owns the
// chain, the open-transaction pool, the peer set, the resolve-flag, and the
// on-disk snapshot, and exposes the handful of operations (admit, mine,
// adopt a broadcast block, resolve conflicts, query balance, mutate peers)
// that the HTTP facade in internal/rpc translates requests into.
//
// All operations run under a single mutex: no caller observes a partial
// mutation of chain, pool, peer set, or resolve-flag. The locking idiom —
// a sync.Mutex with non-locking *Locked helper methods for reuse between
// exported entry points — mirrors the engine this package grew out of,
// which guarded its in-memory block list the same way with a
// sync.RWMutex. Outbound I/O (broadcast, peer chain fetches) releases the
// lock first and re-validates afterward where a race would otherwise be
// observable.
package blockchain

import (
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/tinychain/tinychain/internal/broadcast"
	"github.com/tinychain/tinychain/internal/core"
	"github.com/tinychain/tinychain/internal/persist"
	"github.com/tinychain/tinychain/internal/verify"
	"github.com/tinychain/tinychain/internal/wallet"
)

var logger = log.New(os.Stdout, "[blockchain] ", log.LstdFlags)

// MineOutcome distinguishes why MineBlock did or did not produce a block,
// so the HTTP facade can pick the right status code (409 resolve
// pending, 500 mine failed).
type MineOutcome int

const (
	MineOK MineOutcome = iota
	MineNoWallet
	MineResolvePending
	MineFailed
)

// BlockOutcome is the result of offering an inbound block to the chain via
// AddBlock, matching the receive-path state machine.
type BlockOutcome int

const (
	BlockRejected BlockOutcome = iota
	BlockAppended
	BlockDeferred
)

// Blockchain is one node's view of the world: its chain, its pool of
// admitted-but-unconfirmed transactions, its peer set, and whether it
// currently suspects a peer holds a longer chain.
type Blockchain struct {
	mu          sync.Mutex
	nodeID      string
	chain       []core.Block
	pool        []core.Transaction
	peers       map[string]struct{}
	resolveFlag bool
	wallet      *wallet.Wallet
	broadcaster *broadcast.Broadcaster
}

// New constructs the engine for nodeID. Genesis is built first; if a
// snapshot already exists on disk, it atomically replaces the fresh state.
// A failed load leaves the fresh genesis-only state in place — never
// fatal — a node starts from genesis either way.
func New(nodeID string, w *wallet.Wallet, b *broadcast.Broadcaster) *Blockchain {
	bc := &Blockchain{
		nodeID:      nodeID,
		chain:       []core.Block{core.Genesis()},
		peers:       make(map[string]struct{}),
		wallet:      w,
		broadcaster: b,
	}
	snap, err := persist.Load(nodeID)
	if err != nil {
		logger.Printf("node %s: no usable snapshot on disk, starting from genesis: %v", nodeID, err)
		return bc
	}
	bc.chain = snap.Chain
	bc.pool = snap.Pool
	for _, peer := range snap.Peers {
		bc.peers[peer] = struct{}{}
	}
	logger.Printf("node %s: loaded snapshot, chain height %d, pool size %d, %d peers", nodeID, len(bc.chain)-1, len(bc.pool), len(bc.peers))
	return bc
}

// LocalPublicKey returns the node's own public key, or ok=false if the
// node has no wallet loaded.
func (bc *Blockchain) LocalPublicKey() (key string, ok bool) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if bc.wallet == nil {
		return "", false
	}
	return bc.wallet.PublicKey, true
}

// SetWallet installs w as the node's wallet, so a node started keyless can
// still mine once the HTTP facade creates or loads one after startup.
func (bc *Blockchain) SetWallet(w *wallet.Wallet) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.wallet = w
}

// Chain returns a copy of the current chain, safe for a caller to hold
// after the lock is released.
func (bc *Blockchain) Chain() []core.Block {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	out := make([]core.Block, len(bc.chain))
	copy(out, bc.chain)
	return out
}

// Pool returns a copy of the open-transaction pool in insertion order.
func (bc *Blockchain) Pool() []core.Transaction {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	out := make([]core.Transaction, len(bc.pool))
	copy(out, bc.pool)
	return out
}

// Peers returns the peer set as a sorted slice.
func (bc *Blockchain) Peers() []string {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.peersLocked()
}

func (bc *Blockchain) peersLocked() []string {
	out := make([]string, 0, len(bc.peers))
	for p := range bc.peers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ResolvePending reports whether the resolve-flag is currently set, which
// gates mining.
func (bc *Blockchain) ResolvePending() bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.resolveFlag
}

func (bc *Blockchain) tipLocked() core.Block {
	return bc.chain[len(bc.chain)-1]
}

// balanceLocked implements the balance formula: received (from
// confirmed blocks only) minus sent (confirmed blocks plus pool entries —
// a pending send already counts against the sender so a second pending
// send can't double-spend the same coins).
func (bc *Blockchain) balanceLocked(participant string) float64 {
	var sent, received float64
	for _, block := range bc.chain {
		for _, tx := range block.Transactions {
			if tx.Sender == participant {
				sent += tx.Amount
			}
			if tx.Recipient == participant {
				received += tx.Amount
			}
		}
	}
	for _, tx := range bc.pool {
		if tx.Sender == participant {
			sent += tx.Amount
		}
	}
	return received - sent
}

// GetBalance returns participant's current balance.
func (bc *Blockchain) GetBalance(participant string) float64 {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.balanceLocked(participant)
}

func (bc *Blockchain) persistLocked() error {
	return persist.Save(bc.nodeID, persist.Snapshot{
		Chain: bc.chain,
		Pool:  bc.pool,
		Peers: bc.peersLocked(),
	})
}

// AddTransaction builds, verifies, and (on success) admits a transaction
// into the pool: signature and funds are
// checked before admission; the pool is persisted; and unless isReceiving
// (this call originated from another node's own broadcast), the
// transaction is re-broadcast to every peer.
func (bc *Blockchain) AddTransaction(sender, recipient, signature string, amount float64, isReceiving bool) bool {
	tx := core.NewTransaction(sender, recipient, signature, amount)

	bc.mu.Lock()
	if !verify.VerifyTransaction(tx, bc.balanceLocked, true) {
		bc.mu.Unlock()
		return false
	}
	bc.pool = append(bc.pool, tx)
	if err := bc.persistLocked(); err != nil {
		logger.Printf("node %s: failed to persist after admitting transaction: %v", bc.nodeID, err)
	}
	peers := bc.peersLocked()
	bc.mu.Unlock()

	if !isReceiving {
		bc.broadcaster.Transaction(peers, tx)
	}
	return true
}

func proofOfWork(transactions []core.Transaction, lastHash string) int64 {
	var proof int64
	for !verify.ValidProof(transactions, lastHash, proof) {
		proof++
	}
	return proof
}

// MineBlock attempts to mine a new block from the current pool. Mining is
// refused outright when there is no wallet or a resolution is already
// pending. The pool snapshot is signature-checked before any work is
// done; on failure the pool is left untouched. The reward transaction is
// appended only after proof-of-work is found, and is excluded from the
// proof-of-work input itself.
func (bc *Blockchain) MineBlock() (*core.Block, MineOutcome) {
	bc.mu.Lock()
	if bc.wallet == nil {
		bc.mu.Unlock()
		return nil, MineNoWallet
	}
	if bc.resolveFlag {
		bc.mu.Unlock()
		return nil, MineResolvePending
	}

	poolSnapshot := make([]core.Transaction, len(bc.pool))
	copy(poolSnapshot, bc.pool)
	if !verify.VerifyTransactions(poolSnapshot, bc.balanceLocked) {
		bc.mu.Unlock()
		return nil, MineFailed
	}

	lastHash, err := core.HashBlock(bc.tipLocked())
	if err != nil {
		bc.mu.Unlock()
		logger.Printf("node %s: failed to hash tip while mining: %v", bc.nodeID, err)
		return nil, MineFailed
	}
	proof := proofOfWork(poolSnapshot, lastHash)

	reward := core.NewRewardTransaction(bc.wallet.PublicKey)
	blockTxs := make([]core.Transaction, len(poolSnapshot)+1)
	copy(blockTxs, poolSnapshot)
	blockTxs[len(poolSnapshot)] = reward

	block := core.NewBlock(int64(len(bc.chain)), lastHash, blockTxs, proof, time.Now().Unix())
	bc.chain = append(bc.chain, block)
	bc.pool = nil

	if err := bc.persistLocked(); err != nil {
		logger.Printf("node %s: failed to persist after mining: %v", bc.nodeID, err)
	}
	peers := bc.peersLocked()
	bc.mu.Unlock()

	if bc.broadcaster.Block(peers, block) {
		bc.mu.Lock()
		bc.resolveFlag = true
		bc.mu.Unlock()
	}

	return &block, MineOK
}

// AddBlock offers an inbound block (mined or broadcast by a peer) to the
// chain, implementing the receive-path state machine: appended
// when it extends the local tip with a valid proof and parent hash,
// deferred (and resolve-flag raised) when its index is further ahead than
// that, rejected otherwise.
func (bc *Blockchain) AddBlock(block core.Block) BlockOutcome {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	tipIndex := bc.tipLocked().Index
	if block.Index <= tipIndex {
		return BlockRejected
	}
	if block.Index > tipIndex+1 {
		bc.resolveFlag = true
		return BlockDeferred
	}

	if !verify.ValidProof(block.NonRewardTransactions(), block.PreviousHash, block.Proof) {
		return BlockRejected
	}
	tipHash, err := core.HashBlock(bc.tipLocked())
	if err != nil || block.PreviousHash != tipHash {
		return BlockRejected
	}

	bc.chain = append(bc.chain, block)
	bc.removeConfirmedLocked(block.Transactions)
	if err := bc.persistLocked(); err != nil {
		logger.Printf("node %s: failed to persist after appending broadcast block: %v", bc.nodeID, err)
	}
	return BlockAppended
}

// removeConfirmedLocked drops every pool entry whose (sender, recipient,
// amount, signature) tuple matches one of included. Absent entries are
// tolerated — a transaction may have been confirmed by a block before this
// node ever saw it broadcast.
func (bc *Blockchain) removeConfirmedLocked(included []core.Transaction) {
	if len(bc.pool) == 0 {
		return
	}
	remaining := make([]core.Transaction, 0, len(bc.pool))
	for _, pending := range bc.pool {
		confirmed := false
		for _, done := range included {
			if pending.Matches(done) {
				confirmed = true
				break
			}
		}
		if !confirmed {
			remaining = append(remaining, pending)
		}
	}
	bc.pool = remaining
}

// Resolve pulls every peer's chain, adopts the longest one that also
// passes VerifyChain, and clears the resolve-flag regardless of outcome —
// a completed resolution attempt always clears it. The pool is
// only emptied when a peer's chain was actually adopted, since the peer
// may have already mined transactions this node still held open.
func (bc *Blockchain) Resolve() bool {
	bc.mu.Lock()
	peers := bc.peersLocked()
	winner := make([]core.Block, len(bc.chain))
	copy(winner, bc.chain)
	bc.mu.Unlock()

	replaced := false
	for _, peer := range peers {
		remote, err := bc.broadcaster.FetchChain(peer)
		if err != nil {
			logger.Printf("node %s: could not fetch chain from peer %s: %v", bc.nodeID, peer, err)
			continue
		}
		if len(remote) > len(winner) && verify.VerifyChain(remote) {
			winner = remote
			replaced = true
		}
	}

	bc.mu.Lock()
	bc.resolveFlag = false
	// The local chain may have grown while the lock was released for the
	// fetches; a peer chain is adopted only if it is still strictly longer.
	if replaced && len(winner) > len(bc.chain) {
		bc.chain = winner
		bc.pool = nil
	} else {
		replaced = false
	}
	if err := bc.persistLocked(); err != nil {
		logger.Printf("node %s: failed to persist after resolve: %v", bc.nodeID, err)
	}
	bc.mu.Unlock()

	return replaced
}

// AddPeer inserts url into the peer set. Set semantics: re-adding an
// existing peer is a no-op.
func (bc *Blockchain) AddPeer(url string) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.peers[url] = struct{}{}
	return bc.persistLocked()
}

// RemovePeer deletes url from the peer set, tolerating absence.
func (bc *Blockchain) RemovePeer(url string) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	delete(bc.peers, url)
	return bc.persistLocked()
}
