// Package broadcast implements peer gossip: fire-and-forget POSTs of newly
// admitted transactions and newly mined blocks to every known peer, and
// pull-GETs of a peer's chain during conflict resolution. Every call is
// best-effort and sequential — a connection error to one peer never stops
// the others, and nothing is retried.
//
// Adapted from internal/network in the node this package's repo grew out
// of, which moved NetworkMessage values between in-process simulated peers
// over Go channels; tinychain's peers are separate processes reached over
// HTTP, so the channel plumbing is replaced with a net/http client, but the
// "one broadcast call fans out to every peer independently" shape is kept.
package broadcast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tinychain/tinychain/internal/core"
)

var logger = log.New(os.Stdout, "[broadcast] ", log.LstdFlags)

// Broadcaster fans transactions and blocks out to a node's peer set over
// plain HTTP, and pulls peer chains during resolution.
type Broadcaster struct {
	Client *http.Client
}

// New returns a Broadcaster with a bounded per-request timeout. Outbound
// HTTP has no cancellation contract of its own, but an unbounded client
// would let one unreachable peer stall every broadcast call indefinitely,
// which the "connection error is swallowed per-peer" contract does not
// intend.
func New() *Broadcaster {
	return &Broadcaster{Client: &http.Client{Timeout: 5 * time.Second}}
}

type transactionPayload struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Signature string  `json:"signature"`
}

type blockPayload struct {
	Block core.Block `json:"block"`
}

// Transaction POSTs tx to /broadcast-transaction on every peer. Network
// errors are logged and swallowed per peer; a peer-reported 4xx/5xx is
// logged but does not undo the local admission that triggered the
// broadcast.
func (b *Broadcaster) Transaction(peers []string, tx core.Transaction) {
	round := uuid.New().String()
	body, err := json.Marshal(transactionPayload{
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		Signature: tx.Signature,
	})
	if err != nil {
		logger.Printf("round %s: failed to encode transaction: %v", round, err)
		return
	}
	for _, peer := range peers {
		resp, err := b.Client.Post(fmt.Sprintf("http://%s/broadcast-transaction", peer), "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Printf("round %s: peer %s unreachable: %v", round, peer, err)
			continue
		}
		if resp.StatusCode >= 400 {
			logger.Printf("round %s: peer %s declined transaction: status %d", round, peer, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

// Block POSTs block to /broadcast-block on every peer. It reports whether
// any peer responded 409 Conflict, which the caller (internal/blockchain)
// uses to raise its resolve-flag: a 409 means that peer's tip has already
// diverged ahead of the block just mined.
func (b *Broadcaster) Block(peers []string, block core.Block) (anyConflict bool) {
	round := uuid.New().String()
	body, err := json.Marshal(blockPayload{Block: block})
	if err != nil {
		logger.Printf("round %s: failed to encode block: %v", round, err)
		return false
	}
	for _, peer := range peers {
		resp, err := b.Client.Post(fmt.Sprintf("http://%s/broadcast-block", peer), "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Printf("round %s: peer %s unreachable: %v", round, peer, err)
			continue
		}
		if resp.StatusCode == http.StatusConflict {
			anyConflict = true
		} else if resp.StatusCode >= 400 {
			logger.Printf("round %s: peer %s declined block: status %d", round, peer, resp.StatusCode)
		}
		resp.Body.Close()
	}
	return anyConflict
}

// FetchChain GETs /chain from peer and decodes the JSON block array.
// Connection errors are returned to the caller (internal/blockchain.Resolve),
// which skips the peer and continues with the rest of the peer set.
func (b *Broadcaster) FetchChain(peer string) ([]core.Block, error) {
	resp, err := b.Client.Get(fmt.Sprintf("http://%s/chain", peer))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("peer %s returned status %d", peer, resp.StatusCode)
	}
	var chain []core.Block
	if err := json.NewDecoder(resp.Body).Decode(&chain); err != nil {
		return nil, fmt.Errorf("peer %s returned malformed chain: %w", peer, err)
	}
	return chain, nil
}
