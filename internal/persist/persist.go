// Package persist implements the on-disk snapshot format: a plain-text
// file, exactly three lines — a JSON array of blocks, a JSON array of open
// transactions, and a JSON array of peer URL strings.
//
// Adapted from internal/state in the node this package's repo grew out
// of, which held the same "load on start, persist on every mutation" shape
// for a UTXO set; here the snapshot is a flat chain/pool/peers triple
// instead.
//
// Writes are whole-file overwrites: internal/blockchain holds its own lock
// around every Save call, so persist itself does no locking of its own.
package persist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tinychain/tinychain/internal/core"
	internalerrors "github.com/tinychain/tinychain/internal/errors"
)

// Snapshot is the full persisted state of one node.
type Snapshot struct {
	Chain []core.Block
	Pool  []core.Transaction
	Peers []string
}

// FileName returns the snapshot file name for a node id (the listening
// port), e.g. "blockchain-5001.txt".
func FileName(nodeID string) string {
	return fmt.Sprintf("blockchain-%s.txt", nodeID)
}

// Save overwrites the snapshot file for nodeID with the current chain,
// pool, and peer set. A failure here is logged by the caller and does not
// roll back any in-memory state — the in-memory state remains
// authoritative until the next successful Save reconciles the file.
func Save(nodeID string, snap Snapshot) error {
	chainJSON, err := json.Marshal(snap.Chain)
	if err != nil {
		return fmt.Errorf("%w: encode chain: %v", internalerrors.ErrSnapshotSave, err)
	}
	poolJSON, err := json.Marshal(snap.Pool)
	if err != nil {
		return fmt.Errorf("%w: encode pool: %v", internalerrors.ErrSnapshotSave, err)
	}
	peersJSON, err := json.Marshal(snap.Peers)
	if err != nil {
		return fmt.Errorf("%w: encode peers: %v", internalerrors.ErrSnapshotSave, err)
	}

	f, err := os.Create(FileName(nodeID))
	if err != nil {
		return fmt.Errorf("%w: %v", internalerrors.ErrSnapshotSave, err)
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	for _, line := range [][]byte{chainJSON, poolJSON, peersJSON} {
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("%w: %v", internalerrors.ErrSnapshotSave, err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("%w: %v", internalerrors.ErrSnapshotSave, err)
		}
	}
	return writer.Flush()
}

// Load reads and parses the three-line snapshot file for nodeID. A failed
// load (missing file, malformed JSON, fewer than three lines) leaves the caller's
// freshly-constructed in-memory state untouched — load failure is not
// fatal — a node starts from genesis either way.
func Load(nodeID string) (Snapshot, error) {
	f, err := os.Open(FileName(nodeID))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", internalerrors.ErrSnapshotLoad, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", internalerrors.ErrSnapshotLoad, err)
	}
	if len(lines) < 3 {
		return Snapshot{}, fmt.Errorf("%w: expected 3 lines, got %d", internalerrors.ErrSnapshotLoad, len(lines))
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(lines[0]), &snap.Chain); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode chain: %v", internalerrors.ErrSnapshotLoad, err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &snap.Pool); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode pool: %v", internalerrors.ErrSnapshotLoad, err)
	}
	if err := json.Unmarshal([]byte(lines[2]), &snap.Peers); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode peers: %v", internalerrors.ErrSnapshotLoad, err)
	}
	return snap, nil
}
