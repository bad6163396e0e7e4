package wallet

import (
	"bufio"
	"fmt"
	"os"

	internalerrors "github.com/tinychain/tinychain/internal/errors"
)

// FileName returns the wallet file name for a given node id (the listening
// port), e.g. "wallet-5001.txt".
func FileName(nodeID string) string {
	return fmt.Sprintf("wallet-%s.txt", nodeID)
}

// SaveKeys writes the wallet's public and private keys, one hex string per
// line, public first, to wallet-<nodeID>.txt.
func (w *Wallet) SaveKeys(nodeID string) error {
	f, err := os.Create(FileName(nodeID))
	if err != nil {
		return fmt.Errorf("%w: %v", internalerrors.ErrWalletSave, err)
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(writer, w.PublicKey); err != nil {
		return fmt.Errorf("%w: %v", internalerrors.ErrWalletSave, err)
	}
	if _, err := fmt.Fprintln(writer, w.privateHex); err != nil {
		return fmt.Errorf("%w: %v", internalerrors.ErrWalletSave, err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("%w: %v", internalerrors.ErrWalletSave, err)
	}
	return nil
}

// LoadKeys reads wallet-<nodeID>.txt and reconstructs the Wallet from its
// two hex-encoded lines.
func LoadKeys(nodeID string) (*Wallet, error) {
	f, err := os.Open(FileName(nodeID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerrors.ErrWalletLoad, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerrors.ErrWalletLoad, err)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: expected 2 lines, got %d", internalerrors.ErrWalletLoad, len(lines))
	}
	return FromHexKeys(lines[0], lines[1])
}
