// Package internalerrors declares tinychain's sentinel errors, grouped by
// concern, wrapped with fmt.Errorf("...: %w", ...) at the call sites that
// produce them. Validation failures (bad signature, insufficient funds,
// bad proof-of-work, parent-hash mismatch) are deliberately reported as a
// plain boolean by internal/verify and internal/blockchain rather than as
// an error value — they are routine, expected outcomes of untrusted input,
// not failures of the node itself — so this package only covers the paths
// where something has actually gone wrong locally: snapshot and wallet
// persistence, and the RSA signing call itself.
package internalerrors

import "errors"

// Persistence errors
var (
	ErrSnapshotLoad = errors.New("failed to load blockchain snapshot from disk")
	ErrSnapshotSave = errors.New("failed to persist blockchain snapshot to disk")
	ErrWalletLoad   = errors.New("failed to load wallet keys from disk")
	ErrWalletSave   = errors.New("failed to save wallet keys to disk")
)

// ErrInvalidSignature wraps a signing failure in internal/wallet: the RSA
// signing call itself returning an error, as opposed to a signature that
// later fails verification (which is reported as a plain bool).
var ErrInvalidSignature = errors.New("failed to produce a transaction signature")
