// Package wallet contains the core logic for a tinychain wallet: RSA
// keypair generation, hex (DER) key serialization, detached signatures over
// a transaction's (sender, recipient, amount) tuple, and a standalone
// signature verifier usable without an in-memory Wallet instance.
//
// Rationale for RSA-1024: inherited from the reference implementation this
// protocol is modeled on; weak by modern standards, but the wire format
// only cares that sender/recipient/signature are hex strings, so any
// keypair scheme producing hex-encoded public keys and hex signatures can
// be substituted without touching the rest of the protocol.
package wallet

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"

	internalerrors "github.com/tinychain/tinychain/internal/errors"
)

const keyBits = 1024

// Wallet holds a node's signing keypair.
type Wallet struct {
	PrivateKey *rsa.PrivateKey
	PublicKey  string // hex-encoded DER of the public key
	privateHex string // hex-encoded DER of the private key, kept for SaveKeys
}

// CreateKeys generates a new RSA-1024 keypair and returns a Wallet holding
// it, hex-encoded in DER form.
func CreateKeys() (*Wallet, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	privDER := x509.MarshalPKCS1PrivateKey(priv)
	return &Wallet{
		PrivateKey: priv,
		PublicKey:  hex.EncodeToString(pubDER),
		privateHex: hex.EncodeToString(privDER),
	}, nil
}

// FromHexKeys reconstructs a Wallet from the two hex-encoded DER strings
// stored in a wallet file (public key line, then private key line).
func FromHexKeys(publicHex, privateHex string) (*Wallet, error) {
	privDER, err := hex.DecodeString(privateHex)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not valid hex", internalerrors.ErrWalletLoad)
	}
	priv, err := x509.ParsePKCS1PrivateKey(privDER)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerrors.ErrWalletLoad, err)
	}
	return &Wallet{
		PrivateKey: priv,
		PublicKey:  publicHex,
		privateHex: privateHex,
	}, nil
}

// PrivateKeyHex returns the hex-encoded DER private key, as written by
// SaveKeys.
func (w *Wallet) PrivateKeyHex() string {
	return w.privateHex
}

// digest computes the SHA-256 hash over the ASCII concatenation of sender,
// recipient, and amount, matching the reference implementation's
// str(sender)+str(recipient)+str(amount) byte-for-byte so that signatures
// cross-validate between nodes regardless of implementation language.
func digest(sender, recipient string, amount float64) [32]byte {
	text := sender + recipient + formatAmount(amount)
	return sha256.Sum256([]byte(text))
}

// SignTransaction signs the (sender, recipient, amount) tuple with this
// wallet's private key using PKCS#1 v1.5 over a SHA-256 digest, returning
// the hex-encoded signature.
func (w *Wallet) SignTransaction(sender, recipient string, amount float64) (string, error) {
	h := digest(sender, recipient, amount)
	sig, err := rsa.SignPKCS1v15(rand.Reader, w.PrivateKey, crypto.SHA256, h[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", internalerrors.ErrInvalidSignature, err)
	}
	return hex.EncodeToString(sig), nil
}

// VerifySignature reimports the public key from senderHex, recomputes the
// digest over (sender, recipient, amount), and verifies signatureHex
// against it. A sender equal to core.MiningSender never reaches this
// function in the normal admission path — callers branch on
// Transaction.IsReward first — but VerifySignature itself performs no such
// bypass, since a standalone signature check should never silently pass.
func VerifySignature(sender, recipient string, amount float64, signatureHex string) bool {
	pubDER, err := hex.DecodeString(sender)
	if err != nil {
		return false
	}
	pubAny, err := x509.ParsePKIXPublicKey(pubDER)
	if err != nil {
		return false
	}
	pub, ok := pubAny.(*rsa.PublicKey)
	if !ok {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	h := digest(sender, recipient, amount)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], sig) == nil
}
