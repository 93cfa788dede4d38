// Package wallet provides key custody, address derivation, and a signing
// facade over the ECDSA support. A wallet never prints or serializes its
// private scalar unless the export is asked for explicitly.
package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/edublock/edublock/foundation/blockchain/curve"
	"github.com/edublock/edublock/foundation/blockchain/signature"
)

// AddressSize is the byte width of a wallet address: the leading bytes of a
// double SHA-256 over the serialized public point. This is a pedagogical
// stand-in for a real address scheme, not collision-hardened.
const AddressSize = 20

// Wallet holds a key pair and the address derived from it. The key pair is
// created once and is immutable for the life of the wallet.
type Wallet struct {
	privateKey *big.Int
	publicKey  curve.Point
	address    string
}

// New constructs a wallet with a freshly generated key pair.
func New() (*Wallet, error) {
	d, err := signature.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("new wallet: %w", err)
	}

	return fromPrivateKey(d), nil
}

// FromPrivateKeyHex reconstructs a wallet from an exported private scalar.
// Derivation is deterministic: the same scalar always yields the same public
// key and address.
func FromPrivateKeyHex(privateKeyHex string) (*Wallet, error) {
	d, err := signature.DecodeScalar(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("restore wallet: %w", err)
	}

	if d.Sign() <= 0 || d.Cmp(curve.N) >= 0 {
		return nil, fmt.Errorf("restore wallet: private key out of range")
	}

	return fromPrivateKey(d), nil
}

// FromJSON reconstructs a wallet from the export format produced by
// ExportJSON.
func FromJSON(data []byte) (*Wallet, error) {
	var export struct {
		PrivateKey string `json:"private_key"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("restore wallet: %w", err)
	}

	return FromPrivateKeyHex(export.PrivateKey)
}

// fromPrivateKey derives the public point and address for the scalar.
func fromPrivateKey(d *big.Int) *Wallet {
	pub := signature.PublicKey(d)

	return &Wallet{
		privateKey: d,
		publicKey:  pub,
		address:    DeriveAddress(pub),
	}
}

// =============================================================================

// Address returns the wallet address.
func (w *Wallet) Address() string {
	return w.address
}

// PublicKey returns the public point.
func (w *Wallet) PublicKey() curve.Point {
	return w.publicKey
}

// PublicKeyHex returns the public key in its X||Y wire encoding.
func (w *Wallet) PublicKeyHex() string {
	return signature.EncodePublicKey(w.publicKey)
}

// PrivateKeyHex returns the private scalar in its fixed-width encoding.
// Handle with care.
func (w *Wallet) PrivateKeyHex() string {
	return signature.EncodeScalar(w.privateKey)
}

// Sign signs the message and returns the raw (r, s) pair.
func (w *Wallet) Sign(message string) (r, s *big.Int, err error) {
	if w.privateKey == nil {
		return nil, nil, fmt.Errorf("sign: private key has been zeroed")
	}
	return signature.Sign(w.privateKey, message)
}

// SignHex signs the message and returns the signature in its r||s wire
// encoding.
func (w *Wallet) SignHex(message string) (string, error) {
	r, s, err := w.Sign(message)
	if err != nil {
		return "", err
	}
	return signature.EncodeSignature(r, s), nil
}

// Verify checks a raw (r, s) signature against a public point.
func Verify(pub curve.Point, message string, r, s *big.Int) bool {
	return signature.Verify(pub, message, r, s)
}

// VerifyHex checks a wire-encoded signature against a wire-encoded public
// key. Malformed encodings verify as false.
func VerifyHex(publicKeyHex string, message string, signatureHex string) bool {
	pub, err := signature.DecodePublicKey(publicKeyHex)
	if err != nil {
		return false
	}

	r, s, err := signature.DecodeSignature(signatureHex)
	if err != nil {
		return false
	}

	return signature.Verify(pub, message, r, s)
}

// ExportJSON serializes only the private scalar. Reconstructing a wallet
// from this export reproduces an identical public key and address.
func (w *Wallet) ExportJSON() ([]byte, error) {
	export := struct {
		PrivateKey string `json:"private_key"`
	}{
		PrivateKey: w.PrivateKeyHex(),
	}

	return json.Marshal(export)
}

// Zero scrubs the private scalar. The wallet cannot sign afterwards.
func (w *Wallet) Zero() {
	if w.privateKey != nil {
		w.privateKey.SetInt64(0)
	}
	w.privateKey = nil
}

// String implements fmt.Stringer without leaking key material.
func (w *Wallet) String() string {
	return fmt.Sprintf("wallet[%s]", w.address)
}

// =============================================================================

// DeriveAddress computes the address for a public point:
// sha256(sha256(X||Y)) truncated to AddressSize bytes, hex encoded.
func DeriveAddress(pub curve.Point) string {
	serialized := append(
		pub.X.FillBytes(make([]byte, signature.ScalarSize)),
		pub.Y.FillBytes(make([]byte, signature.ScalarSize))...,
	)

	first := sha256.Sum256(serialized)
	second := sha256.Sum256(first[:])

	return hex.EncodeToString(second[:AddressSize])
}
