// Package signature provides the ECDSA key generation, signing, and
// verification support for the blockchain, along with the fixed-width hex
// encodings used at the wire boundary.
package signature

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/edublock/edublock/foundation/blockchain/curve"
)

// ScalarSize is the byte width of an encoded scalar. Scalars travel as
// fixed-width big-endian hex (64 characters) so concatenated values are
// unambiguous: a public key is X||Y (128 characters) and a signature is
// r||s (128 characters).
const ScalarSize = 32

var one = big.NewInt(1)

// GeneratePrivateKey returns a random scalar in [1, N-1] suitable for use
// as an ECDSA private key.
func GeneratePrivateKey() (*big.Int, error) {
	max := new(big.Int).Sub(curve.N, one)

	k, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return k.Add(k, one), nil
}

// PublicKey derives the public point d*G for the specified private scalar.
func PublicKey(d *big.Int) curve.Point {
	return curve.ScalarMult(d, curve.G())
}

// HashMessage reduces a message to an integer via SHA-256.
func HashMessage(message string) *big.Int {
	hash := sha256.Sum256([]byte(message))
	return new(big.Int).SetBytes(hash[:])
}

// Sign produces an ECDSA signature (r, s) for the message using the private
// scalar d. The r==0 and s==0 retry loop is part of the algorithm, not an
// error path: such signatures are invalid and must be redrawn with fresh
// randomness.
func Sign(d *big.Int, message string) (r, s *big.Int, err error) {
	z := HashMessage(message)
	z.Mod(z, curve.N)

	for {
		k, err := GeneratePrivateKey()
		if err != nil {
			return nil, nil, err
		}

		// R = k*G, r = R.x mod n
		R := curve.ScalarMult(k, curve.G())
		r = new(big.Int).Mod(R.X, curve.N)
		if r.Sign() == 0 {
			continue
		}

		// s = k^-1 * (z + r*d) mod n
		s = new(big.Int).Mul(r, d)
		s.Add(s, z)
		s.Mul(s, curve.ModInverse(k, curve.N))
		s.Mod(s, curve.N)
		if s.Sign() == 0 {
			continue
		}

		return r, s, nil
	}
}

// Verify reports whether (r, s) is a valid signature over the message for
// the public point. Verification failures are a boolean result, never an
// error or panic.
func Verify(pub curve.Point, message string, r, s *big.Int) bool {
	if !inScalarRange(r) || !inScalarRange(s) {
		return false
	}

	z := HashMessage(message)
	z.Mod(z, curve.N)

	sInv := curve.ModInverse(s, curve.N)

	u1 := new(big.Int).Mul(z, sInv)
	u1.Mod(u1, curve.N)

	u2 := new(big.Int).Mul(r, sInv)
	u2.Mod(u2, curve.N)

	// P = u1*G + u2*Q
	p := curve.Add(curve.ScalarMult(u1, curve.G()), curve.ScalarMult(u2, pub))
	if p.IsInfinity() {
		return false
	}

	return new(big.Int).Mod(p.X, curve.N).Cmp(r) == 0
}

// inScalarRange checks a signature component is in [1, N-1].
func inScalarRange(v *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(curve.N) < 0
}

// =============================================================================

// EncodeScalar renders a scalar as 64 hex characters, big-endian,
// zero-padded on the left.
func EncodeScalar(v *big.Int) string {
	return hex.EncodeToString(v.FillBytes(make([]byte, ScalarSize)))
}

// DecodeScalar parses a fixed-width scalar encoding.
func DecodeScalar(s string) (*big.Int, error) {
	if len(s) != ScalarSize*2 {
		return nil, fmt.Errorf("scalar must be %d hex characters, got %d", ScalarSize*2, len(s))
	}

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding scalar: %w", err)
	}

	return new(big.Int).SetBytes(data), nil
}

// EncodePublicKey renders a public point as X||Y, 128 hex characters.
func EncodePublicKey(pub curve.Point) string {
	return EncodeScalar(pub.X) + EncodeScalar(pub.Y)
}

// DecodePublicKey parses an X||Y public key encoding. The point is checked
// to be on the curve since it arrives from the outside world.
func DecodePublicKey(s string) (curve.Point, error) {
	if len(s) != ScalarSize*4 {
		return curve.Point{}, fmt.Errorf("public key must be %d hex characters, got %d", ScalarSize*4, len(s))
	}

	x, err := DecodeScalar(s[:ScalarSize*2])
	if err != nil {
		return curve.Point{}, err
	}

	y, err := DecodeScalar(s[ScalarSize*2:])
	if err != nil {
		return curve.Point{}, err
	}

	pub := curve.Point{X: x, Y: y}
	if !pub.IsOnCurve() {
		return curve.Point{}, fmt.Errorf("public key point is not on the curve")
	}

	return pub, nil
}

// EncodeSignature renders a signature as r||s, 128 hex characters.
func EncodeSignature(r, s *big.Int) string {
	return EncodeScalar(r) + EncodeScalar(s)
}

// DecodeSignature parses an r||s signature encoding.
func DecodeSignature(sig string) (r, s *big.Int, err error) {
	if len(sig) != ScalarSize*4 {
		return nil, nil, fmt.Errorf("signature must be %d hex characters, got %d", ScalarSize*4, len(sig))
	}

	if r, err = DecodeScalar(sig[:ScalarSize*2]); err != nil {
		return nil, nil, err
	}

	if s, err = DecodeScalar(sig[ScalarSize*2:]); err != nil {
		return nil, nil, err
	}

	return r, s, nil
}
