// Package curve implements the modular and point arithmetic for the
// secp256k1 elliptic curve. Everything is written against math/big on
// purpose: the arithmetic itself is the teaching material. None of it is
// constant-time and it must never guard real value.
package curve

import (
	"fmt"
	"math/big"
)

// Parameters for secp256k1: y^2 = x^3 + 7 over the prime field P, with
// group order N and generator (Gx, Gy).
var (
	P  = mustParseHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	N  = mustParseHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	Gx = mustParseHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	Gy = mustParseHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")
)

// b is the curve constant in y^2 = x^3 + b.
var b = big.NewInt(7)

// Point represents a point on the curve. A Point with nil coordinates is
// the point at infinity, the identity of the group.
type Point struct {
	X *big.Int
	Y *big.Int
}

// Infinity returns the point at infinity.
func Infinity() Point {
	return Point{}
}

// G returns a copy of the generator point.
func G() Point {
	return Point{X: new(big.Int).Set(Gx), Y: new(big.Int).Set(Gy)}
}

// IsInfinity reports whether the point is the point at infinity.
func (p Point) IsInfinity() bool {
	return p.X == nil && p.Y == nil
}

// Equal reports whether two points have the same coordinates.
func (p Point) Equal(q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Negate returns the additive inverse of the point, (x, -y mod P).
func Negate(p Point) Point {
	if p.IsInfinity() {
		return Infinity()
	}
	y := new(big.Int).Neg(p.Y)
	y.Mod(y, P)
	return Point{X: new(big.Int).Set(p.X), Y: y}
}

// IsOnCurve reports whether the point satisfies the curve equation. The
// arithmetic functions below trust their inputs; callers accepting points
// from the outside world run this check themselves.
func (p Point) IsOnCurve() bool {
	if p.IsInfinity() {
		return true
	}

	y2 := new(big.Int).Mul(p.Y, p.Y)
	y2.Mod(y2, P)

	x3 := new(big.Int).Mul(p.X, p.X)
	x3.Mul(x3, p.X)
	x3.Add(x3, b)
	x3.Mod(x3, P)

	return y2.Cmp(x3) == 0
}

// =============================================================================

// FieldAdd returns (a + b) mod P.
func FieldAdd(a, bb *big.Int) *big.Int {
	r := new(big.Int).Add(a, bb)
	return r.Mod(r, P)
}

// FieldMul returns (a * b) mod P.
func FieldMul(a, bb *big.Int) *big.Int {
	r := new(big.Int).Mul(a, bb)
	return r.Mod(r, P)
}

// ModInverse returns the multiplicative inverse of a modulo m using the
// iterative extended Euclidean algorithm. The inverse only exists when
// gcd(a, m) == 1; anything else means a key generation or arithmetic defect
// upstream, so the function panics rather than returning an error.
func ModInverse(a, m *big.Int) *big.Int {
	r0 := new(big.Int).Mod(a, m)
	r1 := new(big.Int).Set(m)
	s0 := big.NewInt(1)
	s1 := big.NewInt(0)

	for r1.Sign() != 0 {
		q := new(big.Int).Div(r0, r1)

		t := new(big.Int).Sub(r0, new(big.Int).Mul(q, r1))
		r0, r1 = r1, t

		t = new(big.Int).Sub(s0, new(big.Int).Mul(q, s1))
		s0, s1 = s1, t
	}

	if r0.Cmp(big.NewInt(1)) != 0 {
		panic(fmt.Sprintf("curve: no modular inverse for %s mod %s", a, m))
	}

	return s0.Mod(s0, m)
}

// =============================================================================

// Add performs elliptic curve point addition. The identity is absorbed,
// mutual inverses cancel to infinity, and equal points are doubled. Both
// inputs are trusted to be on the curve.
func Add(p, q Point) Point {
	if p.IsInfinity() {
		return q
	}
	if q.IsInfinity() {
		return p
	}

	// P + (-P) = infinity.
	if p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) != 0 {
		return Infinity()
	}

	var s *big.Int
	if p.X.Cmp(q.X) == 0 {

		// Doubling: s = 3x^2 / 2y.
		num := new(big.Int).Mul(p.X, p.X)
		num.Mul(num, big.NewInt(3))
		num.Mod(num, P)

		den := new(big.Int).Lsh(p.Y, 1)
		s = num.Mul(num, ModInverse(den, P))
		s.Mod(s, P)

	} else {

		// Chord: s = (y2 - y1) / (x2 - x1).
		num := new(big.Int).Sub(q.Y, p.Y)
		den := new(big.Int).Sub(q.X, p.X)
		s = num.Mul(num, ModInverse(den, P))
		s.Mod(s, P)
	}

	x3 := new(big.Int).Mul(s, s)
	x3.Sub(x3, p.X)
	x3.Sub(x3, q.X)
	x3.Mod(x3, P)

	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, s)
	y3.Sub(y3, p.Y)
	y3.Mod(y3, P)

	return Point{X: x3, Y: y3}
}

// ScalarMult computes k*p with the double-and-add algorithm over the bits
// of the scalar.
func ScalarMult(k *big.Int, p Point) Point {
	if k.Sign() == 0 || p.IsInfinity() {
		return Infinity()
	}

	k = new(big.Int).Set(k)
	if k.Sign() < 0 {
		k.Neg(k)
		p = Negate(p)
	}

	result := Infinity()
	addend := p

	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			result = Add(result, addend)
		}
		addend = Add(addend, addend)
	}

	return result
}

// =============================================================================

// mustParseHex converts a hex constant into a big.Int at package init.
func mustParseHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic(fmt.Sprintf("curve: invalid hex constant %q", s))
	}
	return v
}
