package signature_test

import (
	"math/big"
	"testing"

	"github.com/edublock/edublock/foundation/blockchain/curve"
	"github.com/edublock/edublock/foundation/blockchain/signature"
)

func Test_SignVerify(t *testing.T) {
	d, err := signature.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := signature.PublicKey(d)

	const msg = "transfer 30 from alice to bob"

	r, s, err := signature.Sign(d, msg)
	if err != nil {
		t.Fatalf("Should be able to sign a message: %s", err)
	}

	if !signature.Verify(pub, msg, r, s) {
		t.Fatal("Should verify a signature over the signed message.")
	}

	if signature.Verify(pub, msg+" and a little extra", r, s) {
		t.Fatal("Should reject a signature over a different message.")
	}

	d2, err := signature.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a second key: %s", err)
	}
	if signature.Verify(signature.PublicKey(d2), msg, r, s) {
		t.Fatal("Should reject a signature against the wrong public key.")
	}
}

func Test_VerifyRange(t *testing.T) {
	d, err := signature.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := signature.PublicKey(d)

	const msg = "range check"

	r, s, err := signature.Sign(d, msg)
	if err != nil {
		t.Fatalf("Should be able to sign a message: %s", err)
	}

	if signature.Verify(pub, msg, big.NewInt(0), s) {
		t.Fatal("Should reject r == 0.")
	}
	if signature.Verify(pub, msg, r, big.NewInt(0)) {
		t.Fatal("Should reject s == 0.")
	}
	if signature.Verify(pub, msg, curve.N, s) {
		t.Fatal("Should reject r == N.")
	}
	if signature.Verify(pub, msg, r, new(big.Int).Add(curve.N, big.NewInt(1))) {
		t.Fatal("Should reject s > N.")
	}
}

func Test_ScalarEncoding(t *testing.T) {
	v := big.NewInt(255)

	enc := signature.EncodeScalar(v)
	if len(enc) != 64 {
		t.Logf("got: %d", len(enc))
		t.Logf("exp: 64")
		t.Fatal("Should encode scalars at a fixed width.")
	}
	if enc[:62] != "00000000000000000000000000000000000000000000000000000000000000" {
		t.Fatal("Should left-pad small scalars with zeros.")
	}

	dec, err := signature.DecodeScalar(enc)
	if err != nil {
		t.Fatalf("Should be able to decode an encoded scalar: %s", err)
	}
	if dec.Cmp(v) != 0 {
		t.Logf("got: %s", dec)
		t.Logf("exp: %s", v)
		t.Fatal("Should round-trip scalars through the hex encoding.")
	}

	if _, err := signature.DecodeScalar("ff"); err == nil {
		t.Fatal("Should reject scalars that are not 64 hex characters.")
	}
}

func Test_PublicKeyEncoding(t *testing.T) {
	d, err := signature.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := signature.PublicKey(d)

	enc := signature.EncodePublicKey(pub)
	if len(enc) != 128 {
		t.Logf("got: %d", len(enc))
		t.Logf("exp: 128")
		t.Fatal("Should encode public keys as X||Y at a fixed width.")
	}

	dec, err := signature.DecodePublicKey(enc)
	if err != nil {
		t.Fatalf("Should be able to decode an encoded public key: %s", err)
	}
	if !dec.Equal(pub) {
		t.Fatal("Should round-trip public keys through the hex encoding.")
	}

	// Corrupt the Y coordinate so the point leaves the curve.
	corrupt := enc[:127] + flipHexDigit(enc[127])
	if _, err := signature.DecodePublicKey(corrupt); err == nil {
		t.Fatal("Should reject points that are not on the curve.")
	}
}

func Test_SignatureEncoding(t *testing.T) {
	d, err := signature.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	r, s, err := signature.Sign(d, "round trip")
	if err != nil {
		t.Fatalf("Should be able to sign a message: %s", err)
	}

	enc := signature.EncodeSignature(r, s)
	if len(enc) != 128 {
		t.Fatal("Should encode signatures as r||s at a fixed width.")
	}

	r2, s2, err := signature.DecodeSignature(enc)
	if err != nil {
		t.Fatalf("Should be able to decode an encoded signature: %s", err)
	}
	if r.Cmp(r2) != 0 || s.Cmp(s2) != 0 {
		t.Fatal("Should round-trip signatures through the hex encoding.")
	}
}

// flipHexDigit swaps one hex digit for a different one.
func flipHexDigit(c byte) string {
	if c == '0' {
		return "1"
	}
	return "0"
}
