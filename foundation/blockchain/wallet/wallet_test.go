package wallet_test

import (
	"testing"

	"github.com/edublock/edublock/foundation/blockchain/wallet"
)

func Test_AddressShape(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	if len(w.Address()) != wallet.AddressSize*2 {
		t.Logf("got: %d", len(w.Address()))
		t.Logf("exp: %d", wallet.AddressSize*2)
		t.Fatal("Should derive a fixed-width hex address.")
	}

	if len(w.PublicKeyHex()) != 128 {
		t.Fatal("Should encode the public key as 128 hex characters.")
	}
}

func Test_RestoreDeterminism(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	restored, err := wallet.FromPrivateKeyHex(w.PrivateKeyHex())
	if err != nil {
		t.Fatalf("Should be able to restore a wallet from its private key: %s", err)
	}

	if restored.PublicKeyHex() != w.PublicKeyHex() {
		t.Fatal("Should reproduce an identical public key on restore.")
	}
	if restored.Address() != w.Address() {
		t.Logf("got: %s", restored.Address())
		t.Logf("exp: %s", w.Address())
		t.Fatal("Should reproduce an identical address on restore.")
	}
}

func Test_ExportRoundTrip(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	export, err := w.ExportJSON()
	if err != nil {
		t.Fatalf("Should be able to export a wallet: %s", err)
	}

	restored, err := wallet.FromJSON(export)
	if err != nil {
		t.Fatalf("Should be able to restore a wallet from its export: %s", err)
	}

	if restored.Address() != w.Address() {
		t.Fatal("Should round-trip the wallet through the JSON export.")
	}
}

func Test_HexSigning(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	const msg = "pay bob 30"

	sig, err := w.SignHex(msg)
	if err != nil {
		t.Fatalf("Should be able to sign a message: %s", err)
	}
	if len(sig) != 128 {
		t.Fatal("Should encode the signature as 128 hex characters.")
	}

	if !wallet.VerifyHex(w.PublicKeyHex(), msg, sig) {
		t.Fatal("Should verify a hex signature with the signer's public key.")
	}
	if wallet.VerifyHex(w.PublicKeyHex(), "pay bob 31", sig) {
		t.Fatal("Should reject a hex signature over a different message.")
	}
	if wallet.VerifyHex("not hex at all", msg, sig) {
		t.Fatal("Should treat a malformed public key as verification failure.")
	}
	if wallet.VerifyHex(w.PublicKeyHex(), msg, "beef") {
		t.Fatal("Should treat a malformed signature as verification failure.")
	}
}

func Test_Zero(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	w.Zero()

	if _, _, err := w.Sign("anything"); err == nil {
		t.Fatal("Should not be able to sign after the key is zeroed.")
	}
}
