package peer_test

import (
	"testing"

	"github.com/edublock/edublock/foundation/blockchain/peer"
)

func Test_Normalization(t *testing.T) {
	type table struct {
		name    string
		address string
		host    string
		ok      bool
	}

	tt := []table{
		{name: "scheme", address: "http://localhost:5001", host: "localhost:5001", ok: true},
		{name: "https", address: "https://node.example.com:9000", host: "node.example.com:9000", ok: true},
		{name: "bare", address: "localhost:5001", host: "localhost:5001", ok: true},
		{name: "trailing slash", address: "localhost:5001/", host: "localhost:5001", ok: true},
		{name: "schemeless slashes", address: "//localhost:5001", host: "localhost:5001", ok: true},
		{name: "empty", address: "", ok: false},
		{name: "blank", address: "   ", ok: false},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			p, ok := peer.New(tst.address)
			if ok != tst.ok {
				t.Logf("Test %s:\tgot: %v", tst.name, ok)
				t.Logf("Test %s:\texp: %v", tst.name, tst.ok)
				t.Fatalf("Test %s:\tShould get the right acceptance.", tst.name)
			}
			if ok && p.Host != tst.host {
				t.Logf("Test %s:\tgot: %s", tst.name, p.Host)
				t.Logf("Test %s:\texp: %s", tst.name, tst.host)
				t.Fatalf("Test %s:\tShould normalize to host:port.", tst.name)
			}
		}
		t.Run(tst.name, f)
	}
}

func Test_SetCRUD(t *testing.T) {
	ps := peer.NewSet()

	p1, _ := peer.New("localhost:5001")
	p2, _ := peer.New("http://localhost:5002")

	if !ps.Add(p1) {
		t.Fatal("Should add a new peer.")
	}
	if ps.Add(p1) {
		t.Fatal("Should not add the same peer twice.")
	}
	ps.Add(p2)

	// The scheme-bearing and bare spellings identify the same node.
	dup, _ := peer.New("http://localhost:5001")
	if ps.Add(dup) {
		t.Fatal("Should treat normalized spellings as the same peer.")
	}

	if ps.Count() != 2 {
		t.Logf("got: %d", ps.Count())
		t.Logf("exp: 2")
		t.Fatal("Should count the registered peers.")
	}

	if len(ps.Copy("localhost:5002")) != 1 {
		t.Fatal("Should exclude the specified host from the copy.")
	}

	if !ps.Remove(p1) {
		t.Fatal("Should remove a registered peer.")
	}
	if ps.Remove(p1) {
		t.Fatal("Should not remove a peer twice.")
	}

	ps.Clear()
	if ps.Count() != 0 {
		t.Fatal("Should clear all peers.")
	}
}
