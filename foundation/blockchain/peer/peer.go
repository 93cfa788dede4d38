// Package peer maintains the set of known peer nodes for the consensus
// resolver.
package peer

import (
	"net/url"
	"strings"
	"sync"
)

// Peer represents a node in the network, identified by host:port.
type Peer struct {
	Host string
}

// New constructs a peer from an address, normalizing away any scheme so
// "http://localhost:5001", "//localhost:5001", and "localhost:5001" all
// identify the same node.
func New(address string) (Peer, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Peer{}, false
	}

	if strings.Contains(address, "//") {
		u, err := url.Parse(address)
		if err != nil || u.Host == "" {
			return Peer{}, false
		}
		return Peer{Host: u.Host}, true
	}

	return Peer{Host: strings.TrimSuffix(address, "/")}, true
}

// Match reports whether the specified host identifies this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements fmt.Stringer.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// Set is a mutex-guarded set of known peers.
type Set struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewSet constructs an empty peer set.
func NewSet() *Set {
	return &Set{
		set: make(map[Peer]struct{}),
	}
}

// Add inserts a peer, reporting whether it was new.
func (ps *Set) Add(p Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[p]; exists {
		return false
	}

	ps.set[p] = struct{}{}
	return true
}

// Remove deletes a peer, reporting whether it was present.
func (ps *Set) Remove(p Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[p]; !exists {
		return false
	}

	delete(ps.set, p)
	return true
}

// Contains reports whether the peer is registered.
func (ps *Set) Contains(p Peer) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	_, exists := ps.set[p]
	return exists
}

// Count returns the number of registered peers.
func (ps *Set) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns the known peers, excluding the specified host so a node
// never talks to itself.
func (ps *Set) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for p := range ps.set {
		if !p.Match(host) {
			peers = append(peers, p)
		}
	}

	return peers
}

// Clear removes every registered peer.
func (ps *Set) Clear() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.set = make(map[Peer]struct{})
}
