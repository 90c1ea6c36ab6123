// ABOUTME: Broadcast bus owning the set of connected WebSocket peers
// ABOUTME: Delivers serialized events to every peer with best-effort semantics
package broadcast

import (
	"log/slog"
	"sync"
)

// Peer is anything the bus can deliver a frame to. internal/transport's
// websocket connections implement this; tests use an in-memory fake.
type Peer interface {
	ID() string
	Send(message []byte) error
}

// Bus is the concurrent-safe peer registry and fan-out point.
// Message ordering is preserved per peer (deliveries happen in call order on
// the same goroutine) but not across peers; a slow or failing peer is
// dropped, never blocked on.
type Bus struct {
	log *slog.Logger

	mu    sync.RWMutex
	peers map[string]Peer
}

// New creates an empty broadcast bus.
func New(log *slog.Logger) *Bus {
	return &Bus{
		log:   log,
		peers: make(map[string]Peer),
	}
}

// Register adds a peer to the broadcast set.
func (b *Bus) Register(p Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peers[p.ID()] = p
}

// Unregister removes a peer. Idempotent.
func (b *Bus) Unregister(p Peer) {
	b.UnregisterByID(p.ID())
}

// UnregisterByID removes a peer by id. Idempotent.
func (b *Bus) UnregisterByID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.peers, id)
}

// Count returns the number of currently registered peers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.peers)
}

// Broadcast fans a message out to every registered peer. Delivery failures
// unregister that peer only; no other peer is affected. Iteration is over a
// snapshot of the peer set so peers may join or leave mid-broadcast without
// deadlocking on b.mu.
func (b *Bus) Broadcast(message []byte) {
	b.mu.RLock()
	snapshot := make([]Peer, 0, len(b.peers))
	for _, p := range b.peers {
		snapshot = append(snapshot, p)
	}
	b.mu.RUnlock()

	for _, p := range snapshot {
		if err := p.Send(message); err != nil {
			if b.log != nil {
				b.log.Warn("dropping peer after failed send", "peer", p.ID(), "error", err)
			}
			b.UnregisterByID(p.ID())
		}
	}
}
