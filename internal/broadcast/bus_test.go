package broadcast

import (
	"errors"
	"sync"
	"testing"
)

type fakePeer struct {
	id      string
	mu      sync.Mutex
	sent    [][]byte
	failing bool
}

func (f *fakePeer) ID() string { return f.id }

func (f *fakePeer) Send(message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, message)
	return nil
}

func TestBroadcastDeliversToAllPeers(t *testing.T) {
	bus := New(nil)
	a := &fakePeer{id: "a"}
	b := &fakePeer{id: "b"}
	bus.Register(a)
	bus.Register(b)

	bus.Broadcast([]byte("hello"))

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("expected both peers to receive one message, got a=%d b=%d", len(a.sent), len(b.sent))
	}
}

func TestBroadcastDropsFailingPeerOnly(t *testing.T) {
	bus := New(nil)
	good := &fakePeer{id: "good"}
	bad := &fakePeer{id: "bad", failing: true}
	bus.Register(good)
	bus.Register(bad)

	bus.Broadcast([]byte("one"))

	if bus.Count() != 1 {
		t.Fatalf("expected failing peer to be unregistered, count=%d", bus.Count())
	}
	if len(good.sent) != 1 {
		t.Fatalf("expected good peer to still receive messages")
	}

	bus.Broadcast([]byte("two"))
	if len(good.sent) != 2 {
		t.Fatalf("good peer should keep receiving after bad peer dropped")
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	bus := New(nil)
	p := &fakePeer{id: "p"}
	bus.Register(p)
	bus.Unregister(p)
	bus.Unregister(p)
	if bus.Count() != 0 {
		t.Fatalf("expected 0 peers, got %d", bus.Count())
	}
}
