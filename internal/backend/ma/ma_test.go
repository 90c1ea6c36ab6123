package ma

import (
	"context"
	"errors"
	"testing"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
)

func TestMapState(t *testing.T) {
	cases := map[string]string{
		"playing": "play",
		"paused":  "pause",
		"idle":    "off",
		"off":     "off",
		"unknown": "stop",
	}
	for in, want := range cases {
		if got := mapState(in); got != want {
			t.Errorf("mapState(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSendCommandWithoutConnectionFails(t *testing.T) {
	b := New(nil, 7, "127.0.0.1:0", "player-1", nil)
	err := b.SendCommand(context.Background(), backend.CmdPlay, nil)
	if !errors.Is(err, bridgeerr.ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
}

func TestInitializeRejectsEmptyEndpoint(t *testing.T) {
	b := New(nil, 7, "", "player-1", nil)
	err := b.Initialize(context.Background())
	if !errors.Is(err, bridgeerr.ErrBackendUnreachable) {
		t.Fatalf("expected ErrBackendUnreachable, got %v", err)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	b := New(nil, 7, "127.0.0.1:0", "player-1", nil)
	if err := b.Cleanup(); err != nil {
		t.Fatalf("first cleanup: %v", err)
	}
	if err := b.Cleanup(); err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
}

func TestSupportsAnnounce(t *testing.T) {
	b := New(nil, 7, "127.0.0.1:0", "player-1", nil)
	if !b.SupportsAnnounce() {
		t.Fatal("music assistant backend must support announce")
	}
}
