package null

import (
	"context"
	"errors"
	"testing"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
)

func TestNullBackendIsAlwaysInert(t *testing.T) {
	ctx := context.Background()
	b := New()

	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize should never fail: %v", err)
	}
	if err := b.SendCommand(ctx, backend.CmdPlay, nil); err != nil {
		t.Fatalf("SendCommand should be a no-op: %v", err)
	}
	if err := b.SendGroupCommand(ctx, backend.CmdGroupJoinMany, "manual", 1, 2, 3); err != nil {
		t.Fatalf("SendGroupCommand should be a no-op: %v", err)
	}
	if b.SupportsAnnounce() {
		t.Fatal("null backend must not support announce")
	}
	if err := b.Announce(ctx, "http://example/alert.mp3"); !errors.Is(err, backend.ErrAnnounceNotSupported) {
		t.Fatalf("expected ErrAnnounceNotSupported, got %v", err)
	}
	if err := b.Cleanup(); err != nil {
		t.Fatalf("Cleanup should never fail: %v", err)
	}
}

func TestNullGetPlayersReturnsEmpty(t *testing.T) {
	players, err := GetPlayers(context.Background(), "unused")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 0 {
		t.Fatalf("expected no players, got %d", len(players))
	}
}
