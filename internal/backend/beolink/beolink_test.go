package beolink

import (
	"context"
	"errors"
	"testing"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
)

func TestTranslateCommand(t *testing.T) {
	path, _, ok := translateCommand(backend.CmdPlay, nil)
	if !ok || path != "/BeoZone/Zone/Stream/Play" {
		t.Fatalf("unexpected play mapping: %s ok=%v", path, ok)
	}

	path, payload, ok := translateCommand(backend.CmdVolume, backend.SingleParam("55"))
	if !ok || path != "/BeoZone/Zone/Sound/Volume/Speaker/Level" {
		t.Fatalf("unexpected volume mapping: %s ok=%v", path, ok)
	}
	m, isMap := payload.(map[string]string)
	if !isMap || m["level"] != "55" {
		t.Fatalf("unexpected volume payload: %#v", payload)
	}

	if _, _, ok := translateCommand(backend.CmdVolume, nil); ok {
		t.Fatal("volume without a param should not map")
	}
	if _, _, ok := translateCommand(backend.Command("nonsense"), nil); ok {
		t.Fatal("unknown command should not map")
	}
}

func TestMapState(t *testing.T) {
	if mapState("play") != "play" || mapState("pause") != "pause" || mapState("stop") != "stop" {
		t.Fatal("direct states should pass through")
	}
	if mapState("standby") != "off" {
		t.Fatal("unrecognized state should fall back to off")
	}
}

func TestSendCommandUnknownMapping(t *testing.T) {
	b := New(nil, 2, "127.0.0.1:0", nil)
	err := b.SendCommand(context.Background(), backend.Command("nonsense"), nil)
	if !errors.Is(err, bridgeerr.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestAnnounceUnsupported(t *testing.T) {
	b := New(nil, 2, "127.0.0.1:0", nil)
	if b.SupportsAnnounce() {
		t.Fatal("beolink backend must not support announce")
	}
	if err := b.Announce(context.Background(), "http://x/alert.mp3"); !errors.Is(err, backend.ErrAnnounceNotSupported) {
		t.Fatalf("expected ErrAnnounceNotSupported, got %v", err)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	b := New(nil, 2, "127.0.0.1:0", nil)
	if err := b.Cleanup(); err != nil {
		t.Fatalf("first cleanup: %v", err)
	}
	if err := b.Cleanup(); err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
}
