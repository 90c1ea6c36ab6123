package sonos

import (
	"context"
	"errors"
	"testing"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
)

func TestTranslateCommand(t *testing.T) {
	ns, cmd, _ := translateCommand(backend.CmdPlay, nil)
	if ns != "playback" || cmd != "play" {
		t.Fatalf("unexpected mapping for play: %s/%s", ns, cmd)
	}

	ns, cmd, args := translateCommand(backend.CmdVolume, backend.SingleParam("42"))
	if ns != "playerVolume" || cmd != "setVolume" || args["volume"] != "42" {
		t.Fatalf("unexpected volume mapping: %s/%s/%v", ns, cmd, args)
	}

	ns, cmd, _ = translateCommand(backend.CmdVolume, nil)
	if cmd != "" || ns != "" {
		t.Fatalf("expected no mapping without a param, got %s/%s", ns, cmd)
	}
}

func TestMapPlaybackState(t *testing.T) {
	if mapPlaybackState("PLAYBACK_STATE_PLAYING") != "play" {
		t.Fatal("expected play")
	}
	if mapPlaybackState("PLAYBACK_STATE_PAUSED") != "pause" {
		t.Fatal("expected pause")
	}
	if mapPlaybackState("PLAYBACK_STATE_IDLE") != "off" {
		t.Fatal("expected off")
	}
	if mapPlaybackState("something else") != "stop" {
		t.Fatal("expected stop fallback")
	}
}

func TestSendCommandWithoutConnectionFails(t *testing.T) {
	b := New(nil, 3, "127.0.0.1:0", "key", "RINCON_1", nil)
	err := b.SendCommand(context.Background(), backend.CmdPlay, nil)
	if !errors.Is(err, bridgeerr.ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
}

func TestAnnounceUnsupported(t *testing.T) {
	b := New(nil, 3, "127.0.0.1:0", "key", "RINCON_1", nil)
	if b.SupportsAnnounce() {
		t.Fatal("sonos backend must not support announce")
	}
	if err := b.Announce(context.Background(), "http://x/alert.mp3"); !errors.Is(err, backend.ErrAnnounceNotSupported) {
		t.Fatalf("expected ErrAnnounceNotSupported, got %v", err)
	}
}
