package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/fade"
)

type call struct {
	zoneID  int
	command backend.Command
	param   string
}

type fakeZones struct {
	mu      sync.Mutex
	calls   []call
	volumes map[int]int
	kinds   map[int]backend.Kind
	presets map[int]int
}

func newFakeZones() *fakeZones {
	return &fakeZones{volumes: map[int]int{}, kinds: map[int]backend.Kind{}, presets: map[int]int{}}
}

func (f *fakeZones) SendCommandToZone(ctx context.Context, zoneID int, command backend.Command, param *backend.Param) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := ""
	if param != nil {
		p = param.Single
	}
	f.calls = append(f.calls, call{zoneID, command, p})
	return nil
}

func (f *fakeZones) ZoneBackendKind(zoneID int) backend.Kind { return f.kinds[zoneID] }
func (f *fakeZones) ZoneVolume(zoneID int) int               { return f.volumes[zoneID] }
func (f *fakeZones) ZonePreset(zoneID int, alertType Type) int {
	return f.presets[zoneID]
}

type fakeResolver struct{}

func (fakeResolver) ResolveAlertMedia(alertType Type, payload string) (*backend.Param, bool) {
	return backend.SingleParam("alert-media"), true
}

func TestStartLoopingAlertDispatchesServicePlayAndRepeat(t *testing.T) {
	zones := newFakeZones()
	zones.kinds[1] = backend.KindSonos
	c := New(nil, zones, fade.New(nil), fakeResolver{})

	results := c.Start(context.Background(), TypeAlarm, []int{1}, "", Options{})
	if len(results) != 1 || results[0].Reason != "" {
		t.Fatalf("expected success, got %+v", results)
	}

	zones.mu.Lock()
	defer zones.mu.Unlock()
	foundServicePlay, foundRepeat := false, false
	for _, call := range zones.calls {
		if call.command == backend.CmdServicePlay {
			foundServicePlay = true
		}
		if call.command == backend.CmdRepeat && call.param == string(backend.RepeatTrack) {
			foundRepeat = true
		}
	}
	if !foundServicePlay || !foundRepeat {
		t.Fatalf("expected serviceplay+repeat track, got %+v", zones.calls)
	}
}

func TestStartMusicAssistantNonLoopingUsesAnnounce(t *testing.T) {
	zones := newFakeZones()
	zones.kinds[2] = backend.KindMusicAssistant
	c := New(nil, zones, fade.New(nil), fakeResolver{})

	c.Start(context.Background(), TypeTTS, []int{2}, "hello", Options{})

	zones.mu.Lock()
	defer zones.mu.Unlock()
	found := false
	for _, call := range zones.calls {
		if call.command == backend.CmdAnnounce {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected announce for non-looping MA alert, got %+v", zones.calls)
	}
}

func TestStopUnknownZoneReportsUnknownZone(t *testing.T) {
	zones := newFakeZones()
	c := New(nil, zones, fade.New(nil), fakeResolver{})

	results := c.Stop(context.Background(), TypeBell, []int{99}, Options{})
	if len(results) != 1 || results[0].Reason != ReasonUnknownZone {
		t.Fatalf("expected unknown-zone, got %+v", results)
	}
}

func TestStopWithoutFadeDispatchesPauseAndRestoresVolume(t *testing.T) {
	zones := newFakeZones()
	zones.kinds[3] = backend.KindSonos
	zones.volumes[3] = 40
	c := New(nil, zones, fade.New(nil), fakeResolver{})

	c.Start(context.Background(), TypeBell, []int{3}, "", Options{})
	results := c.Stop(context.Background(), TypeBell, []int{3}, Options{})
	if results[0].Reason != "" {
		t.Fatalf("expected stop success, got %+v", results)
	}

	zones.mu.Lock()
	defer zones.mu.Unlock()
	foundPause := false
	for _, call := range zones.calls {
		if call.command == backend.CmdPause {
			foundPause = true
		}
	}
	if !foundPause {
		t.Fatalf("expected pause on stop, got %+v", zones.calls)
	}
}

func TestResolveTTSLanguageAliases(t *testing.T) {
	cases := map[string]string{"nld": "nl", "dut": "nl", "eng": "en", "ger": "de", "xyz": "xy"}
	for in, want := range cases {
		if got := ResolveTTSLanguage(in); got != want {
			t.Errorf("ResolveTTSLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTTSPayloadSplitsLanguageAndTruncates(t *testing.T) {
	lang, text := ParseTTSPayload("eng|hello there")
	if lang != "en" || text != "hello there" {
		t.Fatalf("unexpected split: lang=%q text=%q", lang, text)
	}

	long := make([]byte, 900)
	for i := range long {
		long[i] = 'a'
	}
	_, text = ParseTTSPayload(string(long))
	if len(text) > ttsMaxChars+len("…") {
		t.Fatalf("expected truncation, got length %d", len(text))
	}
}

func TestRestartingAlertCancelsPriorFadeAtomically(t *testing.T) {
	zones := newFakeZones()
	zones.kinds[4] = backend.KindSonos
	zones.presets[4] = 30
	c := New(nil, zones, fade.New(nil), fakeResolver{})

	c.Start(context.Background(), TypeAlarm, []int{4}, "", Options{Fading: true, FadingMs: 2000})
	time.Sleep(10 * time.Millisecond)
	c.Start(context.Background(), TypeAlarm, []int{4}, "", Options{Fading: true, FadingMs: 2000})

	c.mu.Lock()
	_, exists := c.snapshots[snapshotKey(4, TypeAlarm)]
	c.mu.Unlock()
	if !exists {
		t.Fatal("expected exactly one live snapshot after restart")
	}
}
