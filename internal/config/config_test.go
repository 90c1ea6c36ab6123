package config

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/broadcast"
	"github.com/loxone-bridge/audioserver-bridge/internal/group"
	"github.com/loxone-bridge/audioserver-bridge/internal/zone"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	bus := broadcast.New(nil)
	groups := group.NewTracker()
	factory := func(kind backend.Kind, zoneID int, endpoint string, params map[string]string, sink backend.EventSink) (backend.Backend, error) {
		return nullBackend{}, nil
	}
	zones := zone.New(nil, bus, groups, factory)
	return New(nil, t.TempDir(), zones)
}

type nullBackend struct{}

func (nullBackend) Initialize(ctx context.Context) error { return nil }
func (nullBackend) SendCommand(ctx context.Context, command backend.Command, param *backend.Param) error {
	return nil
}
func (nullBackend) SendGroupCommand(ctx context.Context, command backend.Command, groupType string, leader int, others ...int) error {
	return nil
}
func (nullBackend) Announce(ctx context.Context, url string) error { return nil }
func (nullBackend) Cleanup() error                                 { return nil }
func (nullBackend) SupportsAnnounce() bool                         { return false }

const samplePayload = `{
	"macID": "504F94FF1BB3",
	"extensions": [{"mac": "50:4F:94:FF:1B:B3", "macId": "504F94FF1BB3", "name": "Core"}],
	"players": [
		{"ID": 1, "UUID": "u1", "ChannelSerial": "504F94FF1BB3#0"},
		{"ID": 2, "UUID": "u2", "ChannelSerial": "504F94FF1BB3#1"},
		{"ID": 3, "UUID": "u3", "ChannelSerial": "504F94FF1BB3#2"}
	]
}`

func TestProcessAudioServerConfigAssignsCRCAndExtensions(t *testing.T) {
	o := newTestOrchestrator(t)

	result, err := o.ProcessAudioServerConfig(context.Background(), json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.CRC32 == "" || len(result.CRC32) != 8 {
		t.Fatalf("expected an 8-char hex crc, got %q", result.CRC32)
	}
	if len(result.Extensions) != 1 || result.Extensions[0].Name != "Core" {
		t.Fatalf("unexpected extensions: %+v", result.Extensions)
	}

	entries := o.ZoneConfigEntries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 default zone entries, got %d: %+v", len(entries), entries)
	}
	for _, e := range entries {
		if e.BackendKind != backend.KindNull || e.BackendEndpoint != "127.0.0.1" {
			t.Fatalf("expected dummy-backend default entry, got %+v", e)
		}
	}
}

func TestProcessAudioServerConfigUnchangedIsNoop(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	first, err := o.ProcessAudioServerConfig(ctx, json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("first process: %v", err)
	}

	second, err := o.ProcessAudioServerConfig(ctx, json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	if !second.Unchanged {
		t.Fatal("expected second identical payload to be reported unchanged")
	}
	if second.CRC32 != first.CRC32 {
		t.Fatalf("expected stable crc across identical payloads: %q vs %q", first.CRC32, second.CRC32)
	}
}

func TestProcessAudioServerConfigRejectsUnmatchedMacID(t *testing.T) {
	o := newTestOrchestrator(t)
	bad := `{"macID": "DEADBEEF0000", "extensions": [{"mac":"x","macId":"504F94FF1BB3","name":"Core"}], "players": []}`

	_, err := o.ProcessAudioServerConfig(context.Background(), json.RawMessage(bad))
	if err == nil {
		t.Fatal("expected an error for an unmatched macID")
	}
}

func TestMergeZoneConfigEntriesIsIdempotent(t *testing.T) {
	existing := []zone.ConfigEntry{{ID: 1, Name: "Kitchen"}}
	incoming := []zone.ConfigEntry{{ID: 1, Name: "ignored-should-not-override"}, {ID: 2, Name: "Hall"}}

	merged, added := mergeZoneConfigEntries(existing, incoming)
	if len(merged) != 2 || len(added) != 1 || added[0].ID != 2 {
		t.Fatalf("unexpected first merge: merged=%+v added=%+v", merged, added)
	}

	merged2, added2 := mergeZoneConfigEntries(merged, incoming)
	if len(added2) != 0 {
		t.Fatalf("expected no new entries on repeat merge, got %+v", added2)
	}
	if len(merged2) != len(merged) {
		t.Fatalf("expected merge result to be stable, got %+v vs %+v", merged2, merged)
	}
}

func TestAdminConfigSaveLoadRoundTrips(t *testing.T) {
	o := newTestOrchestrator(t)
	o.admin.MiniServer.IP = "192.168.1.50"
	o.admin.Zones = []zone.ConfigEntry{{ID: 1, Name: "Kitchen", BackendKind: backend.KindSonos}}

	if err := o.SaveAdminConfig(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := &Orchestrator{adminPath: o.adminPath, cachePath: o.cachePath}
	if err := reloaded.LoadAdminConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.admin.MiniServer.IP != "192.168.1.50" {
		t.Fatalf("expected miniserver ip to survive round-trip, got %+v", reloaded.admin)
	}
	if len(reloaded.admin.Zones) != 1 || reloaded.admin.Zones[0].Name != "Kitchen" {
		t.Fatalf("expected zone override to survive round-trip, got %+v", reloaded.admin.Zones)
	}
}

func TestSetDefaultVolumeCreatesOrUpdatesEntry(t *testing.T) {
	o := newTestOrchestrator(t)
	if err := o.SetDefaultVolume(5, 42); err != nil {
		t.Fatalf("set: %v", err)
	}
	entries := o.ZoneConfigEntries()
	if len(entries) != 1 || entries[0].Volumes.Default == nil || *entries[0].Volumes.Default != 42 {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if err := o.SetDefaultVolume(5, 55); err != nil {
		t.Fatalf("update: %v", err)
	}
	entries = o.ZoneConfigEntries()
	if len(entries) != 1 || *entries[0].Volumes.Default != 55 {
		t.Fatalf("expected update in place, got %+v", entries)
	}
}

func TestGetEnvPrefixedCollectsMatchingKeys(t *testing.T) {
	t.Setenv("MEDIA_PROVIDER_API_KEY", "secret")
	t.Setenv("MEDIA_PROVIDER_REGION", "eu")
	t.Setenv("UNRELATED", "x")

	opts := getEnvPrefixed("MEDIA_PROVIDER_")
	if opts["api_key"] != "secret" || opts["region"] != "eu" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if _, ok := opts["unrelated"]; ok {
		t.Fatal("did not expect unrelated env vars to leak in")
	}
}
