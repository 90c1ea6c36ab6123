// ABOUTME: Zone registry: the table of addressable audio outputs the dispatcher targets
// ABOUTME: Owns zone state and queue content, delegates playback to a backend instance
package zone

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/loxone-bridge/audioserver-bridge/internal/alert"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/null"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
	"github.com/loxone-bridge/audioserver-bridge/internal/broadcast"
	"github.com/loxone-bridge/audioserver-bridge/internal/group"
	"github.com/loxone-bridge/audioserver-bridge/pkg/protocol"
)

// State is a zone's current playback state. The zone's own Mode is
// authoritative over whatever the backend last reported.
type State struct {
	Mode       string
	Title      string
	Artist     string
	Album      string
	CoverURL   string
	AudioPath  string
	Volume     int
	Repeat     backend.RepeatMode
	Shuffle    bool
	DurationMs int
	PositionMs int
	QIndex     int
}

// QueueItem is one entry in a zone's playback queue.
type QueueItem struct {
	AudioPath string
	Title     string
}

// Queue is a zone's ordered playback queue.
type Queue struct {
	Items    []QueueItem
	Shuffle  bool
	Total    int
}

// VolumePreset holds the per-zone volume defaults driven by admin config.
// A nil field means "not configured"; Max, when set, caps every other
// preset and the live volume.
type VolumePreset struct {
	Default *int
	Max     *int
	Alarm   *int
	Fire    *int
	Bell    *int
	Buzzer  *int
	TTS     *int
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (p VolumePreset) capped(v int) int {
	v = clampVolume(v)
	if p.Max != nil && v > *p.Max {
		return *p.Max
	}
	return v
}

// ConfigEntry is the admin-config override for one zone (part of a
// Snapshot, supplied by the config orchestrator).
type ConfigEntry struct {
	ID              int
	BackendKind     backend.Kind
	BackendEndpoint string
	BackendParams   map[string]string
	Name            string
	Source          string
	Volumes         VolumePreset
}

// PlayerDeclaration is one MiniServer-declared player, identified by id and
// the serial of the first non-empty channel on its first output (used for
// source derivation).
type PlayerDeclaration struct {
	ID            int
	UUID          string
	ChannelSerial string
}

// Snapshot is the portion of the configuration snapshot the zone registry
// needs to reseed itself: every MiniServer-declared player, any admin
// overrides keyed by id, and the extension serial -> name table used for
// source derivation.
type Snapshot struct {
	Players     []PlayerDeclaration
	Overrides   map[int]ConfigEntry
	SourceNames map[string]string // normalised serial -> extension/core name
}

// Zone is one addressable audio output.
type Zone struct {
	ID              int
	UUID            string
	BackendKind     backend.Kind
	BackendEndpoint string
	BackendParams   map[string]string
	Name            string
	Source          string
	Volumes         VolumePreset

	State State
	Queue Queue

	Connected    bool
	ConnectError string

	handle backend.Backend

	// volMu serializes the read-compute-dispatch-apply sequence for
	// CmdVolume, so two concurrent volume commands against the same zone
	// compose their deltas off the same base instead of racing on a stale
	// State.Volume.
	volMu sync.Mutex
}

// BackendFactory constructs a backend instance for a zone. The registry
// calls it once per zone during applyConfigSnapshot/setupZoneById.
type BackendFactory func(kind backend.Kind, zoneID int, endpoint string, params map[string]string, sink backend.EventSink) (backend.Backend, error)

// Registry owns the zone table. Exactly one Zone exists per PlayerId at any
// time; replacing the table via applyConfigSnapshot destroys zones that no
// longer appear in the new snapshot after cleaning up their backend handle.
type Registry struct {
	mu      sync.Mutex
	zones   map[int]*Zone
	bus     *broadcast.Bus
	groups  *group.Tracker
	log     *slog.Logger
	factory BackendFactory
}

// New constructs an empty zone registry.
func New(log *slog.Logger, bus *broadcast.Bus, groups *group.Tracker, factory BackendFactory) *Registry {
	return &Registry{
		zones:   make(map[int]*Zone),
		bus:     bus,
		groups:  groups,
		log:     log,
		factory: factory,
	}
}

// normaliseSerial upper-cases and strips separators from a channel serial,
// the same canonicalisation source derivation and macID matching use.
func normaliseSerial(s string) string {
	if idx := strings.IndexByte(s, '#'); idx != -1 {
		s = s[:idx]
	}
	s = strings.ToUpper(s)
	s = strings.NewReplacer("-", "", ":", "", ".", "", " ", "").Replace(s)
	return s
}

func deriveSource(serial string, table map[string]string) string {
	norm := normaliseSerial(serial)
	if name, ok := table[norm]; ok {
		return name
	}
	return serial
}

// ApplyConfigSnapshot replaces the registry atomically: for every
// MiniServer-declared player it resolves an override, constructs a backend
// instance, initialises it, and derives the zone's source name. Players
// without an override get a default Null entry (ip 127.0.0.1). Zones not
// present in the new player list are destroyed and their backend handles
// cleaned up.
func (r *Registry) ApplyConfigSnapshot(ctx context.Context, snap Snapshot) map[int]string {
	wantedSourceNames := make(map[int]string)

	r.mu.Lock()
	old := r.zones
	r.zones = make(map[int]*Zone, len(snap.Players))
	r.mu.Unlock()

	for _, p := range snap.Players {
		override, hasOverride := snap.Overrides[p.ID]
		z := &Zone{
			ID:   p.ID,
			UUID: p.UUID,
		}
		if hasOverride {
			z.BackendKind = override.BackendKind
			z.BackendEndpoint = override.BackendEndpoint
			z.BackendParams = override.BackendParams
			z.Name = override.Name
			z.Volumes = override.Volumes
		} else {
			z.BackendKind = backend.KindNull
			z.BackendEndpoint = "127.0.0.1"
		}

		z.Source = deriveSource(p.ChannelSerial, snap.SourceNames)
		wantedSourceNames[p.ID] = z.Source

		r.initializeZone(ctx, z)

		r.mu.Lock()
		r.zones[p.ID] = z
		r.mu.Unlock()
	}

	// Every zone is rebuilt from scratch above; any backend handle a prior
	// zone held is now orphaned and must be released regardless of whether
	// the same PlayerId reappears in the new snapshot.
	for id, prior := range old {
		if prior.handle != nil {
			if err := prior.handle.Cleanup(); err != nil && r.log != nil {
				r.log.Warn("backend cleanup failed", "zone", id, "error", err)
			}
		}
	}

	return wantedSourceNames
}

// initializeZone constructs and initialises z's backend handle. Failure
// downgrades the zone to configured-but-disconnected rather than aborting
// the whole reseed.
func (r *Registry) initializeZone(ctx context.Context, z *Zone) {
	if z.BackendKind == backend.KindNull {
		z.Connected = false
		z.handle = null.New()
		return
	}
	if r.factory == nil {
		z.ConnectError = "no backend factory configured"
		return
	}

	h, err := r.factory(z.BackendKind, z.ID, z.BackendEndpoint, z.BackendParams, &eventSink{registry: r})
	if err != nil {
		z.ConnectError = err.Error()
		z.Connected = false
		z.handle = nil
		return
	}

	if err := h.Initialize(ctx); err != nil {
		z.ConnectError = err.Error()
		z.Connected = false
		z.handle = nil
		return
	}

	z.handle = h
	z.Connected = true
	z.ConnectError = ""
}

// SetupZoneById re-resolves a single zone against the current snapshot
// (e.g. after an admin-driven edit). override may be nil to revert to a
// default Null zone.
func (r *Registry) SetupZoneById(ctx context.Context, id int, override *ConfigEntry, sourceSerial string, sourceNames map[string]string) error {
	r.mu.Lock()
	z, ok := r.zones[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: zone %d", bridgeerr.ErrZoneNotFound, id)
	}
	oldHandle := z.handle
	r.mu.Unlock()

	if oldHandle != nil {
		_ = oldHandle.Cleanup()
	}

	// Connect against a detached zone, not the one published in r.zones,
	// so the blocking factory/Initialize call below never races a
	// concurrent reader against the live zone's fields.
	tmp := &Zone{ID: id}
	if override != nil {
		tmp.BackendKind = override.BackendKind
		tmp.BackendEndpoint = override.BackendEndpoint
		tmp.BackendParams = override.BackendParams
	} else {
		tmp.BackendKind = backend.KindNull
		tmp.BackendEndpoint = "127.0.0.1"
	}
	r.initializeZone(ctx, tmp)

	r.mu.Lock()
	defer r.mu.Unlock()
	z, ok = r.zones[id]
	if !ok {
		if tmp.handle != nil {
			_ = tmp.handle.Cleanup()
		}
		return fmt.Errorf("%w: zone %d", bridgeerr.ErrZoneNotFound, id)
	}
	if override != nil {
		z.BackendKind = override.BackendKind
		z.BackendEndpoint = override.BackendEndpoint
		z.BackendParams = override.BackendParams
		z.Name = override.Name
		z.Volumes = override.Volumes
	} else {
		z.BackendKind = backend.KindNull
		z.BackendEndpoint = "127.0.0.1"
	}
	if sourceSerial != "" {
		z.Source = deriveSource(sourceSerial, sourceNames)
	}
	z.handle = tmp.handle
	z.Connected = tmp.Connected
	z.ConnectError = tmp.ConnectError
	return nil
}

func (r *Registry) lookup(id int) (*Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	z, ok := r.zones[id]
	if !ok {
		return nil, fmt.Errorf("%w: zone %d", bridgeerr.ErrZoneNotFound, id)
	}
	return z, nil
}

// SendCommandToZone validates the zone exists and delegates to its backend
// handle. A MusicAssistant zone with no maPlayerId param fails with
// ErrZoneNotConfigured without attempting dispatch.
func (r *Registry) SendCommandToZone(ctx context.Context, id int, command backend.Command, param *backend.Param) error {
	z, err := r.lookup(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	handle := z.handle
	kind := z.BackendKind
	params := z.BackendParams
	r.mu.Unlock()

	if kind == backend.KindMusicAssistant && params["maPlayerId"] == "" {
		return fmt.Errorf("%w: zone %d missing maPlayerId", bridgeerr.ErrZoneNotConfigured, id)
	}
	if handle == nil {
		return fmt.Errorf("%w: zone %d has no backend handle", bridgeerr.ErrDispatchFailed, id)
	}

	if command == backend.CmdVolume && param != nil {
		z.volMu.Lock()
		defer z.volMu.Unlock()

		param = r.volumeDeltaParam(z, param)
		if err := handle.SendCommand(ctx, command, param); err != nil {
			return err
		}
		r.applyLocalVolumeDelta(z, param)
		return nil
	}

	return handle.SendCommand(ctx, command, param)
}

// volumeDeltaParam interprets param.Single as an absolute target and
// rewrites it to the signed delta the backend wire format expects,
// computed against the zone's last-known volume.
func (r *Registry) volumeDeltaParam(z *Zone, param *backend.Param) *backend.Param {
	var target int
	if _, err := fmt.Sscanf(param.Single, "%d", &target); err != nil {
		return param
	}
	r.mu.Lock()
	current := z.State.Volume
	r.mu.Unlock()
	delta := target - current
	return backend.SingleParam(fmt.Sprintf("%d", delta))
}

func (r *Registry) applyLocalVolumeDelta(z *Zone, param *backend.Param) {
	var delta int
	if _, err := fmt.Sscanf(param.Single, "%d", &delta); err != nil {
		return
	}
	r.mu.Lock()
	z.State.Volume = z.Volumes.capped(z.State.Volume + delta)
	r.mu.Unlock()
}

// SendGroupCommandToZone resolves the leader and delegates a group-wide
// command to its backend handle.
func (r *Registry) SendGroupCommandToZone(ctx context.Context, command backend.Command, groupType string, leader int, others ...int) error {
	z, err := r.lookup(leader)
	if err != nil {
		return err
	}
	r.mu.Lock()
	handle := z.handle
	r.mu.Unlock()
	if handle == nil {
		return fmt.Errorf("%w: zone %d has no backend handle", bridgeerr.ErrDispatchFailed, leader)
	}
	return handle.SendGroupCommand(ctx, command, groupType, leader, others...)
}

// StatusPartial is the set of state fields a backend (or the dispatcher,
// for some commands) may update at once. A nil field leaves that part of
// the state untouched.
type StatusPartial struct {
	Mode       *string
	Title      *string
	Artist     *string
	Album      *string
	CoverURL   *string
	AudioPath  *string
	Volume     *int
	Repeat     *backend.RepeatMode
	Shuffle    *bool
	DurationMs *int
	PositionMs *int
	QIndex     *int
}

// UpdateZonePlayerStatus merges partial into the zone's state and
// broadcasts one audio_event describing the full resulting state.
func (r *Registry) UpdateZonePlayerStatus(id int, partial StatusPartial) error {
	z, err := r.lookup(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	applyPartial(&z.State, partial)
	z.State.Volume = z.Volumes.capped(z.State.Volume)
	snapshot := *z
	r.mu.Unlock()

	r.broadcastAudioEvent(snapshot)
	return nil
}

func applyPartial(s *State, p StatusPartial) {
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Artist != nil {
		s.Artist = *p.Artist
	}
	if p.Album != nil {
		s.Album = *p.Album
	}
	if p.CoverURL != nil {
		s.CoverURL = *p.CoverURL
	}
	if p.AudioPath != nil {
		s.AudioPath = *p.AudioPath
	}
	if p.Volume != nil {
		s.Volume = *p.Volume
	}
	if p.Repeat != nil {
		s.Repeat = *p.Repeat
	}
	if p.Shuffle != nil {
		s.Shuffle = *p.Shuffle
	}
	if p.DurationMs != nil {
		s.DurationMs = *p.DurationMs
	}
	if p.PositionMs != nil {
		s.PositionMs = *p.PositionMs
	}
	if p.QIndex != nil {
		s.QIndex = *p.QIndex
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *Registry) broadcastAudioEvent(z Zone) {
	if r.bus == nil {
		return
	}
	evt := protocol.AudioEvent{
		PlayerID:   z.ID,
		Mode:       z.State.Mode,
		Name:       z.Name,
		Title:      z.State.Title,
		Artist:     z.State.Artist,
		Album:      z.State.Album,
		AudioPath:  z.State.AudioPath,
		CoverURL:   z.State.CoverURL,
		Duration:   z.State.DurationMs / 1000,
		DurationMs: z.State.DurationMs,
		Time:       z.State.PositionMs / 1000,
		PositionMs: z.State.PositionMs,
		Volume:     z.State.Volume,
		PlRepeat:   repeatOrdinal(z.State.Repeat),
		PlShuffle:  boolToInt(z.State.Shuffle),
		QIndex:     z.State.QIndex,
		Power:      z.State.Mode != "off",
		SourceName: z.Source,
	}
	frame := protocol.AudioEventFrame{AudioEvent: []protocol.AudioEvent{evt}}
	r.emit(frame)
}

// groupSourceOrdinal maps a Group's Source tag to the numeric "type" field
// the sync event wire format expects: 0 for a manually created group, 1
// for one the backend itself reported.
func groupSourceOrdinal(source string) int {
	if source == "backend" {
		return 1
	}
	return 0
}

func repeatOrdinal(r backend.RepeatMode) int {
	switch r {
	case backend.RepeatTrack:
		return 1
	case backend.RepeatQueue:
		return 2
	default:
		return 0
	}
}

func (r *Registry) emit(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		if r.log != nil {
			r.log.Warn("failed to marshal broadcast event", "error", err)
		}
		return
	}
	r.bus.Broadcast(data)
}

// UpdateZoneQueue broadcasts one audio_queue_event for a zone's current
// queue size.
func (r *Registry) UpdateZoneQueue(id int, queueSize int, restrictions int) error {
	if _, err := r.lookup(id); err != nil {
		return err
	}
	r.emit(protocol.AudioQueueEventFrame{
		AudioQueueEvent: []protocol.AudioQueueEvent{{
			PlayerID:     id,
			QueueSize:    queueSize,
			Restrictions: restrictions,
		}},
	})
	return nil
}

// UpdateZoneGroup broadcasts one audio_sync_event per tracked group,
// describing its current membership and the leader's volume as master
// volume. This replaces the legacy hard-coded ids 14/15 debug behaviour
// with a real sync event derived from the group tracker.
func (r *Registry) UpdateZoneGroup() {
	groups := r.groups.All()
	events := make([]protocol.AudioSyncEvent, 0, len(groups))
	for _, g := range groups {
		r.mu.Lock()
		leaderVolume := 0
		if z, ok := r.zones[g.Leader]; ok {
			leaderVolume = z.State.Volume
		}
		r.mu.Unlock()

		members := g.MemberList()
		players := make([]protocol.SyncPlayer, 0, len(members))
		for i, m := range members {
			players = append(players, protocol.SyncPlayer{ID: i + 1, PlayerID: m})
		}
		events = append(events, protocol.AudioSyncEvent{
			Group:        g.ExternalID,
			MasterVolume: leaderVolume,
			Players:      players,
			Type:         groupSourceOrdinal(g.Source),
		})
	}
	r.emit(protocol.AudioSyncEventFrame{AudioSyncEvent: events})
}

// ApplyStoredVolumePreset writes the stored default/buzzer preset's
// volume into the zone state; emitEvent controls whether an audio_event is
// broadcast afterward.
func (r *Registry) ApplyStoredVolumePreset(id int, emitEvent bool) error {
	z, err := r.lookup(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if z.Volumes.Default != nil {
		z.State.Volume = z.Volumes.capped(*z.Volumes.Default)
	}
	snapshot := *z
	r.mu.Unlock()

	if emitEvent {
		r.broadcastAudioEvent(snapshot)
	}
	return nil
}

// MasterVolumeUpdate describes one member's volume change as a result of a
// group master-volume fan-out.
type MasterVolumeUpdate struct {
	ZoneID int
	Volume int
}

// MasterVolumeResult is the response shape for ApplyMasterVolumeToGroup.
type MasterVolumeResult struct {
	GroupID string
	Target  int
	Updates []MasterVolumeUpdate
	Skipped []int
}

// ApplyMasterVolumeToGroup fans a target volume out to every member of the
// group led by leaderId (leader included), dispatching a signed delta per
// member computed from its current volume. Calls are issued sequentially
// from this goroutine to preserve last-write-wins semantics within a
// group.
func (r *Registry) ApplyMasterVolumeToGroup(ctx context.Context, leaderID int, target int) (MasterVolumeResult, error) {
	g, ok := r.groups.GetGroupByLeader(leaderID)
	if !ok {
		return MasterVolumeResult{}, fmt.Errorf("%w: no group led by %d", bridgeerr.ErrZoneNotFound, leaderID)
	}

	target = clampVolume(target)
	result := MasterVolumeResult{GroupID: g.ExternalID, Target: target}

	for _, memberID := range g.MemberList() {
		if _, err := r.lookup(memberID); err != nil {
			result.Skipped = append(result.Skipped, memberID)
			continue
		}

		// SendCommandToZone itself converts an absolute target into the
		// signed delta the backend wire protocol expects; pass target
		// through as-is rather than precomputing a delta here, else the
		// conversion would be applied twice.
		if err := r.SendCommandToZone(ctx, memberID, backend.CmdVolume, backend.SingleParam(fmt.Sprintf("%d", target))); err != nil {
			result.Skipped = append(result.Skipped, memberID)
			continue
		}

		result.Updates = append(result.Updates, MasterVolumeUpdate{ZoneID: memberID, Volume: target})
	}

	return result, nil
}

// ZoneStatus is the admin-facing snapshot view of one zone.
type ZoneStatus struct {
	ID           int
	Name         string
	Source       string
	BackendKind  backend.Kind
	Connected    bool
	ConnectError string
	State        State
}

// GetZoneStatuses returns a snapshot of every zone for the admin UI.
func (r *Registry) GetZoneStatuses() []ZoneStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ZoneStatus, 0, len(r.zones))
	for _, z := range r.zones {
		out = append(out, ZoneStatus{
			ID:           z.ID,
			Name:         z.Name,
			Source:       z.Source,
			BackendKind:  z.BackendKind,
			Connected:    z.Connected,
			ConnectError: z.ConnectError,
			State:        z.State,
		})
	}
	return out
}

// FindQueueIndex returns the queue index of the item with the given
// audiopath, used to implement queue-play redirection: a "synthetic local
// track" URI already present in the zone's queue is replayed by position
// instead of re-issued as a new playlist.
func (r *Registry) FindQueueIndex(id int, audioPath string) (int, bool) {
	z, err := r.lookup(id)
	if err != nil {
		return 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range z.Queue.Items {
		if item.AudioPath == audioPath {
			return i, true
		}
	}
	return 0, false
}

// GetZoneQueue returns a snapshot of zone id's current queue.
func (r *Registry) GetZoneQueue(id int) (Queue, error) {
	z, err := r.lookup(id)
	if err != nil {
		return Queue{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return z.Queue, nil
}

// SetZoneName renames zone id's live Name field. Admin-config persistence
// of the override is the config orchestrator's responsibility; this only
// updates the in-memory zone the dispatcher and broadcasts observe
// immediately.
func (r *Registry) SetZoneName(id int, name string) error {
	z, err := r.lookup(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	z.Name = name
	r.mu.Unlock()
	return nil
}

// ZoneBackendKind reports a zone's configured backend kind, used by the
// alert controller to decide between announce and serviceplay.
func (r *Registry) ZoneBackendKind(zoneID int) backend.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	if z, ok := r.zones[zoneID]; ok {
		return z.BackendKind
	}
	return backend.KindNull
}

// ZoneVolume reports a zone's last-known volume.
func (r *Registry) ZoneVolume(zoneID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if z, ok := r.zones[zoneID]; ok {
		return z.State.Volume
	}
	return 0
}

// ZonePreset reports the stored volume preset matching an alert type (0
// when unset), used as the fade-in target.
func (r *Registry) ZonePreset(zoneID int, alertType alert.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	z, ok := r.zones[zoneID]
	if !ok {
		return 0
	}
	var p *int
	switch alertType {
	case alert.TypeAlarm:
		p = z.Volumes.Alarm
	case alert.TypeFireAlarm:
		p = z.Volumes.Fire
	case alert.TypeBell:
		p = z.Volumes.Bell
	case alert.TypeBuzzer:
		p = z.Volumes.Buzzer
	case alert.TypeTTS:
		p = z.Volumes.TTS
	}
	if p == nil {
		return 0
	}
	return *p
}

// Cleanup releases every zone's backend handle, used on process shutdown
// ahead of closing the transport listeners.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, z := range r.zones {
		if z.handle != nil {
			_ = z.handle.Cleanup()
		}
	}
}

// eventSink adapts backend.EventSink onto the registry's own merge+
// broadcast path, breaking the zone -> backend -> registry call cycle: a
// backend reports state asynchronously through this type rather than
// calling back into the registry directly.
type eventSink struct {
	registry *Registry
}

func (s *eventSink) ZoneStatusUpdate(zoneID int, update backend.ZoneStatusUpdate) {
	_ = s.registry.UpdateZonePlayerStatus(zoneID, StatusPartial{
		Mode:       update.Mode,
		Title:      update.Title,
		Artist:     update.Artist,
		Album:      update.Album,
		CoverURL:   update.CoverURL,
		AudioPath:  update.AudioPath,
		Volume:     update.Volume,
		Repeat:     update.Repeat,
		Shuffle:    update.Shuffle,
		DurationMs: update.DurationMs,
		PositionMs: update.PositionMs,
		QIndex:     update.QIndex,
	})
}
