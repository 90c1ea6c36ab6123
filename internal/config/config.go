// ABOUTME: Config orchestrator: admin config + MiniServer music config + on-disk music cache
// ABOUTME: Exclusively owns the configuration snapshot; the zone registry only reads it
package config

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
	"github.com/loxone-bridge/audioserver-bridge/internal/zone"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvPrefixed collects every environment variable named prefix+KEY,
// returning a map keyed by the lower-cased KEY suffix. Used for
// MEDIA_PROVIDER_<KEY> passthrough options.
func getEnvPrefixed(prefix string) map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.HasPrefix(parts[0], prefix) {
			key := strings.ToLower(strings.TrimPrefix(parts[0], prefix))
			out[key] = parts[1]
		}
	}
	return out
}

// MiniServerCreds is the paired MiniServer's connection info.
type MiniServerCreds struct {
	IP          string `json:"ip"`
	Serial      string `json:"serial"`
	Credentials string `json:"credentials"`
}

// AudioServerRecord is the runtime record of the paired AudioServer.
type AudioServerRecord struct {
	MAC            string          `json:"mac"`
	MacID          string          `json:"macId"`
	Name           string          `json:"name"`
	Paired         bool            `json:"paired"`
	MusicCFG       json.RawMessage `json:"musicCFG,omitempty"`
	MusicCRC       string          `json:"musicCRC,omitempty"`
	MusicTimestamp *int64          `json:"musicTimestamp,omitempty"`
}

// MediaProviderConfig is the configured media provider kind and its
// options (populated from MEDIA_PROVIDER / MEDIA_PROVIDER_<KEY>).
type MediaProviderConfig struct {
	Type    string            `json:"type"`
	Options map[string]string `json:"options"`
}

// LoggingConfig holds the console/file log levels.
type LoggingConfig struct {
	ConsoleLevel string `json:"consoleLevel"`
	FileLevel    string `json:"fileLevel"`
}

// AdminConfig is the persisted administrative configuration: miniserver
// pairing, the audioserver record, per-zone overrides, media provider
// selection, and logging levels.
type AdminConfig struct {
	MiniServer    MiniServerCreds     `json:"miniserver"`
	AudioServer   AudioServerRecord   `json:"audioserver"`
	Zones         []zone.ConfigEntry  `json:"zones"`
	MediaProvider MediaProviderConfig `json:"mediaProvider"`
	Logging       LoggingConfig       `json:"logging"`

	// FetchFromMiniServer selects between the two historically diverging
	// pairing variants: true actively re-fetches music config from the
	// MiniServer on (re)pairing, false only ever reads the on-disk cache.
	// Which is canonical is a product decision; both are preserved behind
	// this switch, defaulting from CONFIG_FETCH_FROM_MINISERVER (off).
	FetchFromMiniServer bool `json:"fetchFromMiniServer"`
}

// MusicCache is the on-disk cached copy of the last MiniServer music
// configuration, replaced atomically on every change.
type MusicCache struct {
	CRC32     string          `json:"crc32"`
	MusicCFG  json.RawMessage `json:"musicCFG"`
	Timestamp *int64          `json:"timestamp,omitempty"`
}

// rawAudioServerConfig is the top-level shape of a setconfig payload: one
// macID naming which declared extension is the paired AudioServer, the
// full extension table, and the flat player list.
type rawAudioServerConfig struct {
	MacID      string                   `json:"macID"`
	Extensions []ExtensionDeclaration   `json:"extensions"`
	Players    []zone.PlayerDeclaration `json:"players"`
}

// ExtensionDeclaration is one AudioServer core or Extension entry in a
// setconfig payload.
type ExtensionDeclaration struct {
	MAC   string `json:"mac"`
	MacID string `json:"macId"`
	Name  string `json:"name"`
}

func normaliseMacID(s string) string {
	s = strings.ToUpper(s)
	return strings.NewReplacer("-", "", ":", "", " ", "").Replace(s)
}

// Orchestrator exclusively owns the configuration snapshot: the admin
// config, the music cache, and the derived zone.Snapshot it hands to the
// zone registry.
type Orchestrator struct {
	log       *slog.Logger
	adminPath string
	cachePath string
	zones     *zone.Registry

	mu    sync.Mutex
	admin AdminConfig
	cache MusicCache
}

// New constructs a config orchestrator. adminDir is the directory admin
// config and the music cache live in (CONFIG_ADMIN_DIR).
func New(log *slog.Logger, adminDir string, zones *zone.Registry) *Orchestrator {
	return &Orchestrator{
		log:       log,
		adminPath: filepath.Join(adminDir, "admin-config.json"),
		cachePath: filepath.Join(adminDir, "music-cache.json"),
		zones:     zones,
		admin: AdminConfig{
			FetchFromMiniServer: getEnv("CONFIG_FETCH_FROM_MINISERVER", "false") == "true",
		},
	}
}

func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// LoadAdminConfig reads the admin config from disk, if present.
func (o *Orchestrator) LoadAdminConfig() error {
	data, err := os.ReadFile(o.adminPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read admin config: %w", err)
	}

	var cfg AdminConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}

	o.mu.Lock()
	o.admin = cfg
	o.mu.Unlock()
	return nil
}

// SaveAdminConfig writes the admin config to disk atomically.
func (o *Orchestrator) SaveAdminConfig() error {
	o.mu.Lock()
	cfg := o.admin
	o.mu.Unlock()
	return atomicWriteJSON(o.adminPath, cfg)
}

// ApplyAdminConfig applies admin overrides onto in-memory runtime state:
// it fills in a default AudioServer IP derived from the first
// non-loopback local interface when none is configured, and rebuilds the
// media-provider options from the environment.
func (o *Orchestrator) ApplyAdminConfig() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.admin.MiniServer.IP == "" {
		if ip := getEnv("AUDIOSERVER_IP", ""); ip != "" {
			o.admin.MiniServer.IP = ip
		} else if detected := detectLocalIP(); detected != "" {
			o.admin.MiniServer.IP = detected
		}
	}

	o.admin.MediaProvider.Type = getEnv("MEDIA_PROVIDER", o.admin.MediaProvider.Type)
	o.admin.MediaProvider.Options = getEnvPrefixed("MEDIA_PROVIDER_")

	return nil
}

// detectLocalIP returns the first non-loopback IPv4 address bound to a
// local interface, or "" if none is found.
func detectLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}

// canonicalCRC32 computes a CRC-32 (IEEE) over the canonical JSON
// serialisation of raw: re-marshaling through a generic map forces Go's
// alphabetically-sorted-key encoding, the "canonical" form H's CRC is
// defined against.
func canonicalCRC32(raw json.RawMessage) (string, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	canon, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(canon)), nil
}

// ProcessAudioServerConfigResult is returned by ProcessAudioServerConfig.
type ProcessAudioServerConfigResult struct {
	CRC32      string
	Extensions []ExtensionDeclaration
	Unchanged  bool
}

// ProcessAudioServerConfig computes the canonical CRC32 of raw; if it
// matches the cached CRC, this is a no-op. Otherwise it parses the
// payload, matches macID against the extension table, rebuilds the
// audioserver record, persists the music cache, and reseeds the zone
// registry.
func (o *Orchestrator) ProcessAudioServerConfig(ctx context.Context, raw json.RawMessage) (ProcessAudioServerConfigResult, error) {
	crc, err := canonicalCRC32(raw)
	if err != nil {
		return ProcessAudioServerConfigResult{}, fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}

	o.mu.Lock()
	unchanged := o.cache.CRC32 == crc
	extensions := []ExtensionDeclaration{}
	o.mu.Unlock()

	if unchanged {
		return ProcessAudioServerConfigResult{CRC32: crc, Extensions: extensions, Unchanged: true}, nil
	}

	var parsed rawAudioServerConfig
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ProcessAudioServerConfigResult{}, fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}
	if parsed.MacID == "" || len(parsed.Extensions) == 0 {
		return ProcessAudioServerConfigResult{}, fmt.Errorf("%w: missing macID or extensions", bridgeerr.ErrConfigInvalid)
	}

	normalisedTarget := normaliseMacID(parsed.MacID)
	var matched *ExtensionDeclaration
	sourceNames := make(map[string]string, len(parsed.Extensions))
	for i := range parsed.Extensions {
		ext := parsed.Extensions[i]
		norm := normaliseMacID(ext.MacID)
		sourceNames[norm] = ext.Name
		if norm == normalisedTarget {
			matched = &parsed.Extensions[i]
		}
	}
	if matched == nil {
		return ProcessAudioServerConfigResult{}, fmt.Errorf("%w: no extension matches macID %q", bridgeerr.ErrConfigInvalid, parsed.MacID)
	}

	o.mu.Lock()
	o.admin.AudioServer = AudioServerRecord{
		MAC:      matched.MAC,
		MacID:    normalisedTarget,
		Name:     matched.Name,
		Paired:   true,
		MusicCFG: raw,
		MusicCRC: crc,
	}
	o.cache = MusicCache{CRC32: crc, MusicCFG: raw}
	cacheCopy := o.cache
	overrides := make(map[int]zone.ConfigEntry, len(o.admin.Zones))
	for _, z := range o.admin.Zones {
		overrides[z.ID] = z
	}
	o.mu.Unlock()

	if err := atomicWriteJSON(o.cachePath, cacheCopy); err != nil {
		if o.log != nil {
			o.log.Warn("failed to persist music cache", "error", err)
		}
	}

	snapshot := zone.Snapshot{
		Players:     parsed.Players,
		Overrides:   overrides,
		SourceNames: sourceNames,
	}
	o.zones.ApplyConfigSnapshot(ctx, snapshot)

	o.mu.Lock()
	merged, _ := mergeZoneConfigEntries(o.admin.Zones, defaultZoneEntries(parsed.Players, overrides))
	o.admin.Zones = merged
	o.mu.Unlock()

	extList := make([]ExtensionDeclaration, len(parsed.Extensions))
	copy(extList, parsed.Extensions)

	return ProcessAudioServerConfigResult{CRC32: crc, Extensions: extList}, nil
}

// defaultZoneEntries builds a DummyBackend/127.0.0.1 admin-config entry
// for every declared player that has no existing override.
func defaultZoneEntries(players []zone.PlayerDeclaration, overrides map[int]zone.ConfigEntry) []zone.ConfigEntry {
	var out []zone.ConfigEntry
	for _, p := range players {
		if _, ok := overrides[p.ID]; ok {
			continue
		}
		out = append(out, zone.ConfigEntry{
			ID:              p.ID,
			BackendKind:     backend.KindNull,
			BackendEndpoint: "127.0.0.1",
		})
	}
	return out
}

// mergeZoneConfigEntries merges incoming entries into existing by id,
// keeping whichever entry already exists for a given id. It is idempotent:
// merging the same incoming list twice returns the same merged list and
// an empty added slice the second time.
func mergeZoneConfigEntries(existing []zone.ConfigEntry, incoming []zone.ConfigEntry) (merged []zone.ConfigEntry, added []zone.ConfigEntry) {
	seen := make(map[int]bool, len(existing))
	merged = append(merged, existing...)
	for _, e := range existing {
		seen[e.ID] = true
	}
	for _, in := range incoming {
		if seen[in.ID] {
			continue
		}
		seen[in.ID] = true
		merged = append(merged, in)
		added = append(added, in)
	}
	return merged, added
}

// SetConfigTimestamp updates the cached music config timestamp.
func (o *Orchestrator) SetConfigTimestamp(ts int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache.Timestamp = &ts
	o.admin.AudioServer.MusicTimestamp = &ts
	return atomicWriteJSON(o.cachePath, o.cache)
}

// SetVolumePresets stores per-zone volume presets decoded from raw (a map
// keyed by zone id).
func (o *Orchestrator) SetVolumePresets(raw []byte) error {
	var presets map[string]zone.VolumePreset
	if err := json.Unmarshal(raw, &presets); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for idStr, preset := range presets {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		o.setZoneVolumesLocked(id, preset)
	}
	return nil
}

func (o *Orchestrator) setZoneVolumesLocked(id int, preset zone.VolumePreset) {
	for i := range o.admin.Zones {
		if o.admin.Zones[i].ID == id {
			o.admin.Zones[i].Volumes = preset
			return
		}
	}
	o.admin.Zones = append(o.admin.Zones, zone.ConfigEntry{ID: id, BackendKind: backend.KindNull, Volumes: preset})
}

// SetDefaultVolume stores zone id's default volume preset.
func (o *Orchestrator) SetDefaultVolume(id, v int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.admin.Zones {
		if o.admin.Zones[i].ID == id {
			o.admin.Zones[i].Volumes.Default = &v
			return nil
		}
	}
	o.admin.Zones = append(o.admin.Zones, zone.ConfigEntry{ID: id, Volumes: zone.VolumePreset{Default: &v}})
	return nil
}

// SetMaxVolume stores zone id's max volume cap.
func (o *Orchestrator) SetMaxVolume(id, v int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.admin.Zones {
		if o.admin.Zones[i].ID == id {
			o.admin.Zones[i].Volumes.Max = &v
			return nil
		}
	}
	o.admin.Zones = append(o.admin.Zones, zone.ConfigEntry{ID: id, Volumes: zone.VolumePreset{Max: &v}})
	return nil
}

// eventVolumes is the payload shape for audio/cfg/eventvolumes.
type eventVolumes struct {
	Alarm  *int `json:"alarm"`
	Fire   *int `json:"fire"`
	Bell   *int `json:"bell"`
	Buzzer *int `json:"buzzer"`
	TTS    *int `json:"tts"`
}

// SetEventVolumes stores zone id's alarm/fire/bell/buzzer/tts presets.
func (o *Orchestrator) SetEventVolumes(id int, raw []byte) error {
	var ev eventVolumes
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.admin.Zones {
		if o.admin.Zones[i].ID != id {
			continue
		}
		v := &o.admin.Zones[i].Volumes
		if ev.Alarm != nil {
			v.Alarm = ev.Alarm
		}
		if ev.Fire != nil {
			v.Fire = ev.Fire
		}
		if ev.Bell != nil {
			v.Bell = ev.Bell
		}
		if ev.Buzzer != nil {
			v.Buzzer = ev.Buzzer
		}
		if ev.TTS != nil {
			v.TTS = ev.TTS
		}
		return nil
	}
	o.admin.Zones = append(o.admin.Zones, zone.ConfigEntry{ID: id, Volumes: zone.VolumePreset{
		Alarm: ev.Alarm, Fire: ev.Fire, Bell: ev.Bell, Buzzer: ev.Buzzer, TTS: ev.TTS,
	}})
	return nil
}

// playerNameUpdate is one entry in a playername payload.
type playerNameUpdate struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ParsePlayerNameUpdates decodes a playername payload into its update
// records.
func ParsePlayerNameUpdates(raw []byte) ([]playerNameUpdate, error) {
	var updates []playerNameUpdate
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}
	return updates, nil
}

// SetPlayerName applies a playername payload, renaming the matching
// zones.
func (o *Orchestrator) SetPlayerName(raw []byte) error {
	updates, err := ParsePlayerNameUpdates(raw)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, u := range updates {
		found := false
		for i := range o.admin.Zones {
			if o.admin.Zones[i].ID == u.ID {
				o.admin.Zones[i].Name = u.Name
				found = true
				break
			}
		}
		if !found {
			o.admin.Zones = append(o.admin.Zones, zone.ConfigEntry{ID: u.ID, Name: u.Name, BackendKind: backend.KindNull})
		}
	}
	return nil
}

// InitializeConfig seeds runtime state from the on-disk music cache, if
// present, without ever contacting the MiniServer directly.
func (o *Orchestrator) InitializeConfig() error {
	if err := o.LoadAdminConfig(); err != nil {
		return err
	}

	data, err := os.ReadFile(o.cachePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read music cache: %w", err)
	}

	var cache MusicCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}

	o.mu.Lock()
	o.cache = cache
	o.mu.Unlock()

	o.SeedAudioServerFromCache()

	o.mu.Lock()
	fetchLive := o.admin.FetchFromMiniServer
	o.mu.Unlock()
	if fetchLive {
		if raw, err := o.fetchMusicConfigFromMiniServer(context.Background()); err == nil {
			if _, procErr := o.ProcessAudioServerConfig(context.Background(), raw); procErr != nil && o.log != nil {
				o.log.Warn("fetched miniserver music config rejected", "error", procErr)
			}
		} else if o.log != nil {
			o.log.Warn("CONFIG_FETCH_FROM_MINISERVER enabled but fetch failed, keeping cached config", "error", err)
		}
	}

	return nil
}

// fetchMusicConfigFromMiniServer actively re-fetches the music config from
// the paired MiniServer, used only when FetchFromMiniServer is enabled.
// The default pairing variant never calls this, relying solely on
// whatever setconfig payload the MiniServer pushes on its own schedule.
func (o *Orchestrator) fetchMusicConfigFromMiniServer(ctx context.Context) (json.RawMessage, error) {
	o.mu.Lock()
	ip := o.admin.MiniServer.IP
	creds := o.admin.MiniServer.Credentials
	o.mu.Unlock()

	if ip == "" {
		return nil, fmt.Errorf("%w: no miniserver ip configured", bridgeerr.ErrBackendUnreachable)
	}

	user, pass := creds, ""
	if idx := strings.Index(creds, ":"); idx >= 0 {
		user, pass = creds[:idx], creds[idx+1:]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/dev/sps/io/musiccfg", ip), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", computeAuthorizationHeader(user, pass))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: miniserver returned status %d", bridgeerr.ErrBackendUnreachable, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrConfigInvalid, err)
	}
	return raw, nil
}

// SeedAudioServerFromCache merges the cached musicCFG into the runtime
// audioserver record and marks it paired.
func (o *Orchestrator) SeedAudioServerFromCache() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cache.MusicCFG == nil {
		return
	}
	o.admin.AudioServer.MusicCFG = o.cache.MusicCFG
	o.admin.AudioServer.MusicCRC = o.cache.CRC32
	o.admin.AudioServer.MusicTimestamp = o.cache.Timestamp
	o.admin.AudioServer.Paired = true
}

// GetConfigCRC returns the currently cached music config CRC32.
func (o *Orchestrator) GetConfigCRC() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache.CRC32
}

// GetExtensions returns the extension table derived from the last
// processed setconfig payload.
func (o *Orchestrator) GetExtensions() []ExtensionDeclaration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.admin.AudioServer.MusicCFG) == 0 {
		return nil
	}
	var parsed rawAudioServerConfig
	if err := json.Unmarshal(o.admin.AudioServer.MusicCFG, &parsed); err != nil {
		return nil
	}
	return parsed.Extensions
}

// AudioServerMacID returns the paired AudioServer's canonical macID, used
// by the heartbeat emitter to build its client_id fields.
func (o *Orchestrator) AudioServerMacID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.admin.AudioServer.MacID
}

// ZoneConfigEntries returns a snapshot of the admin zone override list.
func (o *Orchestrator) ZoneConfigEntries() []zone.ConfigEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]zone.ConfigEntry, len(o.admin.Zones))
	copy(out, o.admin.Zones)
	return out
}

// computeAuthorizationHeader builds an HTTP Basic auth header value for
// user/pass, trimming both inputs first.
func computeAuthorizationHeader(user, pass string) string {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
