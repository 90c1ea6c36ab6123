// ABOUTME: Alert controller: alarm/firealarm/buzzer/bell/tts start-stop state machine
// ABOUTME: Keyed per (zoneId, type); loop/fade snapshots are cleared on stop
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/fade"
)

// Type is the recognised alert kind.
type Type string

const (
	TypeAlarm     Type = "alarm"
	TypeFireAlarm Type = "firealarm"
	TypeBuzzer    Type = "buzzer"
	TypeBell      Type = "bell"
	TypeTTS       Type = "tts"
)

var loopingTypes = map[Type]bool{TypeAlarm: true, TypeFireAlarm: true, TypeBuzzer: true}

func (t Type) looping() bool { return loopingTypes[t] }

const (
	defaultFadeMs = 3000
	ttsMaxChars   = 800
)

var ttsLanguageAliases = map[string]string{
	"nld": "nl", "dut": "nl",
	"eng": "en",
	"deu": "de", "ger": "de",
	"ita": "it",
	"spa": "es",
	"por": "pt",
	"fra": "fr", "fre": "fr",
}

// ResolveTTSLanguage maps a language tag from a `[LANG|]text` TTS payload
// to its two-letter form, applying the known three-letter aliases and
// falling back to the first two characters of anything else.
func ResolveTTSLanguage(tag string) string {
	tag = strings.ToLower(tag)
	if alias, ok := ttsLanguageAliases[tag]; ok {
		return alias
	}
	if len(tag) >= 2 {
		return tag[:2]
	}
	return tag
}

// ParseTTSPayload splits a `[LANG|]text` payload into language and text,
// truncating text to ttsMaxChars with an ellipsis suffix.
func ParseTTSPayload(payload string) (lang, text string) {
	if idx := strings.Index(payload, "|"); idx >= 0 {
		lang = ResolveTTSLanguage(payload[:idx])
		text = payload[idx+1:]
	} else {
		text = payload
	}
	if len(text) > ttsMaxChars {
		text = text[:ttsMaxChars] + "…"
	}
	return lang, text
}

// Options are the parsed fade-related query options accompanying a start
// or stop command.
type Options struct {
	Fading   bool
	FadingMs int
}

// Dispatcher is the subset of the zone registry the alert controller
// needs: send a command to one zone and read/write its volume.
type Dispatcher interface {
	SendCommandToZone(ctx context.Context, zoneID int, command backend.Command, param *backend.Param) error
	ZoneBackendKind(zoneID int) backend.Kind
	ZoneVolume(zoneID int) int
	ZonePreset(zoneID int, alertType Type) int
}

type snapshot struct {
	previousRepeat backend.RepeatMode
	hasRepeat      bool
	originalVolume int
	fadeDurationMs int
}

// TargetResult reports the outcome for one target zone.
type TargetResult struct {
	ZoneID int
	Reason string // empty on success
}

const (
	ReasonInvalidZone         = "invalid-zone"
	ReasonUnknownZone         = "unknown-zone"
	ReasonDispatchFailed      = "dispatch-failed"
	ReasonRepeatFailed        = "repeat-failed"
	ReasonRepeatRestoreFailed = "repeat-restore-failed"
	ReasonPauseFailed         = "pause-failed"
	ReasonNoTargets           = "no-targets"
	ReasonMediaUnavailable    = "media-unavailable"
)

// MediaResolver resolves an alert type (and, for tts, payload text) to the
// serviceplay/announce payload the zone layer should dispatch.
type MediaResolver interface {
	ResolveAlertMedia(alertType Type, payload string) (param *backend.Param, ok bool)
}

// Controller runs the per-(zone,type) alert state machine.
type Controller struct {
	log      *slog.Logger
	zones    Dispatcher
	fades    *fade.Controller
	resolver MediaResolver

	mu        sync.Mutex
	snapshots map[string]*snapshot
}

// New constructs an alert controller.
func New(log *slog.Logger, zones Dispatcher, fades *fade.Controller, resolver MediaResolver) *Controller {
	return &Controller{
		log:       log,
		zones:     zones,
		fades:     fades,
		resolver:  resolver,
		snapshots: make(map[string]*snapshot),
	}
}

func snapshotKey(zoneID int, alertType Type) string {
	return fmt.Sprintf("%d:%s", zoneID, alertType)
}

// Start begins (or restarts) an alert on every target zone.
func (c *Controller) Start(ctx context.Context, alertType Type, targets []int, payload string, opts Options) []TargetResult {
	if len(targets) == 0 {
		return []TargetResult{{Reason: ReasonNoTargets}}
	}

	results := make([]TargetResult, 0, len(targets))
	for _, zoneID := range targets {
		results = append(results, c.startOne(ctx, alertType, zoneID, payload, opts))
	}
	return results
}

func (c *Controller) startOne(ctx context.Context, alertType Type, zoneID int, payload string, opts Options) TargetResult {
	if zoneID <= 0 {
		return TargetResult{ZoneID: zoneID, Reason: ReasonInvalidZone}
	}

	param, ok := c.resolver.ResolveAlertMedia(alertType, payload)
	if !ok {
		return TargetResult{ZoneID: zoneID, Reason: ReasonMediaUnavailable}
	}

	key := snapshotKey(zoneID, alertType)
	c.fades.Cancel(key)

	snap := &snapshot{}
	originalVolume := c.zones.ZoneVolume(zoneID)
	snap.originalVolume = originalVolume
	if opts.FadingMs > 0 {
		snap.fadeDurationMs = opts.FadingMs
	} else {
		snap.fadeDurationMs = defaultFadeMs
	}

	command := backend.CmdServicePlay
	if c.zones.ZoneBackendKind(zoneID) == backend.KindMusicAssistant && !alertType.looping() {
		command = backend.CmdAnnounce
	}

	if opts.Fading {
		if err := c.zones.SendCommandToZone(ctx, zoneID, backend.CmdVolume, backend.SingleParam("-100")); err != nil {
			return TargetResult{ZoneID: zoneID, Reason: ReasonDispatchFailed}
		}
	}

	if err := c.zones.SendCommandToZone(ctx, zoneID, command, param); err != nil {
		return TargetResult{ZoneID: zoneID, Reason: ReasonDispatchFailed}
	}

	if opts.Fading {
		_ = c.zones.SendCommandToZone(ctx, zoneID, backend.CmdVolume, backend.SingleParam("-100"))
	}

	if alertType.looping() {
		snap.hasRepeat = true
		snap.previousRepeat = backend.RepeatOff
		if err := c.zones.SendCommandToZone(ctx, zoneID, backend.CmdRepeat, backend.SingleParam(string(backend.RepeatTrack))); err != nil {
			return TargetResult{ZoneID: zoneID, Reason: ReasonRepeatFailed}
		}
	}

	c.mu.Lock()
	c.snapshots[key] = snap
	c.mu.Unlock()

	if opts.Fading {
		target := c.zones.ZonePreset(zoneID, alertType)
		if target == 0 {
			target = originalVolume
		}
		c.fades.ScheduleFade(key, 0, target, snap.fadeDurationMs, func(stepCtx context.Context, v int) error {
			return c.zones.SendCommandToZone(stepCtx, zoneID, backend.CmdVolume, backend.SingleParam(fmt.Sprintf("%d", v)))
		}, nil)
	}

	return TargetResult{ZoneID: zoneID}
}

// Stop ends an alert on every target zone.
func (c *Controller) Stop(ctx context.Context, alertType Type, targets []int, opts Options) []TargetResult {
	if len(targets) == 0 {
		return []TargetResult{{Reason: ReasonNoTargets}}
	}

	results := make([]TargetResult, 0, len(targets))
	for _, zoneID := range targets {
		results = append(results, c.stopOne(ctx, alertType, zoneID, opts))
	}
	return results
}

func (c *Controller) stopOne(ctx context.Context, alertType Type, zoneID int, opts Options) TargetResult {
	key := snapshotKey(zoneID, alertType)

	c.fades.Cancel(key)

	c.mu.Lock()
	snap, ok := c.snapshots[key]
	delete(c.snapshots, key)
	c.mu.Unlock()

	if !ok {
		return TargetResult{ZoneID: zoneID, Reason: ReasonUnknownZone}
	}

	if snap.hasRepeat {
		if err := c.zones.SendCommandToZone(ctx, zoneID, backend.CmdRepeat, backend.SingleParam(string(snap.previousRepeat))); err != nil {
			return TargetResult{ZoneID: zoneID, Reason: ReasonRepeatRestoreFailed}
		}
	}

	if opts.Fading {
		duration := snap.fadeDurationMs
		if duration <= 0 {
			duration = defaultFadeMs
		}
		current := c.zones.ZoneVolume(zoneID)
		c.fades.ScheduleFade(key, current, 0, duration, func(stepCtx context.Context, v int) error {
			return c.zones.SendCommandToZone(stepCtx, zoneID, backend.CmdVolume, backend.SingleParam(fmt.Sprintf("%d", v)))
		}, func() {
			_ = c.zones.SendCommandToZone(context.Background(), zoneID, backend.CmdPause, nil)
			_ = c.zones.SendCommandToZone(context.Background(), zoneID, backend.CmdVolume, backend.SingleParam(fmt.Sprintf("%d", snap.originalVolume)))
		})
		return TargetResult{ZoneID: zoneID}
	}

	if err := c.zones.SendCommandToZone(ctx, zoneID, backend.CmdPause, nil); err != nil {
		return TargetResult{ZoneID: zoneID, Reason: ReasonPauseFailed}
	}
	_ = c.zones.SendCommandToZone(ctx, zoneID, backend.CmdVolume, backend.SingleParam(fmt.Sprintf("%d", snap.originalVolume)))

	return TargetResult{ZoneID: zoneID}
}

// ActiveCount reports how many (zone, alert type) pairs currently have a
// live snapshot, used by the operator monitor's summary line.
func (c *Controller) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshots)
}
