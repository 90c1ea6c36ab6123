// ABOUTME: Command dispatcher: URL routing, response envelope, and the secure/* handshake stub
// ABOUTME: Routes are tried in declaration order; first match wins
package dispatch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/loxone-bridge/audioserver-bridge/internal/alert"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/broadcast"
	"github.com/loxone-bridge/audioserver-bridge/internal/config"
	"github.com/loxone-bridge/audioserver-bridge/internal/fade"
	"github.com/loxone-bridge/audioserver-bridge/internal/group"
	"github.com/loxone-bridge/audioserver-bridge/internal/provider"
	"github.com/loxone-bridge/audioserver-bridge/internal/zone"
	"github.com/loxone-bridge/audioserver-bridge/pkg/protocol"
)

// Dispatcher owns the route table and the collaborators every handler
// delegates to.
type Dispatcher struct {
	log      *slog.Logger
	bus      *broadcast.Bus
	zones    *zone.Registry
	groups   *group.Tracker
	alerts   *alert.Controller
	cfg      *config.Orchestrator
	provider *provider.Service
	fades    *fade.Controller

	mac      string
	groupSeq int64
	routes   []route
}

// New constructs a dispatcher and builds its route table. mac is the
// AudioServer's MAC address, used by the secure/info/pairing stub.
func New(log *slog.Logger, bus *broadcast.Bus, zones *zone.Registry, groups *group.Tracker, alerts *alert.Controller, cfg *config.Orchestrator, prov *provider.Service, fades *fade.Controller, mac string) *Dispatcher {
	d := &Dispatcher{
		log:      log,
		bus:      bus,
		zones:    zones,
		groups:   groups,
		alerts:   alerts,
		cfg:      cfg,
		provider: prov,
		fades:    fades,
		mac:      mac,
	}
	d.routes = d.buildRoutes()
	return d
}

// AlertMediaResolver implements alert.MediaResolver. There is no real media
// synthesis behind it: alarm/fire/bell/buzzer resolve to a fixed payload
// naming the alert type, tts parses its `[lang|]text` payload via the alert
// package's own parser.
type AlertMediaResolver struct{}

// NewAlertMediaResolver constructs the resolver the alert controller is
// wired with.
func NewAlertMediaResolver() AlertMediaResolver {
	return AlertMediaResolver{}
}

func (r AlertMediaResolver) ResolveAlertMedia(alertType alert.Type, payload string) (*backend.Param, bool) {
	if alertType == alert.TypeTTS {
		lang, text := alert.ParseTTSPayload(payload)
		if strings.TrimSpace(text) == "" {
			return nil, false
		}
		return backend.SingleParam(fmt.Sprintf("tts:%s:%s", lang, text)), true
	}
	return backend.SingleParam(fmt.Sprintf("alert:%s", alertType)), true
}

// route is one entry in the dispatch table. Pattern segments are matched
// literally, "*" captures exactly one segment, "a|b|c" captures one segment
// constrained to the given alternatives, and a trailing "**" captures the
// remainder of the path (possibly empty) as a single joined-by-"/" capture —
// this is how the dispatcher expresses both the prefix-match and
// regex-match route shapes with one matcher.
type route struct {
	name   string
	prefix []string
	raw    bool
	handle func(d *Dispatcher, ctx context.Context, caps []string, query string) protocol.CommandResult
}

func matchPattern(pattern, segs []string) ([]string, bool) {
	var caps []string
	i := 0
	for _, p := range pattern {
		if p == "**" {
			caps = append(caps, strings.Join(segs[i:], "/"))
			return caps, true
		}
		if i >= len(segs) {
			return nil, false
		}
		if p == "*" {
			caps = append(caps, segs[i])
		} else if strings.Contains(p, "|") {
			if !containsStr(strings.Split(p, "|"), segs[i]) {
				return nil, false
			}
			caps = append(caps, segs[i])
		} else if p != segs[i] {
			return nil, false
		}
		i++
	}
	if i != len(segs) {
		return nil, false
	}
	return caps, true
}

func containsStr(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func segSplit(p string) []string { return strings.Split(p, "/") }

// Dispatch resolves a command URL (leading slash already stripped by the
// transport layer) to a serialised response. The returned bytes are the
// complete HTTP/WebSocket response body.
func (d *Dispatcher) Dispatch(ctx context.Context, rawURL string) []byte {
	rawURL = strings.TrimPrefix(rawURL, "/")
	path, query := splitQuery(rawURL)
	path = rewriteLibraryAlias(path)
	segs := segSplit(path)

	for _, r := range d.routes {
		caps, ok := matchPattern(r.prefix, segs)
		if !ok {
			continue
		}
		result := r.handle(d, ctx, caps, query)
		return d.serialise(r.name, path, result)
	}

	name := lastAlphabeticSegment(segs)
	return d.serialise(name, path, protocol.CommandResult{Payload: []interface{}{}})
}

func splitQuery(path string) (string, string) {
	if idx := strings.Index(path, "?"); idx >= 0 {
		return path[:idx], path[idx+1:]
	}
	return path, ""
}

// rewriteLibraryAlias rewrites `audio/<zone>/(albums|artists|tracks):<rest>`
// to `audio/<zone>/library/play/<alias>` before route matching, where
// <alias> is the original "kind:rest" segment passed through unchanged.
var libraryAliasRe = regexp.MustCompile(`^(audio/[^/]+)/(albums|artists|tracks):(.*)$`)

func rewriteLibraryAlias(path string) string {
	m := libraryAliasRe.FindStringSubmatch(path)
	if m == nil {
		return path
	}
	return fmt.Sprintf("%s/library/play/%s:%s", m[1], m[2], m[3])
}

func lastAlphabeticSegment(segs []string) string {
	for i := len(segs) - 1; i >= 0; i-- {
		if isAlphabetic(segs[i]) {
			return segs[i]
		}
	}
	if len(segs) > 0 {
		return segs[len(segs)-1]
	}
	return ""
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func (d *Dispatcher) serialise(name, command string, result protocol.CommandResult) []byte {
	if result.Raw != nil {
		return result.Raw
	}
	env := protocol.Envelope{Name: name, Result: result.Payload, Command: command}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		if d.log != nil {
			d.log.Warn("failed to serialise command result", "command", command, "error", err)
		}
		return []byte("{}")
	}
	return data
}

// decodeB64URLSafe decodes a URL-safe base64 payload, restoring standard
// alphabet and padding first.
func decodeB64URLSafe(s string) ([]byte, error) {
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	if pad := len(s) % 4; pad != 0 {
		s += strings.Repeat("=", 4-pad)
	}
	return base64.StdEncoding.DecodeString(s)
}

func parseCSV(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func (d *Dispatcher) nextGroupSeq() int64 {
	return atomic.AddInt64(&d.groupSeq, 1)
}
