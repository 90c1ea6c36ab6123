package dispatch

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	secureInitRe = regexp.MustCompile(`^(secure/init/)(.*)$`)
	secureHelloRe = regexp.MustCompile(`^secure/hello/([^/]*)/(.*)$`)
	secureAuthRe  = regexp.MustCompile(`^(secure/authenticate/[^/]*/)(.*)$`)
	cfgPayloadRe  = regexp.MustCompile(`^(audio/cfg/(?:setconfig|speakertype|volumes|playername|groupopts|playeropts)/)(.*)$`)
)

const truncationMarker = "(truncated "

// Sanitise rewrites a command URL for logging: handshake tokens and
// config payloads are replaced with a fixed label or length marker rather
// than logged verbatim, and anything left over 320 chars is truncated.
// Idempotent: Sanitise(Sanitise(x)) == Sanitise(x). Every redaction label
// starts with "[", which doubles as the guard against re-redacting an
// already-sanitised string.
func Sanitise(command string) string {
	out := command

	switch {
	case secureInitRe.MatchString(out):
		m := secureInitRe.FindStringSubmatch(out)
		if !strings.HasPrefix(m[2], "[") {
			out = m[1] + fmt.Sprintf("[token redacted, %d chars]", len(m[2]))
		}
	case secureHelloRe.MatchString(out):
		m := secureHelloRe.FindStringSubmatch(out)
		if !strings.HasPrefix(m[2], "[") {
			out = fmt.Sprintf("secure/hello/%s/[cert redacted, %d chars]", m[1], len(m[2]))
		}
	case secureAuthRe.MatchString(out):
		m := secureAuthRe.FindStringSubmatch(out)
		if !strings.HasPrefix(m[2], "[") {
			out = m[1] + "[token redacted]"
		}
	case cfgPayloadRe.MatchString(out):
		m := cfgPayloadRe.FindStringSubmatch(out)
		if !strings.HasPrefix(m[2], "[") {
			out = m[1] + "[payload redacted]"
		}
	}

	if len(out) > 320 && !strings.Contains(out, truncationMarker) {
		dropped := len(out) - 320
		out = out[:320] + fmt.Sprintf("... %s%d chars)", truncationMarker, dropped)
	}

	return out
}
