// ABOUTME: Sentinel error kinds shared across the bridge's components
// ABOUTME: Every error surfaced to a caller wraps one of these with errors.Is/errors.As
package bridgeerr

import "errors"

// None of these propagate across the top of the command dispatcher — every
// handler resolves them into a protocol.CommandResult instead of letting
// them escape.
var (
	// ErrConfigInvalid marks a malformed setconfig payload, a missing
	// required field, or a CRC/macID mismatch. Local-only: logged and
	// surfaced as {success:false, error:...}.
	ErrConfigInvalid = errors.New("config invalid")

	// ErrZoneNotFound marks a command referencing an unknown PlayerId.
	ErrZoneNotFound = errors.New("zone not found")

	// ErrZoneNotConfigured marks a zone missing required backend params,
	// e.g. a MusicAssistant zone with no maPlayerId.
	ErrZoneNotConfigured = errors.New("zone not configured")

	// ErrBackendUnreachable marks a backend initialize/sendCommand
	// failure due to network.
	ErrBackendUnreachable = errors.New("backend unreachable")

	// ErrDispatchFailed marks a transient backend rejection of a command.
	ErrDispatchFailed = errors.New("dispatch failed")

	// ErrUnknownCommand marks a URL with no matching route.
	ErrUnknownCommand = errors.New("unknown command")
)
