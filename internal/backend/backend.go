// ABOUTME: Backend capability port every media backend must satisfy
// ABOUTME: Abstracts Music Assistant, Sonos, Beolink, and the Null placeholder
package backend

import "context"

// Kind identifies which media backend a zone is configured against.
type Kind string

const (
	KindNull           Kind = "null"
	KindMusicAssistant Kind = "musicassistant"
	KindSonos          Kind = "sonos"
	KindBeolink        Kind = "beolink"
)

// Command is the recognised command vocabulary the zone layer emits to
// backends.
type Command string

const (
	CmdOn             Command = "on"
	CmdOff            Command = "off"
	CmdPlay           Command = "play"
	CmdResume         Command = "resume"
	CmdPause          Command = "pause"
	CmdStop           Command = "stop"
	CmdQueuePlus      Command = "queueplus"
	CmdQueueMinus     Command = "queueminus"
	CmdQueue          Command = "queue"
	CmdVolume         Command = "volume"
	CmdRepeat         Command = "repeat"
	CmdShuffle        Command = "shuffle"
	CmdPosition       Command = "position"
	CmdServicePlay    Command = "serviceplay"
	CmdPlaylistPlay   Command = "playlistplay"
	CmdAnnounce       Command = "announce"
	CmdGroupJoinMany  Command = "groupJoinMany"
	CmdGroupLeaveMany Command = "groupLeaveMany"
	CmdGroupLeave     Command = "groupLeave"
)

// RepeatMode is the zone's repeat setting.
type RepeatMode string

const (
	RepeatOff   RepeatMode = "off"
	RepeatTrack RepeatMode = "track"
	RepeatQueue RepeatMode = "queue"
)

// Param is a command parameter: either a single string or an ordered list
// of strings (e.g. `queue` takes a subcommand list).
type Param struct {
	Single string
	List   []string
}

// SingleParam builds a single-value Param.
func SingleParam(v string) *Param { return &Param{Single: v} }

// ListParam builds a list-value Param.
func ListParam(v ...string) *Param { return &Param{List: v} }

// PlayerInfo describes one discoverable backend player (used by GetPlayers
// helpers for admin discovery).
type PlayerInfo struct {
	ID   string
	Name string
	Host string
}

// ZoneStatusUpdate is the partial state a backend reports back to the zone
// manager asynchronously. Backends never call back into the zone manager
// directly (that would be a cyclic dependency) — they push
// updates through this struct to whatever EventSink they were constructed
// with.
type ZoneStatusUpdate struct {
	Mode       *string
	Title      *string
	Artist     *string
	Album      *string
	CoverURL   *string
	AudioPath  *string
	Volume     *int
	Repeat     *RepeatMode
	Shuffle    *bool
	DurationMs *int
	PositionMs *int
	QIndex     *int
}

// EventSink receives asynchronous status updates from a backend instance.
// Constructed once per zone and injected at backend construction time to
// break the zone -> backend -> zone-manager cycle.
type EventSink interface {
	ZoneStatusUpdate(zoneID int, update ZoneStatusUpdate)
}

// Backend is the capability port every media backend instance satisfies
type Backend interface {
	// Initialize establishes the backend's session. Fails with
	// bridgeerr.ErrBackendUnreachable when the host cannot be contacted.
	Initialize(ctx context.Context) error

	// SendCommand dispatches a transport/queue/volume command.
	SendCommand(ctx context.Context, command Command, param *Param) error

	// SendGroupCommand dispatches a group-wide command.
	SendGroupCommand(ctx context.Context, command Command, groupType string, leader int, others ...int) error

	// Announce plays a one-shot URL announcement. Only Music Assistant
	// backends support this for non-looping alerts; others return
	// ErrAnnounceNotSupported.
	Announce(ctx context.Context, url string) error

	// Cleanup releases resources. Must not error on repeated calls.
	Cleanup() error

	// SupportsAnnounce reports whether Announce is meaningful for this
	// backend instance: represent duck-typed optional capabilities as
	// explicit flags rather than runtime type assertions.
	SupportsAnnounce() bool
}

// ErrAnnounceNotSupported is returned by Announce on backends that do not
// implement it.
type errAnnounceNotSupported struct{}

func (errAnnounceNotSupported) Error() string { return "announce not supported by this backend" }

var ErrAnnounceNotSupported error = errAnnounceNotSupported{}
