// ABOUTME: Music Assistant backend: a persistent WebSocket RPC session per zone
// ABOUTME: The only backend kind that supports one-shot URL announcements
package ma

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
)

// rpcCommand is the JSON shape sent over the Music Assistant WebSocket API
// for a single player command.
type rpcCommand struct {
	MessageID string      `json:"message_id"`
	Command   string      `json:"command"`
	PlayerID  string      `json:"player_id"`
	Args      interface{} `json:"args,omitempty"`
}

// Backend is the Music Assistant media backend. It owns one persistent
// WebSocket connection to the Music Assistant server, grounded on the
// teacher's connect-once/mutex-guarded-write client pattern
// (pkg/protocol/client.go) generalized from the Resonate handshake to a
// Music Assistant command RPC.
type Backend struct {
	log        *slog.Logger
	endpoint   string
	maPlayerID string
	sink       backend.EventSink
	zoneID     int

	mu     sync.Mutex
	conn   *websocket.Conn
	msgSeq atomic.Uint64
}

// New constructs a Music Assistant backend instance for one zone.
// endpoint is the host:port of the Music Assistant server; maPlayerID may
// be empty, in which case SendCommand fails with ErrZoneNotConfigured
// (checked by the zone registry before delegating).
func New(log *slog.Logger, zoneID int, endpoint, maPlayerID string, sink backend.EventSink) *Backend {
	return &Backend{
		log:        log,
		zoneID:     zoneID,
		endpoint:   endpoint,
		maPlayerID: maPlayerID,
		sink:       sink,
	}
}

func (b *Backend) Initialize(ctx context.Context) error {
	if b.endpoint == "" {
		return fmt.Errorf("%w: empty endpoint", bridgeerr.ErrBackendUnreachable)
	}

	url := fmt.Sprintf("ws://%s/ws", b.endpoint)
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	go b.readLoop(conn)

	return nil
}

// readLoop consumes asynchronous state-update frames and forwards them to
// the zone manager's event sink. The backend never calls back into the
// zone manager directly.
func (b *Backend) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if b.log != nil {
				b.log.Debug("music assistant connection closed", "zone", b.zoneID, "error", err)
			}
			return
		}

		var evt struct {
			State struct {
				State string `json:"state"`
				Media struct {
					Title  string `json:"title"`
					Artist string `json:"artist"`
					Album  string `json:"album"`
				} `json:"media"`
				Volume int `json:"volume_level"`
			} `json:"state"`
		}
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		if b.sink == nil {
			continue
		}

		mode := mapState(evt.State.State)
		title := evt.State.Media.Title
		artist := evt.State.Media.Artist
		album := evt.State.Media.Album
		volume := evt.State.Volume

		b.sink.ZoneStatusUpdate(b.zoneID, backend.ZoneStatusUpdate{
			Mode:   &mode,
			Title:  &title,
			Artist: &artist,
			Album:  &album,
			Volume: &volume,
		})
	}
}

func mapState(s string) string {
	switch s {
	case "playing":
		return "play"
	case "paused":
		return "pause"
	case "idle", "off":
		return "off"
	default:
		return "stop"
	}
}

func (b *Backend) SendCommand(ctx context.Context, command backend.Command, param *backend.Param) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("%w: zone %d not connected", bridgeerr.ErrDispatchFailed, b.zoneID)
	}

	var args interface{}
	if param != nil {
		if len(param.List) > 0 {
			args = param.List
		} else if param.Single != "" {
			args = param.Single
		}
	}

	msg := rpcCommand{
		MessageID: fmt.Sprintf("%d", b.msgSeq.Add(1)),
		Command:   string(command),
		PlayerID:  b.maPlayerID,
		Args:      args,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrDispatchFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return fmt.Errorf("%w: zone %d not connected", bridgeerr.ErrDispatchFailed, b.zoneID)
	}
	b.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrDispatchFailed, err)
	}
	return nil
}

func (b *Backend) SendGroupCommand(ctx context.Context, command backend.Command, groupType string, leader int, others ...int) error {
	members := make([]string, 0, len(others)+1)
	members = append(members, fmt.Sprintf("%d", leader))
	for _, o := range others {
		members = append(members, fmt.Sprintf("%d", o))
	}
	return b.SendCommand(ctx, command, backend.ListParam(members...))
}

// Announce plays a one-shot URL announcement. Music Assistant is the only
// backend kind that supports this for non-looping alerts. The payload
// carries only {"url": ...} — richer metadata such as a volume override or
// language is discarded, preserved as-is.
func (b *Backend) Announce(ctx context.Context, url string) error {
	return b.SendCommand(ctx, backend.CmdAnnounce, backend.SingleParam(url))
}

func (b *Backend) Cleanup() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

func (b *Backend) SupportsAnnounce() bool { return true }

// GetPlayers enumerates the players a Music Assistant server knows about.
// Real discovery is delegated to internal/discovery; this is the static
// per-kind helper the capability port requires.
func GetPlayers(ctx context.Context, host string) ([]backend.PlayerInfo, error) {
	url := fmt.Sprintf("ws://%s/ws", host)
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"command": "players/all"}); err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	var resp struct {
		Result []struct {
			PlayerID string `json:"player_id"`
			Name     string `json:"name"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	out := make([]backend.PlayerInfo, 0, len(resp.Result))
	for _, p := range resp.Result {
		out = append(out, backend.PlayerInfo{ID: p.PlayerID, Name: p.Name, Host: host})
	}
	return out, nil
}
