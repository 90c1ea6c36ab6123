// ABOUTME: Sonos backend: REST discovery plus a per-player control WebSocket
// ABOUTME: Authenticates every connection with the local API key header
package sonos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
)

const apiKeyHeader = "X-Sonos-Api-Key"

// namespacedCommand mirrors the Sonos local control API's
// {namespace, command, playerId, cmdId} envelope.
type namespacedCommand struct {
	Namespace string                 `json:"namespace"`
	Command   string                 `json:"command"`
	PlayerID  string                 `json:"playerId,omitempty"`
	CmdID     string                 `json:"cmdId,omitempty"`
	Args      map[string]interface{} `json:"args,omitempty"`
}

// Backend is the Sonos media backend. Unlike Music Assistant's single RPC
// session, Sonos exposes one WebSocket per player and a separate REST
// surface for discovery, grounded on the household/groups REST lookup and
// per-player websocket subscription pattern.
type Backend struct {
	log      *slog.Logger
	host     string
	apiKey   string
	playerID string
	sink     backend.EventSink
	zoneID   int

	mu   sync.Mutex
	conn *websocket.Conn
}

// New constructs a Sonos backend instance for one zone. host is the local
// Sonos player's control-API host:port, apiKey its local API key, and
// playerID the Sonos PlayerId to target.
func New(log *slog.Logger, zoneID int, host, apiKey, playerID string, sink backend.EventSink) *Backend {
	return &Backend{
		log:      log,
		zoneID:   zoneID,
		host:     host,
		apiKey:   apiKey,
		playerID: playerID,
		sink:     sink,
	}
}

func (b *Backend) Initialize(ctx context.Context) error {
	if b.host == "" {
		return fmt.Errorf("%w: empty host", bridgeerr.ErrBackendUnreachable)
	}

	headers := http.Header{}
	headers.Set(apiKeyHeader, b.apiKey)

	url := fmt.Sprintf("wss://%s/websocket/api", b.host)
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	go b.readLoop(conn)

	return nil
}

func (b *Backend) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if b.log != nil {
				b.log.Debug("sonos connection closed", "zone", b.zoneID, "error", err)
			}
			return
		}

		var evt struct {
			Namespace    string `json:"namespace"`
			PlaybackState string `json:"playbackState"`
			Volume       *struct {
				Volume int `json:"volume"`
			} `json:"volume,omitempty"`
		}
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		if b.sink == nil {
			continue
		}

		update := backend.ZoneStatusUpdate{}
		if evt.PlaybackState != "" {
			mode := mapPlaybackState(evt.PlaybackState)
			update.Mode = &mode
		}
		if evt.Volume != nil {
			v := evt.Volume.Volume
			update.Volume = &v
		}
		b.sink.ZoneStatusUpdate(b.zoneID, update)
	}
}

func mapPlaybackState(s string) string {
	switch s {
	case "PLAYBACK_STATE_PLAYING":
		return "play"
	case "PLAYBACK_STATE_PAUSED":
		return "pause"
	case "PLAYBACK_STATE_IDLE":
		return "off"
	default:
		return "stop"
	}
}

func (b *Backend) send(namespace, command string, args map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return fmt.Errorf("%w: zone %d not connected", bridgeerr.ErrDispatchFailed, b.zoneID)
	}

	msg := namespacedCommand{
		Namespace: namespace,
		Command:   command,
		PlayerID:  b.playerID,
		Args:      args,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrDispatchFailed, err)
	}

	b.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrDispatchFailed, err)
	}
	return nil
}

func (b *Backend) SendCommand(ctx context.Context, command backend.Command, param *backend.Param) error {
	namespace, cmd, args := translateCommand(command, param)
	if cmd == "" {
		return fmt.Errorf("%w: no sonos mapping for %q", bridgeerr.ErrUnknownCommand, command)
	}
	return b.send(namespace, cmd, args)
}

func translateCommand(command backend.Command, param *backend.Param) (namespace, cmd string, args map[string]interface{}) {
	switch command {
	case backend.CmdPlay, backend.CmdResume:
		return "playback", "play", nil
	case backend.CmdPause:
		return "playback", "pause", nil
	case backend.CmdStop:
		return "playback", "stop", nil
	case backend.CmdVolume:
		if param == nil {
			return "", "", nil
		}
		return "playerVolume", "setVolume", map[string]interface{}{"volume": param.Single}
	case backend.CmdRepeat:
		if param == nil {
			return "", "", nil
		}
		return "playbackMetadata", "setPlayModes", map[string]interface{}{"repeat": param.Single}
	case backend.CmdShuffle:
		if param == nil {
			return "", "", nil
		}
		return "playbackMetadata", "setPlayModes", map[string]interface{}{"shuffle": param.Single}
	case backend.CmdQueuePlus:
		return "playback", "skipToNextTrack", nil
	case backend.CmdQueueMinus:
		return "playback", "skipToPreviousTrack", nil
	case backend.CmdOn:
		return "playback", "play", nil
	case backend.CmdOff:
		return "playback", "stop", nil
	default:
		return "", "", nil
	}
}

func (b *Backend) SendGroupCommand(ctx context.Context, command backend.Command, groupType string, leader int, others ...int) error {
	members := make([]interface{}, 0, len(others)+1)
	members = append(members, fmt.Sprintf("%d", leader))
	for _, o := range others {
		members = append(members, fmt.Sprintf("%d", o))
	}
	return b.send("groups", "setGroupMembers", map[string]interface{}{"playerIds": members})
}

// Announce is not part of the Sonos local control API surface used here; it
// always reports unsupported.
func (b *Backend) Announce(ctx context.Context, url string) error {
	return backend.ErrAnnounceNotSupported
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

func (b *Backend) SupportsAnnounce() bool { return false }

// GetPlayers enumerates the players visible in a Sonos household via the
// REST discovery surface (the household/groups lookup every player session
// starts with before switching to the per-player websocket).
func GetPlayers(ctx context.Context, host string) ([]backend.PlayerInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("https://%s/households", host), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	var parsed struct {
		Households []struct {
			Groups []struct {
				Players []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"players"`
			} `json:"groups"`
		} `json:"households"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	var out []backend.PlayerInfo
	for _, h := range parsed.Households {
		for _, g := range h.Groups {
			for _, p := range g.Players {
				out = append(out, backend.PlayerInfo{ID: p.ID, Name: p.Name, Host: host})
			}
		}
	}
	return out, nil
}
