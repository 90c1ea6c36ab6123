// ABOUTME: Beolink backend: plain HTTP control plus a polled status loop
// ABOUTME: No push channel is assumed available, unlike the websocket backends
package beolink

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeerr"
)

const pollInterval = 2 * time.Second

// Backend is the Beolink (Bang & Olufsen Mozart API) media backend. Its
// devices expose a plain JSON HTTP control surface with no always-on push
// channel, so state changes are observed via a periodic poll of the
// playback status endpoint instead of a read loop on a socket, the same
// source-tagged "soap_poll" fallback pattern used when no subscription is
// active.
type Backend struct {
	log    *slog.Logger
	host   string
	sink   backend.EventSink
	zoneID int
	client *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New constructs a Beolink backend instance for one zone. host is the
// device's host:port.
func New(log *slog.Logger, zoneID int, host string, sink backend.EventSink) *Backend {
	return &Backend{
		log:    log,
		zoneID: zoneID,
		host:   host,
		sink:   sink,
		client: &http.Client{
			Timeout:   5 * time.Second,
			Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		},
	}
}

func (b *Backend) Initialize(ctx context.Context) error {
	if b.host == "" {
		return fmt.Errorf("%w: empty host", bridgeerr.ErrBackendUnreachable)
	}

	if _, err := b.getJSON(ctx, "/BeoZone/Zone/Active"); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	go b.pollLoop(pollCtx)

	return nil
}

func (b *Backend) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.pollOnce(ctx)
		}
	}
}

func (b *Backend) pollOnce(ctx context.Context) {
	data, err := b.getJSON(ctx, "/BeoZone/Zone/Active")
	if err != nil {
		if b.log != nil {
			b.log.Debug("beolink poll failed", "zone", b.zoneID, "error", err)
		}
		return
	}
	if b.sink == nil {
		return
	}

	var status struct {
		Stream struct {
			PlayQueueItemID string `json:"playQueueItemId"`
		} `json:"stream"`
		PlayQueue struct {
			Active struct {
				Track struct {
					Name  string `json:"name"`
					Album struct {
						Name string `json:"name"`
					} `json:"album"`
				} `json:"track"`
			} `json:"active"`
		} `json:"playQueue"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		return
	}

	mode := mapState(status.State)
	title := status.PlayQueue.Active.Track.Name
	album := status.PlayQueue.Active.Track.Album.Name

	b.sink.ZoneStatusUpdate(b.zoneID, backend.ZoneStatusUpdate{
		Mode:  &mode,
		Title: &title,
		Album: &album,
	})
}

func mapState(s string) string {
	switch s {
	case "play":
		return "play"
	case "pause":
		return "pause"
	case "stop":
		return "stop"
	default:
		return "off"
	}
}

func (b *Backend) getJSON(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("https://%s%s", b.host, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}

func (b *Backend) postJSON(ctx context.Context, path string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("https://%s%s", b.host, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("beolink request failed: %s", resp.Status)
	}
	return nil
}

func (b *Backend) SendCommand(ctx context.Context, command backend.Command, param *backend.Param) error {
	path, payload, ok := translateCommand(command, param)
	if !ok {
		return fmt.Errorf("%w: no beolink mapping for %q", bridgeerr.ErrUnknownCommand, command)
	}
	if err := b.postJSON(ctx, path, payload); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrDispatchFailed, err)
	}
	return nil
}

func translateCommand(command backend.Command, param *backend.Param) (path string, payload interface{}, ok bool) {
	switch command {
	case backend.CmdPlay, backend.CmdResume, backend.CmdOn:
		return "/BeoZone/Zone/Stream/Play", nil, true
	case backend.CmdPause:
		return "/BeoZone/Zone/Stream/Pause", nil, true
	case backend.CmdStop, backend.CmdOff:
		return "/BeoZone/Zone/Stream/Stop", nil, true
	case backend.CmdVolume:
		if param == nil {
			return "", nil, false
		}
		return "/BeoZone/Zone/Sound/Volume/Speaker/Level", map[string]string{"level": param.Single}, true
	case backend.CmdQueuePlus:
		return "/BeoZone/Zone/Stream/Forward", nil, true
	case backend.CmdQueueMinus:
		return "/BeoZone/Zone/Stream/Backward", nil, true
	default:
		return "", nil, false
	}
}

func (b *Backend) SendGroupCommand(ctx context.Context, command backend.Command, groupType string, leader int, others ...int) error {
	ids := make([]string, 0, len(others)+1)
	ids = append(ids, fmt.Sprintf("%d", leader))
	for _, o := range others {
		ids = append(ids, fmt.Sprintf("%d", o))
	}
	if err := b.postJSON(ctx, "/BeoZone/Zone/Sound/Experience", map[string]interface{}{"peers": ids}); err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrDispatchFailed, err)
	}
	return nil
}

// Announce is not part of the Beolink control surface used here.
func (b *Backend) Announce(ctx context.Context, url string) error {
	return backend.ErrAnnounceNotSupported
}

func (b *Backend) Cleanup() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	return nil
}

func (b *Backend) SupportsAnnounce() bool { return false }

// GetPlayers probes a single Beolink device host. Beolink has no
// household-wide directory the way Sonos does; discovery happens one host
// at a time (paired with internal/discovery's mDNS browse for _beolink._tcp).
func GetPlayers(ctx context.Context, host string) ([]backend.PlayerInfo, error) {
	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("https://%s/BeoDevice", host), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}
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
		BeoDevice struct {
			ProductID struct {
				ProductName string `json:"productName"`
				SerialNumber string `json:"serialNumber"`
			} `json:"productId"`
		} `json:"beoDevice"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", bridgeerr.ErrBackendUnreachable, err)
	}

	return []backend.PlayerInfo{{
		ID:   parsed.BeoDevice.ProductID.SerialNumber,
		Name: parsed.BeoDevice.ProductID.ProductName,
		Host: host,
	}}, nil
}
