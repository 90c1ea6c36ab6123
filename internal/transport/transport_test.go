package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loxone-bridge/audioserver-bridge/internal/alert"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/broadcast"
	"github.com/loxone-bridge/audioserver-bridge/internal/config"
	"github.com/loxone-bridge/audioserver-bridge/internal/dispatch"
	"github.com/loxone-bridge/audioserver-bridge/internal/fade"
	"github.com/loxone-bridge/audioserver-bridge/internal/group"
	"github.com/loxone-bridge/audioserver-bridge/internal/provider"
	"github.com/loxone-bridge/audioserver-bridge/internal/zone"
)

func newTestDispatcher(t *testing.T) (*dispatch.Dispatcher, *broadcast.Bus) {
	t.Helper()
	bus := broadcast.New(nil)
	groups := group.NewTracker()
	factory := func(kind backend.Kind, zoneID int, endpoint string, params map[string]string, sink backend.EventSink) (backend.Backend, error) {
		return nullBackend{}, nil
	}
	zones := zone.New(nil, bus, groups, factory)
	cfg := config.New(nil, t.TempDir(), zones)
	prov, err := provider.New(nil, t.TempDir()+"/favourites.json")
	if err != nil {
		t.Fatalf("provider.New: %v", err)
	}
	fades := fade.New(nil)
	alerts := alert.New(nil, zones, fades, dispatch.NewAlertMediaResolver())
	return dispatch.New(nil, bus, zones, groups, alerts, cfg, prov, fades, "504F94FF1BB3"), bus
}

type nullBackend struct{}

func (nullBackend) Initialize(ctx context.Context) error { return nil }
func (nullBackend) SendCommand(ctx context.Context, command backend.Command, param *backend.Param) error {
	return nil
}
func (nullBackend) SendGroupCommand(ctx context.Context, command backend.Command, groupType string, leader int, others ...int) error {
	return nil
}
func (nullBackend) Announce(ctx context.Context, url string) error { return nil }
func (nullBackend) Cleanup() error                                 { return nil }
func (nullBackend) SupportsAnnounce() bool                         { return false }

func TestHandleHTTPForwardsStrippedPathToDispatcher(t *testing.T) {
	disp, bus := newTestDispatcher(t)
	s := New(nil, bus, disp, func() string { return "504F94FF1BB3" })

	ts := httptest.NewServer(s.handle(func(string) string { return appHttpBanner }))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/foo/bar/baz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	direct := disp.Dispatch(context.Background(), "foo/bar/baz")

	buf := make([]byte, len(direct)+1)
	n, _ := resp.Body.Read(buf)
	if string(buf[:n]) != string(direct) {
		t.Fatalf("response mismatch: got %q, want %q", buf[:n], direct)
	}
}

func TestHandleWebSocketSendsBannerThenForwardsCommands(t *testing.T) {
	disp, bus := newTestDispatcher(t)
	s := New(nil, bus, disp, func() string { return "504F94FF1BB3" })

	ts := httptest.NewServer(s.handle(msHttpBanner))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, banner, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read banner: %v", err)
	}
	if !strings.HasPrefix(string(banner), "MINISERVER V LWSS V 16.1.10.01 504F94FF1BB3") {
		t.Fatalf("unexpected banner: %s", banner)
	}

	if bus.Count() != 1 {
		t.Fatalf("expected peer registered with bus, count=%d", bus.Count())
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("foo/bar/baz")); err != nil {
		t.Fatalf("write command: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, resp, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if !strings.Contains(string(resp), `"baz_result"`) {
		t.Fatalf("unexpected response: %s", resp)
	}
}

func TestAppHttpBannerIsFixedConstant(t *testing.T) {
	if !strings.HasPrefix(appHttpBanner, "LWSS V 16.1.10.01") {
		t.Fatalf("unexpected banner: %s", appHttpBanner)
	}
}

func TestClosePeersSendsCloseFrame(t *testing.T) {
	disp, bus := newTestDispatcher(t)
	s := New(nil, bus, disp, func() string { return "504F94FF1BB3" })

	ts := httptest.NewServer(s.handle(func(string) string { return appHttpBanner }))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read banner: %v", err)
	}

	if err := s.ClosePeers(); err != nil {
		t.Fatalf("ClosePeers: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("expected a websocket close error, got %v", err)
	}
	if closeErr.Code != websocket.CloseNormalClosure {
		t.Fatalf("expected normal closure, got code %d", closeErr.Code)
	}
}
