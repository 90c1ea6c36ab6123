// ABOUTME: Transport front-ends: the AppHttp and MsHttp listeners every command URL arrives on
// ABOUTME: HTTP requests and WebSocket frames are both forwarded verbatim to the command dispatcher
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/loxone-bridge/audioserver-bridge/internal/broadcast"
	"github.com/loxone-bridge/audioserver-bridge/internal/dispatch"
)

const (
	// AppHttpPort serves app/companion clients.
	AppHttpPort = 7091
	// MsHttpPort serves the MiniServer's own local-bus connection.
	MsHttpPort = 7095

	sessionToken  = "8WahwAfULwEQce9Yu0qIE9L7QMkXFHbi0M9ch9vKcgYArPPojXHpSiNcq0fT3lqL"
	appHttpBanner = "LWSS V 16.1.10.01 | ~API:1.6~ | Session-Token: " + sessionToken
)

func msHttpBanner(macID string) string {
	return fmt.Sprintf("MINISERVER V LWSS V 16.1.10.01 %s | ~API:1.6~ | Session-Token: %s", macID, sessionToken)
}

// Server owns the two listeners every command URL arrives on. Both expose
// the identical command dispatcher; only the port and the identification
// banner sent on WebSocket accept differ.
type Server struct {
	log   *slog.Logger
	bus   *broadcast.Bus
	disp  *dispatch.Dispatcher
	macID func() string

	upgrader websocket.Upgrader

	appHTTP *http.Server
	msHTTP  *http.Server

	mu    sync.Mutex
	peers map[string]*wsPeer
}

// New constructs a transport server. macID is called lazily on each
// WebSocket accept so the MsHttp banner reflects pairing state as of
// connect time, not process start time.
func New(log *slog.Logger, bus *broadcast.Bus, disp *dispatch.Dispatcher, macID func() string) *Server {
	return &Server{
		log:   log,
		bus:   bus,
		disp:  disp,
		macID: macID,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		peers: make(map[string]*wsPeer),
	}
}

// Start launches both listeners in background goroutines and returns
// immediately. Listener failures are logged; they do not stop the other
// listener or the calling goroutine.
func (s *Server) Start() {
	s.appHTTP = s.newHTTPServer(AppHttpPort, func(string) string { return appHttpBanner })
	s.msHTTP = s.newHTTPServer(MsHttpPort, msHttpBanner)

	go s.serve(s.appHTTP, "AppHttp")
	go s.serve(s.msHTTP, "MsHttp")
}

func (s *Server) serve(srv *http.Server, name string) {
	if s.log != nil {
		s.log.Info("transport listener starting", "name", name, "addr", srv.Addr)
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		if s.log != nil {
			s.log.Error("transport listener failed", "name", name, "addr", srv.Addr, "error", err)
		}
	}
}

func (s *Server) newHTTPServer(port int, banner func(macID string) string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle(banner))
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
}

// handle serves both plain HTTP command requests and WebSocket upgrades on
// the same route: the request target, leading slash stripped, is the
// command URL in both cases.
func (s *Server) handle(banner func(macID string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.handleWebSocket(w, r, banner)
			return
		}
		s.handleHTTP(w, r)
	}
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	cmd := strings.TrimPrefix(r.URL.Path, "/")
	if r.URL.RawQuery != "" {
		cmd += "?" + r.URL.RawQuery
	}
	body := s.disp.Dispatch(r.Context(), cmd)
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, banner func(macID string) string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.log != nil {
			s.log.Warn("websocket upgrade failed", "error", err)
		}
		return
	}

	peer := &wsPeer{id: uuid.New().String(), conn: conn, send: make(chan []byte, 64)}
	s.bus.Register(peer)
	s.mu.Lock()
	s.peers[peer.id] = peer
	s.mu.Unlock()

	defer func() {
		s.bus.Unregister(peer)
		s.mu.Lock()
		delete(s.peers, peer.id)
		s.mu.Unlock()
		conn.Close()
	}()

	go peer.writeLoop()

	if err := peer.Send([]byte(banner(s.macID()))); err != nil {
		return
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		cmd := strings.TrimPrefix(string(data), "/")
		resp := s.disp.Dispatch(r.Context(), cmd)
		if err := peer.Send(resp); err != nil {
			return
		}
	}
}

// ClosePeers closes every registered WebSocket peer with code 1000 and
// reason "Server shutting down". Call this before CloseListeners and
// after stopping the heartbeat emitter, per the mandated shutdown order;
// zone backend cleanup belongs between the two calls, in the caller's own
// shutdown sequence.
func (s *Server) ClosePeers() error {
	s.mu.Lock()
	peers := make([]*wsPeer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		p.closeGracefully()
	}
	return nil
}

// CloseListeners shuts down both HTTP listeners. Call this last in the
// shutdown sequence, after ClosePeers and zone backend cleanup.
func (s *Server) CloseListeners(ctx context.Context) error {
	var firstErr error
	if s.appHTTP != nil {
		if err := s.appHTTP.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.msHTTP != nil {
		if err := s.msHTTP.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// wsPeer implements broadcast.Peer over one WebSocket connection, buffering
// outbound frames so a slow reader never blocks the broadcaster.
type wsPeer struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu        sync.Mutex
	closeOnce sync.Once
	closed    bool
}

func (p *wsPeer) ID() string { return p.id }

// Send enqueues message for the write loop. It holds the same lock
// closeGracefully closes p.send under, so a racing shutdown can never
// close the channel between Send's closed check and its send.
func (p *wsPeer) Send(message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("peer %s: closed", p.id)
	}
	select {
	case p.send <- message:
		return nil
	default:
		return fmt.Errorf("peer %s: send buffer full", p.id)
	}
}

func (p *wsPeer) writeLoop() {
	for msg := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (p *wsPeer) closeGracefully() {
	p.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutting down"),
			deadline)
		p.mu.Lock()
		p.closed = true
		close(p.send)
		p.mu.Unlock()
	})
}
