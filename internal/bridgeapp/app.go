// ABOUTME: Wires every bridge component together and runs the full process lifecycle
// ABOUTME: Shared by cmd/audioserver-bridge and cmd/bridge-monitor, which differ only in EnableMonitor
package bridgeapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loxone-bridge/audioserver-bridge/internal/alert"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/beolink"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/ma"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/null"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/sonos"
	"github.com/loxone-bridge/audioserver-bridge/internal/broadcast"
	"github.com/loxone-bridge/audioserver-bridge/internal/config"
	"github.com/loxone-bridge/audioserver-bridge/internal/discovery"
	"github.com/loxone-bridge/audioserver-bridge/internal/dispatch"
	"github.com/loxone-bridge/audioserver-bridge/internal/fade"
	"github.com/loxone-bridge/audioserver-bridge/internal/group"
	"github.com/loxone-bridge/audioserver-bridge/internal/heartbeat"
	"github.com/loxone-bridge/audioserver-bridge/internal/monitor"
	"github.com/loxone-bridge/audioserver-bridge/internal/provider"
	"github.com/loxone-bridge/audioserver-bridge/internal/transport"
	"github.com/loxone-bridge/audioserver-bridge/internal/zone"
)

// Config holds every environment-derived setting the bridge needs to
// start. Fields left zero fall back to the same defaults the standalone
// env vars would produce.
type Config struct {
	AdminDir       string
	FavouritesPath string
	LogFile        string
	LogMaxBytes    int64
	EnableMonitor  bool
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvAsInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

// ConfigFromEnv builds a Config from the environment variables the
// standalone binaries consume: AUDIOSERVER_LOG_FILE,
// AUDIOSERVER_LOG_MAX_BYTES, CONFIG_ADMIN_DIR.
func ConfigFromEnv(enableMonitor bool) Config {
	adminDir := getEnv("CONFIG_ADMIN_DIR", "./data")
	return Config{
		AdminDir:       adminDir,
		FavouritesPath: adminDir + "/favourites.json",
		LogFile:        getEnv("AUDIOSERVER_LOG_FILE", "audioserver-bridge.log"),
		LogMaxBytes:    getEnvAsInt64("AUDIOSERVER_LOG_MAX_BYTES", 10*1024*1024),
		EnableMonitor:  enableMonitor,
	}
}

// openLog opens the log file, truncating it first if it has already grown
// past LogMaxBytes, and returns a logger writing to both the file and
// stdout plus the file handle to close on shutdown.
func openLog(path string, maxBytes int64) (*slog.Logger, io.Closer, error) {
	if maxBytes > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > maxBytes {
			if err := os.Remove(path); err != nil {
				return nil, nil, fmt.Errorf("rotate log file: %w", err)
			}
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, f), nil)
	return slog.New(handler), f, nil
}

// detectLocalMAC returns the hardware address of the first non-loopback
// network interface, or a placeholder if none is found (e.g. in a
// container with only a loopback interface).
func detectLocalMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "000000000000"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return fmt.Sprintf("%012X", []byte(iface.HardwareAddr))
	}
	return "000000000000"
}

func backendFactory(log *slog.Logger) zone.BackendFactory {
	return func(kind backend.Kind, zoneID int, endpoint string, params map[string]string, sink backend.EventSink) (backend.Backend, error) {
		switch kind {
		case backend.KindMusicAssistant:
			return ma.New(log, zoneID, endpoint, params["maPlayerId"], sink), nil
		case backend.KindSonos:
			return sonos.New(log, zoneID, endpoint, params["apiKey"], params["playerID"], sink), nil
		case backend.KindBeolink:
			return beolink.New(log, zoneID, endpoint, sink), nil
		default:
			return null.New(), nil
		}
	}
}

// backendDiscoveryKinds are the backend kinds worth an LAN scan at
// startup; KindNull has no service to browse for.
var backendDiscoveryKinds = []backend.Kind{backend.KindMusicAssistant, backend.KindSonos, backend.KindBeolink}

// discoverBackendPlayers runs a best-effort one-shot LAN scan per backend
// kind at startup, purely informational: admin zone setup still goes
// through the normal backend-endpoint configuration, this just helps an
// operator see what's on the network.
func discoverBackendPlayers(log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, kind := range backendDiscoveryKinds {
		players, err := discovery.DiscoverBackendPlayers(ctx, kind, 3*time.Second)
		if err != nil {
			log.Warn("backend player discovery failed", "kind", kind, "error", err)
			continue
		}
		log.Info("backend player discovery complete", "kind", kind, "count", len(players))
	}
}

// Run wires every component, starts the transport listeners and the
// heartbeat emitter, and blocks until the process is asked to stop
// (SIGINT/SIGTERM, or the operator monitor's own quit key when enabled).
// It returns the process exit code: 0 on graceful shutdown, 1 on a fatal
// configuration error at startup.
func Run(cfg Config) int {
	log, logCloser, err := openLog(cfg.LogFile, cfg.LogMaxBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	mac := detectLocalMAC()

	bus := broadcast.New(log)
	groups := group.NewTracker()
	zones := zone.New(log, bus, groups, backendFactory(log))
	cfg2 := config.New(log, cfg.AdminDir, zones)

	// InitializeConfig loads the on-disk admin config and music cache first;
	// ApplyAdminConfig runs after so env-derived overrides (AUDIOSERVER_IP,
	// MEDIA_PROVIDER*) layer on top instead of being clobbered by the
	// LoadAdminConfig call InitializeConfig makes internally.
	if err := cfg2.InitializeConfig(); err != nil {
		log.Error("fatal: failed to initialize configuration", "error", err)
		return 1
	}
	if err := cfg2.ApplyAdminConfig(); err != nil {
		log.Error("fatal: admin config rejected", "error", err)
		return 1
	}

	prov, err := provider.New(log, cfg.FavouritesPath)
	if err != nil {
		log.Error("fatal: failed to load favourites store", "error", err)
		return 1
	}

	fades := fade.New(log)
	alerts := alert.New(log, zones, fades, dispatch.NewAlertMediaResolver())
	disp := dispatch.New(log, bus, zones, groups, alerts, cfg2, prov, fades, mac)

	hb := heartbeat.New(log, bus, cfg2)
	macIDFunc := cfg2.AudioServerMacID
	trans := transport.New(log, bus, disp, macIDFunc)

	log.Info("starting audioserver bridge", "mac", mac)
	trans.Start()
	go hb.Start(context.Background())
	go discoverBackendPlayers(log)

	var mon *monitor.Monitor
	monDone := make(chan struct{})
	tickerStop := make(chan struct{})
	if cfg.EnableMonitor {
		mon = monitor.New()
		src := monitor.Source{
			Zones:     zones,
			Groups:    groups,
			Alerts:    alerts,
			MacID:     macIDFunc,
			PeerCount: bus.Count,
		}
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mon.Update(src.Snapshot())
				case <-tickerStop:
					return
				}
			}
		}()
		go func() {
			defer close(monDone)
			if err := mon.Start(); err != nil {
				log.Error("monitor exited with error", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-monDone:
		log.Info("operator monitor requested shutdown")
	}

	shutdown(log, hb, trans, zones, mon, tickerStop)
	log.Info("audioserver bridge stopped")
	return 0
}

// shutdown follows the mandated teardown order: stop the heartbeat, close
// every WebSocket peer, clean up zone backend handles, then close the
// HTTP listeners. tickerStop is closed before mon.Stop() purely to stop
// the wasted work of ticking after shutdown has begun; Monitor.Update and
// Monitor.Stop synchronize on their own, so a late tick can never panic on
// a closed channel.
func shutdown(log *slog.Logger, hb *heartbeat.Emitter, trans *transport.Server, zones *zone.Registry, mon *monitor.Monitor, tickerStop chan struct{}) {
	hb.Stop()

	if mon != nil {
		close(tickerStop)
		mon.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := trans.ClosePeers(); err != nil {
		log.Warn("error closing websocket peers", "error", err)
	}

	zones.Cleanup()

	if err := trans.CloseListeners(ctx); err != nil {
		log.Warn("error closing listeners", "error", err)
	}
}
