// ABOUTME: Heartbeat emitter: periodic hw_event broadcast for the AudioServer core and its extensions
// ABOUTME: Uptime is tracked locally and resets every 24h, independent of process uptime
package heartbeat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/loxone-bridge/audioserver-bridge/internal/broadcast"
	"github.com/loxone-bridge/audioserver-bridge/internal/config"
	"github.com/loxone-bridge/audioserver-bridge/pkg/protocol"
)

const (
	interval   = 60 * time.Second
	uptimeWrap = 24 * time.Hour
)

// core hw_event ids for the paired AudioServer's own channel #1. 2105 is
// overwritten with the current uptime seconds at emit time; every other
// value is a fixed constant the real firmware also reports at rest.
var coreEventIDs = []struct {
	id    int
	value int64
}{
	{2005, 1},
	{2100, 1},
	{2101, 0},
	{2102, 0},
	{2103, 0},
	{2105, 0}, // overwritten with uptime
	{2106, 0},
}

// extensionEventIDs are the per-channel entries reported for every
// non-core extension, on each of its two channels. 2104 is fixed at 1;
// 2105 is overwritten with uptime, same as the core set.
var extensionEventIDs = []struct {
	id    int
	value int64
}{
	{2100, 0},
	{2101, 0},
	{2102, 0},
	{2103, 0},
	{2104, 1},
	{2105, 0}, // overwritten with uptime
}

// Emitter periodically builds and broadcasts one hw_event frame describing
// the AudioServer core and every declared extension.
type Emitter struct {
	log   *slog.Logger
	bus   *broadcast.Bus
	cfg   *config.Orchestrator
	start time.Time

	stop chan struct{}
	done chan struct{}
}

// New constructs a heartbeat emitter. Nothing runs until Start is called.
func New(log *slog.Logger, bus *broadcast.Bus, cfg *config.Orchestrator) *Emitter {
	return &Emitter{
		log:   log,
		bus:   bus,
		cfg:   cfg,
		start: time.Now(),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start emits one hw_event immediately, then every interval until Stop is
// called. Runs in the caller's goroutine; callers typically `go e.Start(ctx)`.
func (e *Emitter) Start(ctx context.Context) {
	defer close(e.done)

	e.emit()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-ticker.C:
			e.emit()
		}
	}
}

// Stop signals the emitter to return and waits for it to do so.
func (e *Emitter) Stop() {
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
	<-e.done
}

func (e *Emitter) uptimeSeconds() int64 {
	elapsed := time.Since(e.start) % uptimeWrap
	return int64(elapsed / time.Second)
}

func (e *Emitter) emit() {
	macID := e.cfg.AudioServerMacID()
	if macID == "" {
		return
	}
	uptime := e.uptimeSeconds()

	entries := make([]protocol.HwEventEntry, 0, len(coreEventIDs))
	for _, ev := range coreEventIDs {
		v := ev.value
		if ev.id == 2105 {
			v = uptime
		}
		entries = append(entries, protocol.HwEventEntry{
			ClientID: fmtClientID(macID, 1),
			EventID:  ev.id,
			Value:    v,
		})
	}

	for _, ext := range e.cfg.GetExtensions() {
		if ext.MacID == macID {
			continue // the paired AudioServer itself is the core channel, already emitted
		}
		for ch := 1; ch <= 2; ch++ {
			clientID := fmtClientID(ext.MacID, ch)
			for _, ev := range extensionEventIDs {
				v := ev.value
				if ev.id == 2105 {
					v = uptime
				}
				entries = append(entries, protocol.HwEventEntry{
					ClientID: clientID,
					EventID:  ev.id,
					Value:    v,
				})
			}
		}
	}

	frame := protocol.HwEventFrame{HwEvent: entries}
	data, err := json.Marshal(frame)
	if err != nil {
		if e.log != nil {
			e.log.Warn("failed to marshal hw_event frame", "error", err)
		}
		return
	}
	e.bus.Broadcast(data)
}

func fmtClientID(macID string, channel int) string {
	return fmt.Sprintf("%s#%d", macID, channel)
}
