// ABOUTME: mDNS discovery of backend media players on the LAN
// ABOUTME: Browses per-backend-kind service names, then asks each host for its player list
package discovery

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/beolink"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/ma"
	"github.com/loxone-bridge/audioserver-bridge/internal/backend/sonos"
)

// serviceNames maps a backend kind to the mDNS service type hosts of that
// kind advertise themselves under.
var serviceNames = map[backend.Kind]string{
	backend.KindMusicAssistant: "_musicassistant._tcp",
	backend.KindSonos:          "_sonos._tcp",
	backend.KindBeolink:        "_beolink._tcp",
}

// DiscoverBackendPlayers browses the LAN for hosts advertising kind's
// service, then asks every discovered host for its player list through
// that backend package's own GetPlayers helper. Unreachable hosts are
// skipped rather than failing the whole scan; the Null kind has no
// service to browse for and always returns an empty set.
func DiscoverBackendPlayers(ctx context.Context, kind backend.Kind, timeout time.Duration) ([]backend.PlayerInfo, error) {
	service, ok := serviceNames[kind]
	if !ok {
		return nil, nil
	}

	var out []backend.PlayerInfo
	for _, host := range browseHosts(service, timeout) {
		players, err := getPlayers(ctx, kind, host)
		if err != nil {
			continue
		}
		out = append(out, players...)
	}
	return out, nil
}

func getPlayers(ctx context.Context, kind backend.Kind, host string) ([]backend.PlayerInfo, error) {
	switch kind {
	case backend.KindMusicAssistant:
		return ma.GetPlayers(ctx, host)
	case backend.KindSonos:
		return sonos.GetPlayers(ctx, host)
	case backend.KindBeolink:
		return beolink.GetPlayers(ctx, host)
	default:
		return nil, nil
	}
}

// browseHosts runs one mDNS query for service and collects the distinct
// IPv4 hosts that answered within timeout.
func browseHosts(service string, timeout time.Duration) []string {
	entries := make(chan *mdns.ServiceEntry, 16)
	seen := make(map[string]bool)
	var hosts []string

	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			if entry.AddrV4 == nil {
				continue
			}
			host := net.JoinHostPort(entry.AddrV4.String(), strconv.Itoa(entry.Port))
			if seen[host] {
				continue
			}
			seen[host] = true
			hosts = append(hosts, host)
		}
	}()

	mdns.Query(&mdns.QueryParam{
		Service: service,
		Domain:  "local",
		Timeout: timeout,
		Entries: entries,
	})
	close(entries)
	<-done

	return hosts
}
