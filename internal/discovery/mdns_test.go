// ABOUTME: Tests for backend player mDNS discovery
package discovery

import (
	"testing"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
)

func TestDiscoverBackendPlayersReturnsEmptyForNullKind(t *testing.T) {
	players, err := DiscoverBackendPlayers(t.Context(), backend.KindNull, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 0 {
		t.Fatalf("expected no players for the null kind, got %d", len(players))
	}
}

func TestBrowseHostsDedupesByAddress(t *testing.T) {
	hosts := browseHosts("_musicassistant._tcp", 0)
	if hosts == nil {
		return // no responders on the LAN in this test environment; that is expected
	}
	seen := make(map[string]bool)
	for _, h := range hosts {
		if seen[h] {
			t.Fatalf("duplicate host in result: %s", h)
		}
		seen[h] = true
	}
}
