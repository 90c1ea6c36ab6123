// ABOUTME: Null backend placeholder for zones with no configured media system
// ABOUTME: Never reports connected; every command is a silent no-op
package null

import (
	"context"

	"github.com/loxone-bridge/audioserver-bridge/internal/backend"
)

// Backend is the Null media backend: it satisfies the capability port
// without ever contacting a real device. A zone configured with
// backend.KindNull ignores backendEndpoint/backendParams and is never
// marked connected.
type Backend struct{}

// New constructs a Null backend instance.
func New() *Backend { return &Backend{} }

func (b *Backend) Initialize(ctx context.Context) error { return nil }

func (b *Backend) SendCommand(ctx context.Context, command backend.Command, param *backend.Param) error {
	return nil
}

func (b *Backend) SendGroupCommand(ctx context.Context, command backend.Command, groupType string, leader int, others ...int) error {
	return nil
}

func (b *Backend) Announce(ctx context.Context, url string) error {
	return backend.ErrAnnounceNotSupported
}

func (b *Backend) Cleanup() error { return nil }

func (b *Backend) SupportsAnnounce() bool { return false }

// GetPlayers enumerates available players for discovery. The Null kind has
// no real players; it always returns an empty set.
func GetPlayers(ctx context.Context, host string) ([]backend.PlayerInfo, error) {
	return nil, nil
}
