// Package dish is the status-provider boundary: it answers "is the
// satellite link up" and "where is the terminal" without interpreting any
// of the dish's telemetry protocol, which stays out of scope. The
// production provider infers link state from reachability of the dish's
// telemetry endpoint; a simulated provider stands in when there is no
// hardware.
package dish

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/macauleyjustin/dishwatch/internal/sky"
)

// ErrNoLocation is returned when the provider cannot supply an observer
// location and the caller should fall back to configuration.
var ErrNoLocation = errors.New("dish: location not available from provider")

// LinkState is the provider's view of the satellite link.
type LinkState struct {
	Connected bool   `json:"connected"`
	RawState  string `json:"raw_state"`
}

// StatusProvider is the collaborator contract the monitor polls. Any error
// from LinkState is treated by the caller as "disconnected, provider
// unreachable"; it is never fatal.
type StatusProvider interface {
	LinkState(ctx context.Context) (LinkState, error)
	Location(ctx context.Context) (sky.Observer, error)
}

// ProbeProvider reports the link as up when the dish telemetry endpoint
// accepts a TCP connection. Location is not derivable from a reachability
// probe, so Location always defers to configuration.
type ProbeProvider struct {
	Address string
	Timeout time.Duration

	// dial is a test seam; production uses net.DialTimeout.
	dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// NewProbeProvider returns a provider probing address with the given
// per-probe timeout.
func NewProbeProvider(address string, timeout time.Duration) *ProbeProvider {
	return &ProbeProvider{
		Address: address,
		Timeout: timeout,
		dial:    net.DialTimeout,
	}
}

// LinkState implements StatusProvider.
func (p *ProbeProvider) LinkState(ctx context.Context) (LinkState, error) {
	timeout := p.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	conn, err := p.dial("tcp", p.Address, timeout)
	if err != nil {
		return LinkState{}, err
	}
	_ = conn.Close()
	return LinkState{Connected: true, RawState: "CONNECTED"}, nil
}

// Location implements StatusProvider; the probe has nothing to offer.
func (p *ProbeProvider) Location(ctx context.Context) (sky.Observer, error) {
	return sky.Observer{}, ErrNoLocation
}
