package dish

import (
	"context"
	"sync"

	"github.com/macauleyjustin/dishwatch/internal/sky"
)

// SimulatedProvider is the demo-mode dish: it reports a healthy link that
// drops out every DropAfterPolls status polls and comes back on the next
// one, so the recovery pipeline gets exercised without hardware.
type SimulatedProvider struct {
	DropAfterPolls int
	Lat, Lon, Alt  float64

	mu    sync.Mutex
	polls int
}

// LinkState implements StatusProvider.
func (p *SimulatedProvider) LinkState(ctx context.Context) (LinkState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.polls++
	if p.DropAfterPolls > 0 && p.polls%p.DropAfterPolls == 0 {
		return LinkState{Connected: false, RawState: "SIMULATED_OUTAGE"}, nil
	}
	return LinkState{Connected: true, RawState: "CONNECTED"}, nil
}

// Location implements StatusProvider with the configured demo position.
func (p *SimulatedProvider) Location(ctx context.Context) (sky.Observer, error) {
	return sky.Observer{Lat: p.Lat, Lon: p.Lon, Alt: p.Alt}, nil
}
