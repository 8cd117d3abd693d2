// Package monitor runs the periodic cycle that drives everything else:
// poll the dish, launch recovery when the link is down and the cooldown
// allows, update the visibility estimate and handover countdown, and
// publish the result. Exactly one cycle runs at a time; a tick that
// arrives while a cycle (or its credential prompt) is still in flight is
// skipped, never overlapped.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/macauleyjustin/dishwatch/internal/config"
	"github.com/macauleyjustin/dishwatch/internal/dish"
	"github.com/macauleyjustin/dishwatch/internal/observability"
	"github.com/macauleyjustin/dishwatch/internal/recovery"
	"github.com/macauleyjustin/dishwatch/internal/sky"
	"github.com/macauleyjustin/dishwatch/internal/wifi"
	"github.com/macauleyjustin/dishwatch/internal/ws"
)

// Snapshot is one cycle's view of the world, consumed by the HTTP surface.
type Snapshot struct {
	Connected        bool      `json:"connected"`
	RawState         string    `json:"raw_state"`
	Reason           string    `json:"reason,omitempty"`
	LinkType         string    `json:"link_type"`
	ServingSatellite string    `json:"serving_satellite"`
	VisibleCount     int       `json:"visible_count"`
	HandoverSeconds  int       `json:"handover_seconds"`
	ServingElevation float64   `json:"serving_elevation"`
	UpdatedAt        time.Time `json:"updated_at"`

	LastRecovery *recovery.Outcome `json:"last_recovery,omitempty"`
}

// Bars maps the snapshot onto the 0-4 signal-bars scale the presentation
// layer renders. With no SNR from the probe provider, serving geometry
// stands in: a bird high overhead is a healthier link than one scraping
// the threshold.
func (s Snapshot) Bars() int {
	if !s.Connected {
		return 0
	}
	switch {
	case s.ServingSatellite == sky.ServingUnknown:
		return 1
	case s.ServingElevation >= 60:
		return 4
	case s.ServingElevation >= 40:
		return 3
	default:
		return 2
	}
}

// Command represents an external command sent to the monitor via its
// Commands channel. The Reply channel receives exactly one result.
type Command struct {
	Type    string
	Payload json.RawMessage
	Reply   chan<- CommandResult
}

// CommandResult is the response sent back through a Command's Reply channel.
type CommandResult struct {
	OK              bool   `json:"ok"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
	ElementsUpdated int    `json:"elements_updated,omitempty"`
}

// Runner owns the monitor loop and the recovery session lifecycle.
type Runner struct {
	Hub *ws.Hub
	Cfg config.Config
	Log *log.Logger

	// Commands receives external commands from HTTP handlers. The loop
	// services this channel between cycles.
	Commands chan Command

	Provider  dish.StatusProvider
	Connector wifi.Connector
	Engine    *recovery.Engine
	Gate      *recovery.Scheduler
	Elements  *sky.ElementStore
	Clock     *sky.HandoverClock
	Metrics   *observability.Collector

	// LogSink, when set, receives every log line the monitor emits so
	// the app layer can keep a queryable ring of recent entries.
	LogSink func(level, message string)

	paused   atomic.Bool
	snapshot atomic.Value // Snapshot

	// Observer location is resolved once per process: provider first,
	// config station as fallback.
	locOnce sync.Once
	loc     sky.Observer

	// refreshing guards the background element refresh so a slow fetch
	// never delays a cycle and never runs twice concurrently.
	refreshing atomic.Bool

	// session is the current disconnection episode, nil while the link
	// is up. Only the monitor goroutine touches it.
	session *recovery.Session
}

// New wires a runner from its collaborators.
func New(hub *ws.Hub, cfg config.Config, logger *log.Logger,
	provider dish.StatusProvider, connector wifi.Connector,
	engine *recovery.Engine, elements *sky.ElementStore,
	metrics *observability.Collector) *Runner {

	r := &Runner{
		Hub:       hub,
		Cfg:       cfg,
		Log:       logger,
		Commands:  make(chan Command, 4),
		Provider:  provider,
		Connector: connector,
		Engine:    engine,
		Gate:      recovery.NewScheduler(time.Duration(cfg.Recovery.CooldownSeconds) * time.Second),
		Elements:  elements,
		Clock:     sky.NewHandoverClock(cfg.Handover.Boundaries),
		Metrics:   metrics,
	}
	r.snapshot.Store(Snapshot{ServingSatellite: sky.ServingUnknown, RawState: "UNKNOWN"})
	return r
}

// Snapshot returns the most recent cycle's result.
func (r *Runner) Snapshot() Snapshot {
	return r.snapshot.Load().(Snapshot)
}

// IsPaused reports whether the monitor is paused.
func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

// Run is the monitor loop. Each iteration executes one cycle, then sleeps
// for the configured interval or until a command arrives.
func (r *Runner) Run(ctx context.Context, setState func(string)) {
	r.broadcastLog("info", "monitor started")

	interval := time.Duration(r.Cfg.Monitor.IntervalSeconds) * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		if r.paused.Load() {
			setState("PAUSED")
			// A resume command interrupts the long sleep.
			if r.sleepOrCommand(ctx, 24*365*time.Hour, setState) == sleepCancelled {
				return
			}
			continue
		}

		r.cycle(ctx, setState)

		if r.sleepOrCommand(ctx, interval, setState) == sleepCancelled {
			return
		}
	}
}

// cycle performs one status/recovery/visibility pass.
func (r *Runner) cycle(ctx context.Context, setState func(string)) {
	now := time.Now().UTC()
	setState("POLLING")

	r.maybeRefreshElements(now)

	snap := Snapshot{UpdatedAt: now, ServingSatellite: sky.ServingUnknown}

	state, err := r.Provider.LinkState(ctx)
	if err != nil {
		// Provider trouble is indistinguishable from a dead link for
		// our purposes; never fatal.
		snap.Connected = false
		snap.RawState = "UNREACHABLE"
		snap.Reason = "provider unreachable: " + err.Error()
	} else {
		snap.Connected = state.Connected
		snap.RawState = state.RawState
	}

	linkType, _, linkErr := r.Connector.ActiveLink(ctx)
	if linkErr != nil {
		r.Log.Printf("monitor: active link query failed: %v", linkErr)
		linkType = wifi.LinkNone
	}
	snap.LinkType = string(linkType)

	if snap.Connected {
		// A healthy link ends the disconnection episode; the next one
		// starts with a clean tried-set.
		r.session = nil
	} else if r.Gate.ShouldAttempt(linkType, now) {
		r.Gate.MarkAttempt(now)
		setState("RECOVERING")
		if r.session == nil {
			r.session = recovery.NewSession(false)
		}
		outcome := r.Engine.Run(ctx, r.session)
		snap.LastRecovery = &outcome
		r.Metrics.RecoveryAttempts.WithLabelValues(string(outcome.State)).Inc()
		if outcome.State == recovery.StateSucceeded {
			r.broadcastLog("info", "recovery succeeded via "+outcome.SSID+" ("+outcome.BSSID+")")
		} else {
			r.broadcastLog("warn", "recovery ended: "+outcome.Reason)
		}
	}

	// Visibility and the handover clock run on every cycle, up or down,
	// against whatever element set the cache holds.
	obs := r.observerLocation(ctx)
	elements := r.Elements.Elements()
	if len(elements) > 0 {
		elevations := sky.Elevations(elements, obs, now)
		est := sky.EstimateFrom(elevations, r.Cfg.Station.MinElevation)
		snap.ServingSatellite = est.Serving
		snap.VisibleCount = est.VisibleCount
		for _, e := range elevations {
			if e.Name == est.Serving {
				snap.ServingElevation = e.Elevation
				break
			}
		}
	}
	snap.HandoverSeconds = r.Clock.TimeRemaining(now)

	r.snapshot.Store(snap)
	r.publish(snap)
	setState("IDLE")
}

// maybeRefreshElements kicks a background refresh when the cache is stale.
// The cycle never waits on it: a stale cache is valid, per the estimator's
// contract, and the handover clock must keep ticking through a slow fetch.
func (r *Runner) maybeRefreshElements(now time.Time) {
	if !r.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer r.refreshing.Store(false)
		if err := r.Elements.RefreshIfStale(now); err != nil {
			r.Metrics.TLERefreshes.WithLabelValues("error").Inc()
			r.broadcastLog("warn", "element refresh failed, keeping stale cache: "+err.Error())
			return
		}
		r.Metrics.TLERefreshes.WithLabelValues("ok").Inc()
	}()
}

// observerLocation resolves the ground position once and caches it for the
// process lifetime: the provider's fix when it has one, the configured
// station otherwise.
func (r *Runner) observerLocation(ctx context.Context) sky.Observer {
	r.locOnce.Do(func() {
		if loc, err := r.Provider.Location(ctx); err == nil {
			r.loc = loc
			r.Log.Printf("monitor: location from provider: %.4f, %.4f, %.0fm", loc.Lat, loc.Lon, loc.Alt)
			return
		}
		r.loc = sky.Observer{
			Lat: r.Cfg.Station.Latitude,
			Lon: r.Cfg.Station.Longitude,
			Alt: r.Cfg.Station.Altitude,
		}
	})
	return r.loc
}

// publish pushes the cycle result to metrics and the event stream.
func (r *Runner) publish(snap Snapshot) {
	r.Metrics.MonitorCycles.Inc()
	if snap.Connected {
		r.Metrics.LinkUp.Set(1)
	} else {
		r.Metrics.LinkUp.Set(0)
	}
	r.Metrics.VisibleSatellites.Set(float64(snap.VisibleCount))
	r.Metrics.HandoverSeconds.Set(float64(snap.HandoverSeconds))

	r.broadcast(map[string]any{
		"type":              "status",
		"connected":         snap.Connected,
		"raw_state":         snap.RawState,
		"reason":            snap.Reason,
		"link_type":         snap.LinkType,
		"serving_satellite": snap.ServingSatellite,
		"visible_count":     snap.VisibleCount,
		"handover_seconds":  snap.HandoverSeconds,
		"bars":              snap.Bars(),
	})
}
