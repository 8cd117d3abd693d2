// Package app wires together the HTTP server, WebSocket hub, connection
// ledger, and the monitor loop. It owns the daemon's lifecycle and is the
// single source of truth for the current operating state.
package app

import (
	"context"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/macauleyjustin/dishwatch/internal/config"
	"github.com/macauleyjustin/dishwatch/internal/dish"
	"github.com/macauleyjustin/dishwatch/internal/ledger"
	"github.com/macauleyjustin/dishwatch/internal/monitor"
	"github.com/macauleyjustin/dishwatch/internal/observability"
	"github.com/macauleyjustin/dishwatch/internal/recovery"
	"github.com/macauleyjustin/dishwatch/internal/sky"
	"github.com/macauleyjustin/dishwatch/internal/telemetry"
	"github.com/macauleyjustin/dishwatch/internal/wifi"
	"github.com/macauleyjustin/dishwatch/internal/ws"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger     *log.Logger
	Cfg        config.Config
	ConfigPath string
	Bind       string
}

// logEntry is one line in the in-memory log ring served at /api/logs.
type logEntry struct {
	TS      string `json:"ts"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

const logRingSize = 256

// App is the top-level daemon process.
type App struct {
	log        *log.Logger
	cfg        config.Config
	configPath string
	bind       string
	server     *http.Server

	startedAt time.Time
	state     atomic.Value // current state string (BOOTING, IDLE, ...)

	wsHub    *ws.Hub
	ledger   *ledger.Store
	elements *sky.ElementStore
	metrics  *observability.Collector
	monitor  *monitor.Runner

	logBufMu sync.Mutex
	logBuf   []logEntry
}

// New creates an App in the BOOTING state. Call Run to start serving.
func New(opts Options) *App {
	a := &App{
		log:        opts.Logger,
		cfg:        opts.Cfg,
		configPath: opts.ConfigPath,
		bind:       opts.Bind,
		startedAt:  time.Now(),
		wsHub:      ws.NewHub(),
	}
	a.state.Store("BOOTING")
	return a
}

// Run opens the ledger, assembles the monitor pipeline, and starts the
// HTTP server, WebSocket hub, heartbeat, and monitor loop. It blocks until
// the context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" {
		bind = a.cfg.Server.Bind
	}

	store, err := ledger.Open(filepath.Join(a.cfg.Data.Root, a.cfg.Data.LedgerFile))
	if err != nil {
		return err
	}
	a.ledger = store
	defer store.Close()

	a.metrics, err = observability.NewCollector(nil)
	if err != nil {
		return err
	}

	a.elements = sky.NewElementStore(
		a.cfg.TLE.URL,
		a.cfg.Data.Root,
		time.Duration(a.cfg.TLE.RefreshSeconds)*time.Second,
	)

	provider, scanner, connector := a.collaborators()

	engine := &recovery.Engine{
		Scanner:   scanner,
		Connector: connector,
		Ledger:    store,
		Log:       a.log,
		Emit: func(v map[string]any) {
			v["ts"] = telemetry.NowTS()
			v["component"] = "recovery"
			a.wsHub.BroadcastJSON(v)
		},
	}

	a.monitor = monitor.New(a.wsHub, a.cfg, a.log, provider, connector, engine, a.elements, a.metrics)
	a.monitor.LogSink = a.appendLog

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/version", a.handleVersion)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/ledger", a.handleLedger)
	mux.HandleFunc("/api/satellites", a.handleSatellites)
	mux.HandleFunc("/api/tle-info", a.handleTLEInfo)
	mux.HandleFunc("/api/logs", a.handleLogs)
	mux.HandleFunc("/api/connect", a.handleConnect)
	mux.HandleFunc("/api/disconnect", a.handleDisconnect)
	mux.HandleFunc("/api/tle-refresh", a.handleTLERefresh)
	mux.HandleFunc("/api/pause", a.handlePause)
	mux.HandleFunc("/api/resume", a.handleResume)
	mux.Handle("/metrics", a.metrics.Handler())
	mux.Handle("/ws", a.wsHub.Handler())

	a.server = &http.Server{
		Addr:              bind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	a.log.Printf("listening on http://%s", bind)

	go a.wsHub.Run(ctx)
	a.transition("IDLE")
	go a.heartbeatLoop(ctx)
	go a.monitor.Run(ctx, a.transition)

	go func() {
		<-ctx.Done()
		a.log.Printf("shutdown requested")
		_ = a.server.Shutdown(context.Background())
	}()

	return a.server.Serve(ln)
}

// collaborators picks the production or simulated implementations of the
// external boundaries depending on demo mode.
func (a *App) collaborators() (dish.StatusProvider, wifi.Scanner, wifi.Connector) {
	if !a.cfg.Demo.Enabled {
		nm := wifi.NewNMCLI(a.cfg.WiFi.AllowedSSIDs)
		probe := dish.NewProbeProvider(
			a.cfg.Dish.Address,
			time.Duration(a.cfg.Dish.ProbeTimeoutMS)*time.Millisecond,
		)
		return probe, nm, nm
	}

	a.log.Printf("demo mode: simulated dish and wireless stack")

	// Seed the ledger with the simulated access point so demo outages
	// recover through the known-candidate path.
	if err := a.ledger.Upsert("DE:MO:00:00:00:01", "STARLINK", "demo-secret"); err != nil {
		a.log.Printf("demo seed failed: %v", err)
	}

	provider := &dish.SimulatedProvider{
		DropAfterPolls: a.cfg.Demo.DropAfterCycles,
		Lat:            a.cfg.Station.Latitude,
		Lon:            a.cfg.Station.Longitude,
		Alt:            a.cfg.Station.Altitude,
	}
	scanner := &wifi.SimScanner{Results: []wifi.ScanResult{
		{BSSID: "DE:MO:00:00:00:01", SSID: "STARLINK", Signal: 72},
	}}
	return provider, scanner, &wifi.SimConnector{}
}

// transition atomically updates the daemon state and broadcasts the change.
func (a *App) transition(newState string) {
	old := a.state.Load().(string)
	if old == newState {
		return
	}
	a.state.Store(newState)

	a.wsHub.BroadcastJSON(telemetry.StateTransition{
		Event: telemetry.Event{
			Type:      telemetry.EventState,
			TS:        telemetry.NowTS(),
			Component: "dishwatchd",
		},
		From: old,
		To:   newState,
	})
}

// heartbeatLoop sends a periodic heartbeat event so clients can detect
// connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(telemetry.Heartbeat{
				Event: telemetry.Event{
					Type: telemetry.EventHeartbeat,
					TS:   telemetry.NowTS(),
				},
				State:         a.state.Load().(string),
				UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
			})
		}
	}
}

// appendLog records a line in the bounded in-memory ring.
func (a *App) appendLog(level, message string) {
	a.logBufMu.Lock()
	defer a.logBufMu.Unlock()
	a.logBuf = append(a.logBuf, logEntry{
		TS:      time.Now().UTC().Format(time.RFC3339),
		Level:   level,
		Message: message,
	})
	if len(a.logBuf) > logRingSize {
		a.logBuf = a.logBuf[len(a.logBuf)-logRingSize:]
	}
}
