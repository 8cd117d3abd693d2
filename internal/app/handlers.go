package app

import (
	"encoding/json"
	"net/http"
	"os/exec"
	"strconv"
	"time"

	"github.com/macauleyjustin/dishwatch/internal/monitor"
	"github.com/macauleyjustin/dishwatch/internal/sky"
)

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	// If the client asks for JSON, return component-level health checks.
	if r.Header.Get("Accept") == "application/json" {
		a.handleHealthDetailed(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleHealthDetailed(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]any{}
	allOK := true

	// Ledger reachable.
	if _, err := a.ledger.ListAll(); err != nil {
		checks["ledger"] = map[string]any{"ok": false, "error": err.Error()}
		allOK = false
	} else {
		checks["ledger"] = map[string]any{"ok": true}
	}

	// Element cache freshness.
	now := time.Now().UTC()
	last := a.elements.LastRefresh()
	if last.IsZero() {
		checks["tle_cache"] = map[string]any{"ok": false, "error": "never fetched"}
		allOK = false
	} else {
		age := now.Sub(last)
		fresh := age < time.Duration(a.cfg.TLE.RefreshSeconds)*time.Second
		if !fresh {
			allOK = false
		}
		checks["tle_cache"] = map[string]any{"ok": fresh, "age_s": int(age.Seconds())}
	}

	// nmcli present (only meaningful outside demo mode).
	if !a.cfg.Demo.Enabled {
		if _, err := exec.LookPath("nmcli"); err != nil {
			checks["nmcli"] = map[string]any{"ok": false, "error": "nmcli not found in PATH"}
			allOK = false
		} else {
			checks["nmcli"] = map[string]any{"ok": true}
		}
	}

	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"healthy": allOK, "checks": checks})
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := a.monitor.Snapshot()

	resp := map[string]any{
		"name":              "dishwatch",
		"state":             a.state.Load().(string),
		"uptime_seconds":    int64(time.Since(a.startedAt).Seconds()),
		"connected":         snap.Connected,
		"raw_state":         snap.RawState,
		"reason":            snap.Reason,
		"link_type":         snap.LinkType,
		"serving_satellite": snap.ServingSatellite,
		"visible_count":     snap.VisibleCount,
		"handover_seconds":  snap.HandoverSeconds,
		"bars":              snap.Bars(),
		"paused":            a.monitor.IsPaused(),
	}
	if a.cfg.Demo.Enabled {
		resp["mode"] = "demo"
	} else {
		resp["mode"] = "live"
	}
	if snap.LastRecovery != nil {
		resp["last_recovery"] = snap.LastRecovery
	}

	writeJSON(w, resp)
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
	})
}

func (a *App) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, a.cfg)
}

// handleLedger lists known access points with secrets redacted; the
// details view never needs the credential itself.
func (a *App) handleLedger(w http.ResponseWriter, _ *http.Request) {
	records, err := a.ledger.ListAll()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a.metrics.LedgerSize.Set(float64(len(records)))

	type apJSON struct {
		BSSID       string `json:"bssid"`
		SSID        string `json:"ssid"`
		LastSuccess string `json:"last_success"`
	}
	aps := make([]apJSON, len(records))
	for i, r := range records {
		aps[i] = apJSON{
			BSSID:       r.BSSID,
			SSID:        r.SSID,
			LastSuccess: time.Unix(r.LastSuccess, 0).UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, map[string]any{"access_points": aps})
}

// handleSatellites reports the current per-element elevations and the
// serving choice, computed on demand from the cached element set.
func (a *App) handleSatellites(w http.ResponseWriter, _ *http.Request) {
	elements := a.elements.Elements()

	obs := sky.Observer{
		Lat: a.cfg.Station.Latitude,
		Lon: a.cfg.Station.Longitude,
		Alt: a.cfg.Station.Altitude,
	}
	now := time.Now().UTC()
	elevations := sky.Elevations(elements, obs, now)
	est := sky.EstimateFrom(elevations, a.cfg.Station.MinElevation)

	// The full constellation is thousands of elements; only report the
	// ones above the horizon.
	visible := make([]sky.SatelliteElevation, 0, est.VisibleCount)
	for _, e := range elevations {
		if e.Visible {
			visible = append(visible, e)
		}
	}

	writeJSON(w, map[string]any{
		"serving":       est.Serving,
		"visible_count": est.VisibleCount,
		"element_count": len(elements),
		"min_elevation": a.cfg.Station.MinElevation,
		"visible":       visible,
	})
}

func (a *App) handleTLEInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, a.elements.CacheInfo(time.Now().UTC()))
}

func (a *App) handleLogs(w http.ResponseWriter, r *http.Request) {
	a.logBufMu.Lock()
	entries := make([]logEntry, len(a.logBuf))
	copy(entries, a.logBuf)
	a.logBufMu.Unlock()

	if level := r.URL.Query().Get("level"); level != "" {
		var filtered []logEntry
		for _, e := range entries {
			if e.Level == level {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n < len(entries) {
			entries = entries[len(entries)-n:]
		}
	}

	writeJSON(w, map[string]any{"logs": entries})
}

func (a *App) handleConnect(w http.ResponseWriter, r *http.Request) {
	a.commandHandler(w, r, "connect")
}

func (a *App) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	a.commandHandler(w, r, "disconnect")
}

func (a *App) handleTLERefresh(w http.ResponseWriter, r *http.Request) {
	a.commandHandler(w, r, "tle_refresh")
}

func (a *App) handlePause(w http.ResponseWriter, r *http.Request) {
	a.commandHandler(w, r, "pause")
}

func (a *App) handleResume(w http.ResponseWriter, r *http.Request) {
	a.commandHandler(w, r, "resume")
}

// commandHandler relays a POST to the monitor's command channel and writes
// the single reply.
func (a *App) commandHandler(w http.ResponseWriter, r *http.Request, cmdType string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reply := make(chan monitor.CommandResult, 1)
	a.monitor.Commands <- monitor.Command{Type: cmdType, Reply: reply}
	result := <-reply

	w.Header().Set("Content-Type", "application/json")
	if !result.OK {
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(result)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
}
