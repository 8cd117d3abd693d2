package ctl

import (
	"fmt"
	"strings"
	"time"
)

// RecoveryOutcome mirrors the last_recovery object inside the status payload.
type RecoveryOutcome struct {
	State   string `json:"state"`
	BSSID   string `json:"bssid,omitempty"`
	SSID    string `json:"ssid,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Tried   int    `json:"tried"`
	Scanned int    `json:"scanned"`
}

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name             string           `json:"name"`
	State            string           `json:"state"`
	UptimeSeconds    int64            `json:"uptime_seconds"`
	Mode             string           `json:"mode"`
	Connected        bool             `json:"connected"`
	RawState         string           `json:"raw_state"`
	Reason           string           `json:"reason"`
	LinkType         string           `json:"link_type"`
	ServingSatellite string           `json:"serving_satellite"`
	VisibleCount     int              `json:"visible_count"`
	HandoverSeconds  int              `json:"handover_seconds"`
	Bars             int              `json:"bars"`
	Paused           bool             `json:"paused"`
	LastRecovery     *RecoveryOutcome `json:"last_recovery,omitempty"`
}

// Status fetches the daemon status and prints a formatted summary.
func Status(baseURL string, jsonOut bool) error {
	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(s)
	}

	uptime := formatDuration(time.Duration(s.UptimeSeconds) * time.Second)
	stateStr := colorize(stateColor(s.State), s.State)
	if s.Paused {
		stateStr += colorize(dim, " (paused)")
	}

	link := colorize(red, "DOWN")
	if s.Connected {
		link = colorize(green, "UP")
	}
	if s.Reason != "" {
		link += colorize(dim, " ("+s.Reason+")")
	}

	serving := s.ServingSatellite
	if serving == "unknown" {
		serving = colorize(dim, "unknown")
	}

	fmt.Println()
	fmt.Println(header("  DISHWATCH STATUS"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 38)))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Daemon:"), s.Name)
	fmt.Printf("  %-12s %s\n", colorize(dim, "State:"), stateStr)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Mode:"), s.Mode)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Uptime:"), uptime)
	fmt.Printf("  %-12s %s %s\n", colorize(dim, "Link:"), link, signalBars(s.Bars))
	if s.LinkType != "" {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Via:"), s.LinkType)
	}
	fmt.Printf("  %-12s %s\n", colorize(dim, "Serving:"), serving)
	fmt.Printf("  %-12s %d\n", colorize(dim, "Visible:"), s.VisibleCount)
	fmt.Printf("  %-12s %ds\n", colorize(dim, "Handover:"), s.HandoverSeconds)
	if s.LastRecovery != nil {
		out := s.LastRecovery
		desc := out.State
		if out.SSID != "" {
			desc += " " + out.SSID + " (" + out.BSSID + ")"
		}
		fmt.Printf("  %-12s %s %s\n",
			colorize(dim, "Recovery:"), desc,
			colorize(dim, fmt.Sprintf("tried %d of %d", out.Tried, out.Scanned)))
	}
	fmt.Println()

	return nil
}
