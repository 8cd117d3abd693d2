package ctl

import (
	"fmt"
	"strings"
)

// Handover shows the seconds remaining until the next scheduled satellite
// handover boundary, as computed by the daemon.
func Handover(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"handover_seconds":  s.HandoverSeconds,
			"serving_satellite": s.ServingSatellite,
		})
	}

	serving := s.ServingSatellite
	if serving == "unknown" {
		serving = colorize(dim, "unknown")
	}

	fmt.Println()
	fmt.Printf("  %s %s\n", header("Next handover in"), colorize(bold, fmt.Sprintf("%ds", s.HandoverSeconds)))
	fmt.Printf("  %s %s\n", colorize(dim, "Currently serving:"), serving)
	fmt.Println()

	return nil
}
