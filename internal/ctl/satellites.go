package ctl

import (
	"fmt"
	"strings"
)

// Satellites shows the current visibility estimate: which element the dish
// is most likely served by and every element above the horizon.
func Satellites(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp struct {
		Serving      string  `json:"serving"`
		VisibleCount int     `json:"visible_count"`
		ElementCount int     `json:"element_count"`
		MinElevation float64 `json:"min_elevation"`
		Visible      []struct {
			Name      string  `json:"name"`
			Elevation float64 `json:"elevation"`
			Visible   bool    `json:"visible"`
		} `json:"visible"`
	}
	if err := getJSON(baseURL, "/api/satellites", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	serving := resp.Serving
	if serving == "unknown" {
		serving = colorize(dim, "unknown")
	} else {
		serving = colorize(bold, serving)
	}

	fmt.Println()
	fmt.Println(header("  SATELLITE VISIBILITY"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 38)))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Serving:"), serving)
	fmt.Printf("  %-12s %d of %d elements above the horizon\n", colorize(dim, "Visible:"), resp.VisibleCount, resp.ElementCount)
	fmt.Printf("  %-12s %.0f°\n", colorize(dim, "Threshold:"), resp.MinElevation)
	fmt.Println()

	if len(resp.Visible) == 0 {
		fmt.Println(colorize(dim, "  Nothing above the horizon — check the TLE cache and station location."))
		fmt.Println()
		return nil
	}

	t := newTable("  ", "Name", "Elevation", "Candidate")
	for _, s := range resp.Visible {
		mark := ""
		if s.Elevation > resp.MinElevation {
			mark = "yes"
		}
		t.row(s.Name, fmt.Sprintf("%.1f°", s.Elevation), mark)
	}
	t.flush()
	fmt.Println()

	return nil
}
