package ctl

import (
	"fmt"
	"strings"
	"time"
)

// Ledger lists the known access points recorded by the daemon.
// Secrets never leave the daemon; only identity and recency are shown.
func Ledger(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp struct {
		AccessPoints []struct {
			BSSID       string `json:"bssid"`
			SSID        string `json:"ssid"`
			LastSuccess string `json:"last_success"`
		} `json:"access_points"`
	}
	if err := getJSON(baseURL, "/api/ledger", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  KNOWN ACCESS POINTS"))

	if len(resp.AccessPoints) == 0 {
		fmt.Println(colorize(dim, "  No recorded connections yet."))
		fmt.Println()
		return nil
	}

	t := newTable("  ", "BSSID", "SSID", "Last Success")
	for _, ap := range resp.AccessPoints {
		last := ap.LastSuccess
		if parsed, err := time.Parse(time.RFC3339, ap.LastSuccess); err == nil {
			last = parsed.Local().Format("2006-01-02 15:04:05")
		}
		t.row(ap.BSSID, ap.SSID, last)
	}
	t.flush()
	fmt.Println()

	return nil
}
