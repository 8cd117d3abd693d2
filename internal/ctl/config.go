package ctl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config fetches and displays the daemon's running configuration.
func Config(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	// Decode into a generic map to preserve all fields for both display modes.
	var raw json.RawMessage
	if err := getJSON(baseURL, "/api/config", &raw); err != nil {
		return err
	}

	if jsonOutput {
		var v any
		_ = json.Unmarshal(raw, &v)
		return printJSON(v)
	}

	// Decode into ordered sections for human-readable output.
	var cfg struct {
		Data struct {
			Root       string `json:"root"`
			LedgerFile string `json:"ledger_file"`
		} `json:"data"`
		Logging struct {
			Level string `json:"level"`
		} `json:"logging"`
		Server struct {
			Bind string `json:"bind"`
		} `json:"server"`
		Demo struct {
			Enabled         bool `json:"enabled"`
			DropAfterCycles int  `json:"drop_after_cycles"`
		} `json:"demo"`
		Dish struct {
			Address        string `json:"address"`
			ProbeTimeoutMS int    `json:"probe_timeout_ms"`
		} `json:"dish"`
		Station struct {
			Latitude     float64 `json:"latitude"`
			Longitude    float64 `json:"longitude"`
			Altitude     float64 `json:"altitude"`
			MinElevation float64 `json:"min_elevation"`
		} `json:"station"`
		WiFi struct {
			AllowedSSIDs []string `json:"allowed_ssids"`
		} `json:"wifi"`
		Recovery struct {
			CooldownSeconds int `json:"cooldown_seconds"`
		} `json:"recovery"`
		TLE struct {
			URL            string `json:"url"`
			RefreshSeconds int    `json:"refresh_seconds"`
		} `json:"tle"`
		Handover struct {
			Boundaries []int `json:"boundaries"`
		} `json:"handover"`
		Monitor struct {
			IntervalSeconds int `json:"interval_seconds"`
		} `json:"monitor"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	bounds := make([]string, len(cfg.Handover.Boundaries))
	for i, b := range cfg.Handover.Boundaries {
		bounds[i] = fmt.Sprintf(":%02d", b)
	}

	fmt.Println()
	fmt.Println(header("  RUNNING CONFIGURATION"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 50)))
	fmt.Printf("  %-18s %s\n", colorize(dim, "Data root:"), cfg.Data.Root)
	fmt.Printf("  %-18s %s\n", colorize(dim, "Ledger file:"), cfg.Data.LedgerFile)
	fmt.Printf("  %-18s %s\n", colorize(dim, "Log level:"), cfg.Logging.Level)
	fmt.Printf("  %-18s %s\n", colorize(dim, "Bind:"), cfg.Server.Bind)
	fmt.Printf("  %-18s %v\n", colorize(dim, "Demo mode:"), cfg.Demo.Enabled)
	fmt.Printf("  %-18s %s (timeout %dms)\n", colorize(dim, "Dish:"), cfg.Dish.Address, cfg.Dish.ProbeTimeoutMS)
	fmt.Printf("  %-18s %.4f, %.4f @ %.0fm\n", colorize(dim, "Station:"),
		cfg.Station.Latitude, cfg.Station.Longitude, cfg.Station.Altitude)
	fmt.Printf("  %-18s %.0f°\n", colorize(dim, "Min elevation:"), cfg.Station.MinElevation)
	fmt.Printf("  %-18s %s\n", colorize(dim, "Allowed SSIDs:"), strings.Join(cfg.WiFi.AllowedSSIDs, ", "))
	fmt.Printf("  %-18s %ds\n", colorize(dim, "Cooldown:"), cfg.Recovery.CooldownSeconds)
	fmt.Printf("  %-18s %s\n", colorize(dim, "TLE source:"), cfg.TLE.URL)
	fmt.Printf("  %-18s %ds\n", colorize(dim, "TLE refresh:"), cfg.TLE.RefreshSeconds)
	fmt.Printf("  %-18s %s\n", colorize(dim, "Handover marks:"), strings.Join(bounds, " "))
	fmt.Printf("  %-18s %ds\n", colorize(dim, "Poll interval:"), cfg.Monitor.IntervalSeconds)
	fmt.Println()

	return nil
}
