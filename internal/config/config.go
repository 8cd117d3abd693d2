// Package config handles loading, defaulting, and validation of the dishwatch
// TOML configuration file. Every section maps to a typed struct so the rest
// of the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Data     DataConfig     `toml:"data"     json:"data"`
	Logging  LoggingConfig  `toml:"logging"  json:"logging"`
	Server   ServerConfig   `toml:"server"   json:"server"`
	Demo     DemoConfig     `toml:"demo"     json:"demo"`
	Dish     DishConfig     `toml:"dish"     json:"dish"`
	Station  StationConfig  `toml:"station"  json:"station"`
	WiFi     WiFiConfig     `toml:"wifi"     json:"wifi"`
	Recovery RecoveryConfig `toml:"recovery" json:"recovery"`
	TLE      TLEConfig      `toml:"tle"      json:"tle"`
	Handover HandoverConfig `toml:"handover" json:"handover"`
	Monitor  MonitorConfig  `toml:"monitor"  json:"monitor"`
}

type DataConfig struct {
	Root string `toml:"root" json:"root"`
	// LedgerFile is the SQLite database filename inside Root.
	LedgerFile string `toml:"ledger_file" json:"ledger_file"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
}

type ServerConfig struct {
	Bind string `toml:"bind" json:"bind"`
}

type DemoConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// DropAfterCycles makes the simulated dish report a lost link every
	// N status polls, so recovery paths can be exercised without hardware.
	DropAfterCycles int `toml:"drop_after_cycles" json:"drop_after_cycles"`
}

type DishConfig struct {
	// Address of the dish telemetry endpoint. Reachability of this
	// endpoint is what "connected" means to the monitor.
	Address        string `toml:"address"          json:"address"`
	ProbeTimeoutMS int    `toml:"probe_timeout_ms" json:"probe_timeout_ms"`
}

type StationConfig struct {
	Latitude  float64 `toml:"latitude"  json:"latitude"`
	Longitude float64 `toml:"longitude" json:"longitude"`
	Altitude  float64 `toml:"altitude"  json:"altitude"`
	// MinElevation is the serving-satellite threshold in degrees. A bird
	// has to clear this angle before it is reported as the one in use.
	MinElevation float64 `toml:"min_elevation" json:"min_elevation"`
}

type WiFiConfig struct {
	// AllowedSSIDs is the set of network names treated as dish access
	// points during scans. Matching is case-insensitive.
	AllowedSSIDs []string `toml:"allowed_ssids" json:"allowed_ssids"`
}

type RecoveryConfig struct {
	CooldownSeconds int `toml:"cooldown_seconds" json:"cooldown_seconds"`
}

type TLEConfig struct {
	URL            string `toml:"url"             json:"url"`
	RefreshSeconds int    `toml:"refresh_seconds" json:"refresh_seconds"`
}

type HandoverConfig struct {
	// Boundaries are seconds-of-minute at which handovers are assumed to
	// occur. Must be ascending and within [0, 59].
	Boundaries []int `toml:"boundaries" json:"boundaries"`
}

type MonitorConfig struct {
	IntervalSeconds int `toml:"interval_seconds" json:"interval_seconds"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Data: DataConfig{
			Root:       "/var/lib/dishwatch",
			LedgerFile: "connections.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Bind: "127.0.0.1:8471",
		},
		Demo: DemoConfig{
			Enabled:         false,
			DropAfterCycles: 6,
		},
		Dish: DishConfig{
			Address:        "192.168.100.1:9200",
			ProbeTimeoutMS: 3000,
		},
		Station: StationConfig{
			Latitude:     0.0,
			Longitude:    0.0,
			Altitude:     0.0,
			MinElevation: 25,
		},
		WiFi: WiFiConfig{
			AllowedSSIDs: []string{"STARLINK", "STINKY"},
		},
		Recovery: RecoveryConfig{
			CooldownSeconds: 300,
		},
		TLE: TLEConfig{
			URL:            "https://celestrak.org/NORAD/elements/gp.php?GROUP=starlink&FORMAT=tle",
			RefreshSeconds: 86400,
		},
		Handover: HandoverConfig{
			Boundaries: []int{12, 27, 42, 57},
		},
		Monitor: MonitorConfig{
			IntervalSeconds: 30,
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the constraints every component relies on.
func Validate(cfg Config) error {
	if cfg.Data.Root == "" {
		return errors.New("data.root must not be empty")
	}
	if cfg.Data.LedgerFile == "" {
		return errors.New("data.ledger_file must not be empty")
	}
	if cfg.Dish.Address == "" {
		return errors.New("dish.address must not be empty")
	}
	if cfg.Dish.ProbeTimeoutMS <= 0 {
		return errors.New("dish.probe_timeout_ms must be > 0")
	}
	if cfg.Station.MinElevation < 0 || cfg.Station.MinElevation > 90 {
		return errors.New("station.min_elevation must be between 0 and 90")
	}
	if len(cfg.WiFi.AllowedSSIDs) == 0 {
		return errors.New("wifi.allowed_ssids must not be empty")
	}
	if cfg.Recovery.CooldownSeconds < 0 {
		return errors.New("recovery.cooldown_seconds must be >= 0")
	}
	if cfg.TLE.RefreshSeconds < 60 {
		return errors.New("tle.refresh_seconds must be >= 60")
	}
	if cfg.Monitor.IntervalSeconds < 1 {
		return errors.New("monitor.interval_seconds must be >= 1")
	}
	if len(cfg.Handover.Boundaries) == 0 {
		return errors.New("handover.boundaries must not be empty")
	}
	if !sort.IntsAreSorted(cfg.Handover.Boundaries) {
		return errors.New("handover.boundaries must be ascending")
	}
	for _, b := range cfg.Handover.Boundaries {
		if b < 0 || b > 59 {
			return errors.New("handover.boundaries entries must be within [0, 59]")
		}
	}
	return nil
}
