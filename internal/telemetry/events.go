// Package telemetry defines the typed event structs that flow over the
// WebSocket connection between dishwatchd and its clients. These types
// document the event schema; internal code broadcasts events as
// map[string]any for flexibility, stamped with the same fields.
package telemetry

import "time"

// EventType identifies the kind of WebSocket event.
type EventType string

const (
	EventHeartbeat EventType = "heartbeat"
	EventStatus    EventType = "status"
	EventState     EventType = "state"
	EventRecovery  EventType = "recovery"
	EventLog       EventType = "log"
)

// Event is the base envelope shared by every event type.
type Event struct {
	Type      EventType `json:"type"`
	TS        string    `json:"ts"`
	Component string    `json:"component,omitempty"`
}

// NowTS returns the current UTC time as an RFC 3339 nano string, matching
// the timestamp format used across all events.
func NowTS() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Heartbeat is sent periodically so clients can detect connectivity and
// monitor daemon uptime.
type Heartbeat struct {
	Event
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// StateTransition is emitted whenever the daemon moves between operating
// states (e.g. IDLE -> RECOVERING).
type StateTransition struct {
	Event
	From string `json:"from"`
	To   string `json:"to"`
}

// Status carries one monitor cycle's snapshot of the link and the sky.
type Status struct {
	Event
	Connected        bool   `json:"connected"`
	RawState         string `json:"raw_state"`
	Reason           string `json:"reason,omitempty"`
	LinkType         string `json:"link_type"`
	ServingSatellite string `json:"serving_satellite"`
	VisibleCount     int    `json:"visible_count"`
	HandoverSeconds  int    `json:"handover_seconds"`
}

// Recovery reports progress of a recovery session: scanning, per-candidate
// attempts, and the terminal outcome.
type Recovery struct {
	Event
	Stage  string `json:"stage"`
	BSSID  string `json:"bssid,omitempty"`
	SSID   string `json:"ssid,omitempty"`
	Reason string `json:"reason,omitempty"`
	Tried  int    `json:"tried,omitempty"`
}

// LogLine carries a human-readable log message at a severity level.
type LogLine struct {
	Event
	Level   string `json:"level"`
	Message string `json:"message"`
}
