package wifi

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// NMCLI implements Scanner and Connector by shelling out to the nmcli
// binary in terse (-t) mode.
type NMCLI struct {
	allowed map[string]bool

	// run is the subprocess seam. Tests replace it; production uses
	// exec.CommandContext.
	run func(ctx context.Context, args ...string) (string, error)
}

// NewNMCLI returns an nmcli wrapper that filters scans to the given SSID
// allow-list (case-insensitive).
func NewNMCLI(allowedSSIDs []string) *NMCLI {
	allowed := make(map[string]bool, len(allowedSSIDs))
	for _, s := range allowedSSIDs {
		allowed[strings.ToUpper(s)] = true
	}
	return &NMCLI{
		allowed: allowed,
		run: func(ctx context.Context, args ...string) (string, error) {
			out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
			if err != nil {
				return "", fmt.Errorf("nmcli %s: %w: %s",
					strings.Join(args, " "), err, strings.TrimSpace(string(out)))
			}
			return string(out), nil
		},
	}
}

// Scan implements Scanner. It forces a rescan and keeps only allow-listed
// SSIDs, collapsing duplicate BSSIDs to the strongest reading.
func (n *NMCLI) Scan(ctx context.Context) ([]ScanResult, error) {
	out, err := n.run(ctx, "-t", "-f", "BSSID,SSID,SIGNAL",
		"device", "wifi", "list", "--rescan", "yes")
	if err != nil {
		return nil, err
	}

	best := make(map[string]ScanResult)
	var order []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		fields := splitTerse(line)
		if len(fields) != 3 {
			continue
		}
		ssid := fields[1]
		if !n.allowed[strings.ToUpper(ssid)] {
			continue
		}
		signal, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		bssid := strings.ToUpper(fields[0])
		prev, seen := best[bssid]
		if !seen {
			order = append(order, bssid)
		}
		if !seen || signal > prev.Signal {
			best[bssid] = ScanResult{BSSID: bssid, SSID: ssid, Signal: signal}
		}
	}

	results := make([]ScanResult, 0, len(order))
	for _, bssid := range order {
		results = append(results, best[bssid])
	}
	return results, nil
}

// ConnectByProfile implements Connector.
func (n *NMCLI) ConnectByProfile(ctx context.Context, name string) error {
	_, err := n.run(ctx, "con", "up", name)
	return err
}

// ConnectWithCredential implements Connector.
func (n *NMCLI) ConnectWithCredential(ctx context.Context, bssid, ssid, secret string) error {
	_, err := n.run(ctx, "dev", "wifi", "connect", ssid,
		"password", secret, "bssid", bssid)
	return err
}

// ActiveLink implements Connector. It inspects the active connections and
// reports wired before wireless, since a machine on ethernet needs no
// recovery regardless of what Wi-Fi is doing.
func (n *NMCLI) ActiveLink(ctx context.Context) (LinkType, string, error) {
	out, err := n.run(ctx, "-t", "-f", "NAME,TYPE,STATE", "con", "show", "--active")
	if err != nil {
		return LinkNone, "", err
	}

	wifiName := ""
	sawWired := false
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := splitTerse(line)
		if len(fields) != 3 || fields[2] != "activated" {
			continue
		}
		switch fields[1] {
		case "802-3-ethernet":
			sawWired = true
		case "802-11-wireless":
			if wifiName == "" {
				wifiName = fields[0]
			}
		}
	}
	if sawWired {
		return LinkWired, "", nil
	}
	if wifiName != "" {
		return LinkWiFi, wifiName, nil
	}
	return LinkNone, "", nil
}

// Disconnect implements Connector.
func (n *NMCLI) Disconnect(ctx context.Context, name string) error {
	_, err := n.run(ctx, "con", "down", name)
	return err
}

// splitTerse splits one line of nmcli -t output on colons, honoring the
// backslash escaping nmcli applies to literal colons (BSSIDs arrive as
// AA\:BB\:CC\:DD\:EE\:FF).
func splitTerse(line string) []string {
	var fields []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}
