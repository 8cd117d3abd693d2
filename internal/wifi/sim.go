package wifi

import (
	"context"
	"errors"
	"sync"
)

// SimScanner is the demo-mode scanner: a fixed set of access points, as if
// one dish were always in range.
type SimScanner struct {
	Results []ScanResult
}

// Scan implements Scanner.
func (s *SimScanner) Scan(ctx context.Context) ([]ScanResult, error) {
	out := make([]ScanResult, len(s.Results))
	copy(out, s.Results)
	return out, nil
}

// SimConnector is the demo-mode connect primitive. Profile connects fail
// (there are no saved NetworkManager profiles in a simulation) and
// credential connects succeed, so a demo recovery walks the whole state
// machine.
type SimConnector struct {
	mu     sync.Mutex
	active string
}

// ConnectByProfile implements Connector.
func (c *SimConnector) ConnectByProfile(ctx context.Context, name string) error {
	return errors.New("sim: no such profile")
}

// ConnectWithCredential implements Connector.
func (c *SimConnector) ConnectWithCredential(ctx context.Context, bssid, ssid, secret string) error {
	c.mu.Lock()
	c.active = ssid
	c.mu.Unlock()
	return nil
}

// ActiveLink implements Connector.
func (c *SimConnector) ActiveLink(ctx context.Context) (LinkType, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == "" {
		return LinkNone, "", nil
	}
	return LinkWiFi, c.active, nil
}

// Disconnect implements Connector.
func (c *SimConnector) Disconnect(ctx context.Context, name string) error {
	c.mu.Lock()
	c.active = ""
	c.mu.Unlock()
	return nil
}
