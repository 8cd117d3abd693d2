// Package wifi wraps the wireless collaborators the recovery engine talks
// to: the network scanner, the connect primitives, and the credential
// prompt. The production implementations shell out to nmcli, which is how
// NetworkManager wants to be scripted; everything is behind interfaces so
// the engine can be driven by fakes in tests.
package wifi

import (
	"context"
	"errors"
)

// ScanResult is one visible access point from a scan cycle. Signal is an
// ordinal strength value where higher is better. Results are ephemeral;
// nothing persists them.
type ScanResult struct {
	BSSID  string `json:"bssid"`
	SSID   string `json:"ssid"`
	Signal int    `json:"signal"`
}

// LinkType classifies the active connection for the recovery gate.
type LinkType string

const (
	LinkWired LinkType = "wired"
	LinkWiFi  LinkType = "wifi"
	LinkNone  LinkType = "none"
)

// ErrDeclined is returned by a CredentialPrompt when the human refuses to
// supply a password.
var ErrDeclined = errors.New("wifi: credential prompt declined")

// Scanner produces the current list of candidate access points.
type Scanner interface {
	// Scan rescans and returns visible access points whose SSID is on the
	// allow-list, de-duplicated per BSSID keeping the strongest signal.
	Scan(ctx context.Context) ([]ScanResult, error)
}

// Connector is the connect primitive pair plus the teardown used by the
// manual disconnect action.
type Connector interface {
	// ConnectByProfile brings up an existing NetworkManager profile by
	// name. Fails if no profile exists or association fails.
	ConnectByProfile(ctx context.Context, name string) error
	// ConnectWithCredential associates with a specific BSSID using the
	// given SSID and secret, creating a profile on success.
	ConnectWithCredential(ctx context.Context, bssid, ssid, secret string) error
	// ActiveLink reports the type of the active connection and, for
	// wireless links, the active connection name.
	ActiveLink(ctx context.Context) (LinkType, string, error)
	// Disconnect tears down the named connection.
	Disconnect(ctx context.Context, name string) error
}

// CredentialPrompt asks a human for a network secret. Ask may block until
// the human answers or the context is cancelled; ErrDeclined means they
// refused.
type CredentialPrompt interface {
	Ask(ctx context.Context, ssid string) (string, error)
}
