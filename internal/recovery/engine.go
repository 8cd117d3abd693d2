package recovery

import (
	"context"
	"errors"
	"log"

	"github.com/macauleyjustin/dishwatch/internal/ledger"
	"github.com/macauleyjustin/dishwatch/internal/wifi"
)

// State names the phases of one recovery session.
type State string

const (
	StateIdle            State = "idle"
	StateScanning        State = "scanning"
	StateAttemptingKnown State = "attempting_known"
	StateAttemptingNew   State = "attempting_new"
	StateSucceeded       State = "succeeded"
	StateExhausted       State = "exhausted"
)

// Ledger is the slice of the connection ledger the engine needs. Satisfied
// by *ledger.Store.
type Ledger interface {
	Upsert(bssid, ssid, secret string) error
	Touch(bssid string) error
	ListAll() ([]ledger.Record, error)
}

// Outcome reports how a session run ended. Exhaustion is an outcome, not
// an error: the engine never fails hard on a candidate that won't take us.
type Outcome struct {
	State   State  `json:"state"`
	BSSID   string `json:"bssid,omitempty"`
	SSID    string `json:"ssid,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Tried   int    `json:"tried"`
	Scanned int    `json:"scanned"`
}

// Session is the per-disconnection-episode state: which BSSIDs have
// already been tried and failed. It grows across engine runs while the
// link stays down and is reset once the link is observed up again.
type Session struct {
	// Interactive sessions may prompt the human for a credential;
	// unattended ones skip unknown networks instead.
	Interactive bool

	tried map[string]bool
	state State
}

// NewSession starts a fresh recovery session with an empty tried-set.
func NewSession(interactive bool) *Session {
	return &Session{
		Interactive: interactive,
		tried:       make(map[string]bool),
		state:       StateIdle,
	}
}

// Tried reports whether a BSSID has already failed in this session.
func (s *Session) Tried(bssid string) bool {
	return s.tried[ledger.CanonicalBSSID(bssid)]
}

// TriedCount returns how many identities have failed so far.
func (s *Session) TriedCount() int { return len(s.tried) }

// State returns the session's current phase.
func (s *Session) State() State { return s.state }

func (s *Session) markTried(bssid string) {
	s.tried[ledger.CanonicalBSSID(bssid)] = true
}

// Engine drives recovery sessions. All collaborators are injected; the
// engine owns no goroutines and runs entirely in the caller's cycle.
type Engine struct {
	Scanner   wifi.Scanner
	Connector wifi.Connector
	Prompt    wifi.CredentialPrompt
	Ledger    Ledger
	Log       *log.Logger

	// Emit, when set, receives one event map per notable transition for
	// the daemon's event stream.
	Emit func(map[string]any)
}

// Run executes one pass of the state machine for the session: scan, try
// known access points most-recently-successful first, then fall through to
// new ones. It blocks while a connect call or credential prompt is
// outstanding and returns a terminal Outcome; ctx cancellation abandons
// the run without touching the ledger.
func (e *Engine) Run(ctx context.Context, sess *Session) Outcome {
	sess.state = StateScanning
	e.event(map[string]any{"type": "recovery", "stage": "scanning"})

	scan, err := e.Scanner.Scan(ctx)
	if err != nil {
		sess.state = StateExhausted
		e.logf("recovery: scan failed: %v", err)
		return e.done(sess, Outcome{State: StateExhausted, Reason: "scan failed: " + err.Error()})
	}
	if len(scan) == 0 {
		sess.state = StateExhausted
		return e.done(sess, Outcome{State: StateExhausted, Reason: "no candidates visible"})
	}

	records, err := e.Ledger.ListAll()
	if err != nil {
		// Ledger trouble degrades ranking, it does not stop recovery.
		e.logf("recovery: ledger read failed, ranking without history: %v", err)
		records = nil
	}

	ranked := Rank(scan, records)

	// Known access points first, preferring the most recent success.
	sess.state = StateAttemptingKnown
	for _, c := range ranked {
		if !c.Known || sess.Tried(c.BSSID) {
			continue
		}
		if ctx.Err() != nil {
			return e.abandoned(sess, len(scan))
		}
		e.event(map[string]any{"type": "recovery", "stage": "attempting_known", "bssid": c.BSSID, "ssid": c.SSID})

		if e.connectKnown(ctx, c) {
			sess.state = StateSucceeded
			return e.done(sess, Outcome{State: StateSucceeded, BSSID: c.BSSID, SSID: c.SSID, Tried: sess.TriedCount(), Scanned: len(scan)})
		}
		sess.markTried(c.BSSID)
	}

	// Fall through to networks we have no credential for, strongest first.
	sess.state = StateAttemptingNew
	for _, c := range ranked {
		if sess.Tried(c.BSSID) {
			continue
		}
		if ctx.Err() != nil {
			return e.abandoned(sess, len(scan))
		}
		e.event(map[string]any{"type": "recovery", "stage": "attempting_new", "bssid": c.BSSID, "ssid": c.SSID})

		// Fast path: an existing profile may hold the credential even
		// though our ledger does not.
		if err := e.Connector.ConnectByProfile(ctx, c.SSID); err == nil {
			e.touch(c.BSSID)
			sess.state = StateSucceeded
			return e.done(sess, Outcome{State: StateSucceeded, BSSID: c.BSSID, SSID: c.SSID, Tried: sess.TriedCount(), Scanned: len(scan)})
		}

		if !sess.Interactive {
			// Unattended sessions never prompt; skip this network.
			sess.markTried(c.BSSID)
			continue
		}

		secret, err := e.Prompt.Ask(ctx, c.SSID)
		if err != nil {
			if !errors.Is(err, wifi.ErrDeclined) && ctx.Err() != nil {
				return e.abandoned(sess, len(scan))
			}
			sess.markTried(c.BSSID)
			continue
		}

		if err := e.Connector.ConnectWithCredential(ctx, c.BSSID, c.SSID, secret); err != nil {
			e.logf("recovery: connect %s (%s) failed: %v", c.SSID, c.BSSID, err)
			sess.markTried(c.BSSID)
			continue
		}

		if err := e.Ledger.Upsert(c.BSSID, c.SSID, secret); err != nil {
			// The link is up; a failed write only costs us memory of it.
			e.logf("recovery: ledger upsert failed: %v", err)
		}
		sess.state = StateSucceeded
		return e.done(sess, Outcome{State: StateSucceeded, BSSID: c.BSSID, SSID: c.SSID, Tried: sess.TriedCount(), Scanned: len(scan)})
	}

	sess.state = StateExhausted
	return e.done(sess, Outcome{State: StateExhausted, Reason: "all candidates failed", Tried: sess.TriedCount(), Scanned: len(scan)})
}

// connectKnown tries a known candidate: profile fast path first, then the
// stored credential. On success the ledger's last-success is refreshed.
func (e *Engine) connectKnown(ctx context.Context, c Candidate) bool {
	if err := e.Connector.ConnectByProfile(ctx, c.SSID); err == nil {
		e.touch(c.BSSID)
		return true
	}
	if err := e.Connector.ConnectWithCredential(ctx, c.BSSID, c.SSID, c.Secret); err != nil {
		e.logf("recovery: known candidate %s (%s) failed: %v", c.SSID, c.BSSID, err)
		return false
	}
	e.touch(c.BSSID)
	return true
}

func (e *Engine) touch(bssid string) {
	if err := e.Ledger.Touch(bssid); err != nil && !errors.Is(err, ledger.ErrNotFound) {
		e.logf("recovery: ledger touch %s failed: %v", bssid, err)
	}
}

func (e *Engine) abandoned(sess *Session, scanned int) Outcome {
	sess.state = StateExhausted
	return Outcome{State: StateExhausted, Reason: "cancelled", Tried: sess.TriedCount(), Scanned: scanned}
}

func (e *Engine) done(sess *Session, o Outcome) Outcome {
	e.event(map[string]any{
		"type":   "recovery",
		"stage":  string(o.State),
		"reason": o.Reason,
		"bssid":  o.BSSID,
		"tried":  o.Tried,
	})
	return o
}

func (e *Engine) event(v map[string]any) {
	if e.Emit != nil {
		e.Emit(v)
	}
}

func (e *Engine) logf(format string, args ...any) {
	if e.Log != nil {
		e.Log.Printf(format, args...)
	}
}
