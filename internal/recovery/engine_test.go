package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/macauleyjustin/dishwatch/internal/ledger"
	"github.com/macauleyjustin/dishwatch/internal/wifi"
)

// fakeScanner returns a fixed scan, or an error.
type fakeScanner struct {
	results []wifi.ScanResult
	err     error
}

func (f *fakeScanner) Scan(context.Context) ([]wifi.ScanResult, error) {
	return f.results, f.err
}

// fakeConnector records connect calls and succeeds only for configured
// targets.
type fakeConnector struct {
	profileOK    map[string]bool // SSID -> profile connect succeeds
	credentialOK map[string]bool // BSSID -> credential connect succeeds

	profileCalls    []string
	credentialCalls []string
}

func (f *fakeConnector) ConnectByProfile(_ context.Context, name string) error {
	f.profileCalls = append(f.profileCalls, name)
	if f.profileOK[name] {
		return nil
	}
	return errors.New("no usable profile")
}

func (f *fakeConnector) ConnectWithCredential(_ context.Context, bssid, _, _ string) error {
	f.credentialCalls = append(f.credentialCalls, bssid)
	if f.credentialOK[bssid] {
		return nil
	}
	return errors.New("association failed")
}

func (f *fakeConnector) ActiveLink(context.Context) (wifi.LinkType, string, error) {
	return wifi.LinkNone, "", nil
}

func (f *fakeConnector) Disconnect(context.Context, string) error { return nil }

// fakePrompt answers credential prompts from a canned table; missing SSIDs
// are declined.
type fakePrompt struct {
	answers map[string]string
	asked   []string
}

func (f *fakePrompt) Ask(_ context.Context, ssid string) (string, error) {
	f.asked = append(f.asked, ssid)
	if secret, ok := f.answers[ssid]; ok {
		return secret, nil
	}
	return "", wifi.ErrDeclined
}

// fakeLedger is an in-memory Ledger implementation tracking mutations.
type fakeLedger struct {
	records  []ledger.Record
	upserts  []string
	touches  []string
	listErr  error
	touchErr error
}

func (f *fakeLedger) Upsert(bssid, ssid, secret string) error {
	f.upserts = append(f.upserts, bssid)
	f.records = append(f.records, ledger.Record{BSSID: bssid, SSID: ssid, Secret: secret, LastSuccess: 1})
	return nil
}

func (f *fakeLedger) Touch(bssid string) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touches = append(f.touches, bssid)
	return nil
}

func (f *fakeLedger) ListAll() ([]ledger.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func newTestEngine(scanner *fakeScanner, conn *fakeConnector, prompt *fakePrompt, led *fakeLedger) *Engine {
	return &Engine{
		Scanner:   scanner,
		Connector: conn,
		Prompt:    prompt,
		Ledger:    led,
	}
}

// TestRunKnownCandidateSucceeds covers the happy path: a remembered access
// point is visible, the stored credential works, and its last-success is
// refreshed.
func TestRunKnownCandidateSucceeds(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
	}}
	conn := &fakeConnector{credentialOK: map[string]bool{"AA:BB:CC:00:00:01": true}}
	led := &fakeLedger{records: []ledger.Record{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Secret: "hunter2", LastSuccess: 1000},
	}}

	e := newTestEngine(scanner, conn, &fakePrompt{}, led)
	sess := NewSession(false)

	out := e.Run(context.Background(), sess)
	if out.State != StateSucceeded {
		t.Fatalf("Run() state = %s; want succeeded (reason %q)", out.State, out.Reason)
	}
	if out.BSSID != "AA:BB:CC:00:00:01" {
		t.Errorf("Run() BSSID = %s", out.BSSID)
	}
	if len(led.touches) != 1 || led.touches[0] != "AA:BB:CC:00:00:01" {
		t.Errorf("ledger touches = %v; want one touch of the winner", led.touches)
	}
	if len(led.upserts) != 0 {
		t.Errorf("success via stored credential must not upsert; got %v", led.upserts)
	}
}

// TestRunKnownFailureFallsThroughToNew verifies that a failing known
// candidate lands in the tried-set and the engine moves on to unknown
// networks rather than retrying it.
func TestRunKnownFailureFallsThroughToNew(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
		{BSSID: "DD:EE:FF:00:00:01", SSID: "STINKY", Signal: 40},
	}}
	conn := &fakeConnector{credentialOK: map[string]bool{"DD:EE:FF:00:00:01": true}}
	led := &fakeLedger{records: []ledger.Record{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Secret: "stale", LastSuccess: 1000},
	}}
	prompt := &fakePrompt{answers: map[string]string{"STINKY": "newpass"}}

	e := newTestEngine(scanner, conn, prompt, led)
	sess := NewSession(true)

	out := e.Run(context.Background(), sess)
	if out.State != StateSucceeded {
		t.Fatalf("Run() state = %s; want succeeded (reason %q)", out.State, out.Reason)
	}
	if out.BSSID != "DD:EE:FF:00:00:01" {
		t.Errorf("Run() succeeded via %s; want the new network", out.BSSID)
	}
	if !sess.Tried("AA:BB:CC:00:00:01") {
		t.Error("failed known candidate should be in the tried-set")
	}
	if len(led.upserts) != 1 || led.upserts[0] != "DD:EE:FF:00:00:01" {
		t.Errorf("new-network success should upsert once; got %v", led.upserts)
	}
}

// TestRunUnattendedSkipsUnknown verifies unattended sessions never prompt:
// with only unknown networks visible the run exhausts and every candidate
// is marked tried.
func TestRunUnattendedSkipsUnknown(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
		{BSSID: "DD:EE:FF:00:00:01", SSID: "STINKY", Signal: 40},
	}}
	conn := &fakeConnector{}
	prompt := &fakePrompt{answers: map[string]string{"STARLINK": "never-used"}}

	e := newTestEngine(scanner, conn, prompt, &fakeLedger{})
	sess := NewSession(false)

	out := e.Run(context.Background(), sess)
	if out.State != StateExhausted {
		t.Fatalf("Run() state = %s; want exhausted", out.State)
	}
	if len(prompt.asked) != 0 {
		t.Errorf("unattended session prompted for %v", prompt.asked)
	}
	if out.Tried != 2 {
		t.Errorf("Run() Tried = %d; want 2", out.Tried)
	}
}

// TestRunTriedSetPersistsAcrossRuns verifies the session carries its
// tried-set between engine runs within one disconnection episode.
func TestRunTriedSetPersistsAcrossRuns(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
	}}
	conn := &fakeConnector{}

	e := newTestEngine(scanner, conn, &fakePrompt{}, &fakeLedger{})
	sess := NewSession(false)

	e.Run(context.Background(), sess)
	firstCalls := len(conn.profileCalls)
	if firstCalls == 0 {
		t.Fatal("first run should have attempted the candidate")
	}

	out := e.Run(context.Background(), sess)
	if out.State != StateExhausted {
		t.Fatalf("second Run() state = %s; want exhausted", out.State)
	}
	if len(conn.profileCalls) != firstCalls {
		t.Errorf("second run re-attempted a tried candidate: %v", conn.profileCalls)
	}
}

// TestRunProfileFastPathTouchesLedger verifies that an unknown network
// reachable through an existing system profile succeeds without prompting
// and refreshes last-success.
func TestRunProfileFastPathTouchesLedger(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
	}}
	conn := &fakeConnector{profileOK: map[string]bool{"STARLINK": true}}
	led := &fakeLedger{touchErr: ledger.ErrNotFound}
	prompt := &fakePrompt{}

	e := newTestEngine(scanner, conn, prompt, led)
	out := e.Run(context.Background(), NewSession(false))

	if out.State != StateSucceeded {
		t.Fatalf("Run() state = %s; want succeeded", out.State)
	}
	if len(prompt.asked) != 0 {
		t.Error("profile fast path must not prompt")
	}
	if len(conn.credentialCalls) != 0 {
		t.Error("profile fast path must not try credentials")
	}
}

func TestRunScanFailure(t *testing.T) {
	scanner := &fakeScanner{err: errors.New("interface busy")}
	e := newTestEngine(scanner, &fakeConnector{}, &fakePrompt{}, &fakeLedger{})

	out := e.Run(context.Background(), NewSession(false))
	if out.State != StateExhausted {
		t.Errorf("Run() state = %s; want exhausted", out.State)
	}
	if out.Reason == "" {
		t.Error("scan failure should carry a reason")
	}
}

func TestRunEmptyScan(t *testing.T) {
	scanner := &fakeScanner{}
	e := newTestEngine(scanner, &fakeConnector{}, &fakePrompt{}, &fakeLedger{})

	out := e.Run(context.Background(), NewSession(true))
	if out.State != StateExhausted {
		t.Errorf("Run() state = %s; want exhausted", out.State)
	}
}

// TestRunLedgerReadFailureDegrades verifies recovery still proceeds with
// ranking only by signal when the ledger cannot be read.
func TestRunLedgerReadFailureDegrades(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
	}}
	conn := &fakeConnector{profileOK: map[string]bool{"STARLINK": true}}
	led := &fakeLedger{listErr: errors.New("database is locked"), touchErr: ledger.ErrNotFound}

	e := newTestEngine(scanner, conn, &fakePrompt{}, led)
	out := e.Run(context.Background(), NewSession(false))
	if out.State != StateSucceeded {
		t.Errorf("Run() state = %s; want succeeded despite ledger error", out.State)
	}
}

// TestRunCancelledContext verifies cancellation abandons the run without
// recording a success.
func TestRunCancelledContext(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
	}}
	led := &fakeLedger{records: []ledger.Record{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Secret: "s", LastSuccess: 1000},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(scanner, &fakeConnector{}, &fakePrompt{}, led)
	out := e.Run(ctx, NewSession(false))
	if out.State != StateExhausted {
		t.Fatalf("Run() state = %s; want exhausted", out.State)
	}
	if out.Reason != "cancelled" {
		t.Errorf("Run() reason = %q; want cancelled", out.Reason)
	}
	if len(led.touches) != 0 || len(led.upserts) != 0 {
		t.Error("cancelled run must not mutate the ledger")
	}
}

// TestRunDeclinedPromptMarksTried verifies a declined credential prompt
// counts the network as tried for the rest of the session.
func TestRunDeclinedPromptMarksTried(t *testing.T) {
	scanner := &fakeScanner{results: []wifi.ScanResult{
		{BSSID: "AA:BB:CC:00:00:01", SSID: "STARLINK", Signal: 60},
	}}
	prompt := &fakePrompt{} // no answers: every prompt declines

	e := newTestEngine(scanner, &fakeConnector{}, prompt, &fakeLedger{})
	sess := NewSession(true)

	out := e.Run(context.Background(), sess)
	if out.State != StateExhausted {
		t.Fatalf("Run() state = %s; want exhausted", out.State)
	}
	if !sess.Tried("AA:BB:CC:00:00:01") {
		t.Error("declined network should be in the tried-set")
	}
	if len(prompt.asked) != 1 {
		t.Errorf("prompt asked %d times; want 1", len(prompt.asked))
	}
}
