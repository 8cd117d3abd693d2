package recovery

import (
	"testing"

	"github.com/macauleyjustin/dishwatch/internal/ledger"
	"github.com/macauleyjustin/dishwatch/internal/wifi"
)

func bssids(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.BSSID
	}
	return out
}

// TestRankKnownBeforeUnknown verifies ledger-backed access points always
// sort ahead of networks we hold no credential for, even at weaker signal.
func TestRankKnownBeforeUnknown(t *testing.T) {
	scan := []wifi.ScanResult{
		{BSSID: "AA:00:00:00:00:01", SSID: "STARLINK", Signal: 90},
		{BSSID: "BB:00:00:00:00:01", SSID: "STARLINK", Signal: 40},
	}
	records := []ledger.Record{
		{BSSID: "BB:00:00:00:00:01", SSID: "STARLINK", Secret: "s", LastSuccess: 1000},
	}

	ranked := Rank(scan, records)
	got := bssids(ranked)
	want := []string{"BB:00:00:00:00:01", "AA:00:00:00:00:01"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Rank() order = %v; want %v", got, want)
		}
	}
	if !ranked[0].Known || ranked[0].Secret != "s" {
		t.Errorf("known candidate lost its ledger join: %+v", ranked[0])
	}
}

// TestRankKnownByRecency verifies known candidates order by last success,
// not by signal.
func TestRankKnownByRecency(t *testing.T) {
	scan := []wifi.ScanResult{
		{BSSID: "AA:00:00:00:00:01", SSID: "STARLINK", Signal: 90},
		{BSSID: "BB:00:00:00:00:01", SSID: "STARLINK", Signal: 40},
	}
	records := []ledger.Record{
		{BSSID: "AA:00:00:00:00:01", LastSuccess: 1000},
		{BSSID: "BB:00:00:00:00:01", LastSuccess: 2000},
	}

	got := bssids(Rank(scan, records))
	want := []string{"BB:00:00:00:00:01", "AA:00:00:00:00:01"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Rank() order = %v; want %v", got, want)
		}
	}
}

func TestRankUnknownBySignalThenBSSID(t *testing.T) {
	scan := []wifi.ScanResult{
		{BSSID: "CC:00:00:00:00:01", SSID: "STINKY", Signal: 50},
		{BSSID: "AA:00:00:00:00:01", SSID: "STARLINK", Signal: 70},
		{BSSID: "BB:00:00:00:00:01", SSID: "STARLINK", Signal: 50},
	}

	got := bssids(Rank(scan, nil))
	want := []string{"AA:00:00:00:00:01", "BB:00:00:00:00:01", "CC:00:00:00:00:01"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Rank() order = %v; want %v", got, want)
		}
	}
}

// TestRankDeduplicatesByBSSID verifies duplicate scan rows for one BSSID
// collapse to the strongest reading.
func TestRankDeduplicatesByBSSID(t *testing.T) {
	scan := []wifi.ScanResult{
		{BSSID: "aa:00:00:00:00:01", SSID: "STARLINK", Signal: 30},
		{BSSID: "AA:00:00:00:00:01", SSID: "STARLINK", Signal: 80},
		{BSSID: "AA:00:00:00:00:01", SSID: "STARLINK", Signal: 55},
	}

	ranked := Rank(scan, nil)
	if len(ranked) != 1 {
		t.Fatalf("Rank() returned %d candidates; want 1", len(ranked))
	}
	if ranked[0].Signal != 80 {
		t.Errorf("deduped Signal = %d; want 80", ranked[0].Signal)
	}
	if ranked[0].BSSID != "AA:00:00:00:00:01" {
		t.Errorf("deduped BSSID = %q; want canonical form", ranked[0].BSSID)
	}
}

// TestRankStaleLedgerEntryIsUnknown verifies a ledger row with no recorded
// success timestamp does not promote its BSSID to known.
func TestRankStaleLedgerEntryIsUnknown(t *testing.T) {
	scan := []wifi.ScanResult{
		{BSSID: "AA:00:00:00:00:01", SSID: "STARLINK", Signal: 50},
	}
	records := []ledger.Record{
		{BSSID: "AA:00:00:00:00:01", Secret: "s", LastSuccess: 0},
	}

	ranked := Rank(scan, records)
	if ranked[0].Known {
		t.Error("candidate with LastSuccess=0 should not rank as known")
	}
}

// TestRankDeterministic verifies repeated calls with the same inputs yield
// the same total order.
func TestRankDeterministic(t *testing.T) {
	scan := []wifi.ScanResult{
		{BSSID: "AA:00:00:00:00:01", SSID: "STARLINK", Signal: 50},
		{BSSID: "BB:00:00:00:00:01", SSID: "STARLINK", Signal: 50},
		{BSSID: "CC:00:00:00:00:01", SSID: "STINKY", Signal: 50},
		{BSSID: "DD:00:00:00:00:01", SSID: "STINKY", Signal: 50},
	}
	records := []ledger.Record{
		{BSSID: "CC:00:00:00:00:01", LastSuccess: 500},
		{BSSID: "DD:00:00:00:00:01", LastSuccess: 500},
	}

	first := bssids(Rank(scan, records))
	for i := 0; i < 10; i++ {
		again := bssids(Rank(scan, records))
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("Rank() order changed between runs: %v vs %v", first, again)
			}
		}
	}
}
