// Package recovery restores a dropped satellite link by ranking the
// visible dish access points against the connection ledger and working
// through them with a bounded state machine.
package recovery

import (
	"sort"

	"github.com/macauleyjustin/dishwatch/internal/ledger"
	"github.com/macauleyjustin/dishwatch/internal/wifi"
)

// Candidate is a scan result joined with what the ledger knows about it.
type Candidate struct {
	wifi.ScanResult
	// Known is true when the ledger holds a credential for this BSSID.
	Known       bool
	Secret      string
	LastSuccess int64
}

// Rank merges a scan with a ledger snapshot into the attempt order:
// known access points with a recorded success sort before unknown ones;
// among known, more recent last-success first, then stronger signal;
// among unknown, stronger signal first. BSSID breaks any remaining tie so
// the order is total. Duplicate BSSIDs in the scan collapse to the
// strongest reading. Rank is pure: same inputs, same output.
func Rank(scan []wifi.ScanResult, records []ledger.Record) []Candidate {
	byBSSID := make(map[string]ledger.Record, len(records))
	for _, r := range records {
		byBSSID[ledger.CanonicalBSSID(r.BSSID)] = r
	}

	best := make(map[string]wifi.ScanResult, len(scan))
	for _, s := range scan {
		key := ledger.CanonicalBSSID(s.BSSID)
		if prev, ok := best[key]; !ok || s.Signal > prev.Signal {
			s.BSSID = key
			best[key] = s
		}
	}

	candidates := make([]Candidate, 0, len(best))
	for _, s := range best {
		c := Candidate{ScanResult: s}
		if r, ok := byBSSID[s.BSSID]; ok && r.LastSuccess > 0 {
			c.Known = true
			c.Secret = r.Secret
			c.LastSuccess = r.LastSuccess
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Known != b.Known {
			return a.Known
		}
		if a.Known && a.LastSuccess != b.LastSuccess {
			return a.LastSuccess > b.LastSuccess
		}
		if a.Signal != b.Signal {
			return a.Signal > b.Signal
		}
		return a.BSSID < b.BSSID
	})

	return candidates
}
