package sky

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleTLE = `STARLINK-1007
1 44713U 19074A   23001.00000000  .00001000  00000-0  70000-4 0  9997
2 44713  53.0551 100.0000 0001000  90.0000 270.0000 15.06000000180000
STARLINK-1008
1 44714U 19074B   23001.00000000  .00001000  00000-0  70000-4 0  9998
2 44714  53.0551 120.0000 0001000  90.0000 270.0000 15.06000000180001
`

func TestParseElements(t *testing.T) {
	elements := ParseElements(sampleTLE)
	if len(elements) != 2 {
		t.Fatalf("ParseElements() returned %d elements; want 2", len(elements))
	}
	if elements[0].Name != "STARLINK-1007" {
		t.Errorf("first element name = %q", elements[0].Name)
	}
	if !strings.HasPrefix(elements[1].Line2, "2 44714") {
		t.Errorf("second element line 2 = %q", elements[1].Line2)
	}
}

// TestParseElementsSkipsMalformed verifies a damaged group is dropped
// without losing the groups after it.
func TestParseElementsSkipsMalformed(t *testing.T) {
	raw := `BROKEN-SAT
this is not a TLE line
also not a TLE line
STARLINK-1007
1 44713U 19074A   23001.00000000  .00001000  00000-0  70000-4 0  9997
2 44713  53.0551 100.0000 0001000  90.0000 270.0000 15.06000000180000
`
	elements := ParseElements(raw)
	if len(elements) != 1 {
		t.Fatalf("ParseElements() returned %d elements; want 1", len(elements))
	}
	if elements[0].Name != "STARLINK-1007" {
		t.Errorf("surviving element name = %q", elements[0].Name)
	}
}

func TestParseElementsEmpty(t *testing.T) {
	if got := ParseElements(""); len(got) != 0 {
		t.Errorf("ParseElements(\"\") returned %d elements; want 0", len(got))
	}
}

func TestRefreshIfStaleFetchesAndCaches(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(sampleTLE))
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := NewElementStore(srv.URL, dir, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	if err := s.RefreshIfStale(now); err != nil {
		t.Fatalf("RefreshIfStale() failed: %v", err)
	}
	if got := len(s.Elements()); got != 2 {
		t.Fatalf("Elements() has %d entries; want 2", got)
	}
	if !s.LastRefresh().Equal(now) {
		t.Errorf("LastRefresh() = %v; want %v", s.LastRefresh(), now)
	}

	// A second check inside the max age must not refetch.
	if err := s.RefreshIfStale(now.Add(30 * time.Minute)); err != nil {
		t.Fatalf("fresh RefreshIfStale() failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times; want 1", hits)
	}

	// The raw text lands on disk for warm starts.
	b, err := os.ReadFile(filepath.Join(dir, "constellation_tle.txt"))
	if err != nil {
		t.Fatalf("reading disk cache: %v", err)
	}
	if string(b) != sampleTLE {
		t.Error("disk cache does not match fetched text")
	}
}

// TestRefreshFailureKeepsCache verifies a failed refresh is reported but
// leaves the previously fetched sequence readable.
func TestRefreshFailureKeepsCache(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleTLE))
	}))
	defer srv.Close()

	s := NewElementStore(srv.URL, t.TempDir(), time.Hour)
	now := time.Unix(1_700_000_000, 0)

	if err := s.RefreshIfStale(now); err != nil {
		t.Fatalf("initial RefreshIfStale() failed: %v", err)
	}

	healthy = false
	stale := now.Add(2 * time.Hour)
	if err := s.RefreshIfStale(stale); err == nil {
		t.Fatal("stale RefreshIfStale() against a failing server should error")
	}
	if got := len(s.Elements()); got != 2 {
		t.Errorf("failed refresh dropped the cache: %d elements", got)
	}
	if !s.LastRefresh().Equal(now) {
		t.Errorf("failed refresh moved LastRefresh to %v", s.LastRefresh())
	}
}

// TestColdStartFromDisk verifies a fresh store with a recent disk cache
// warm-starts without touching the network.
func TestColdStartFromDisk(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "constellation_tle.txt"), []byte(sampleTLE), 0o644); err != nil {
		t.Fatalf("seeding disk cache: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("cold start with a fresh disk cache must not hit the network")
	}))
	defer srv.Close()

	s := NewElementStore(srv.URL, dir, time.Hour)
	if err := s.RefreshIfStale(time.Now()); err != nil {
		t.Fatalf("RefreshIfStale() failed: %v", err)
	}
	if got := len(s.Elements()); got != 2 {
		t.Errorf("Elements() has %d entries after disk load; want 2", got)
	}
}

func TestForceRefreshCountsElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleTLE))
	}))
	defer srv.Close()

	s := NewElementStore(srv.URL, t.TempDir(), time.Hour)
	n, err := s.ForceRefresh(time.Now())
	if err != nil {
		t.Fatalf("ForceRefresh() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("ForceRefresh() = %d; want 2", n)
	}
}

func TestCacheInfoNeverFetched(t *testing.T) {
	s := NewElementStore("http://unused.invalid", t.TempDir(), time.Hour)
	info := s.CacheInfo(time.Now())
	if fetched, _ := info["fetched"].(bool); fetched {
		t.Error("CacheInfo() reports fetched=true on a cold store")
	}
	if count, _ := info["element_count"].(int); count != 0 {
		t.Errorf("element_count = %v; want 0", info["element_count"])
	}
}
