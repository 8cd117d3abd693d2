// Package sky answers the "what is overhead" questions: it caches the
// constellation's orbital element sets, estimates which satellite is
// serving the link, and counts down to the next scheduled handover.
package sky

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const tleCacheFile = "constellation_tle.txt"

// Element is one satellite's two-line element set plus its catalog name.
// The lines are opaque here; propagation happens in visibility.go.
type Element struct {
	Name  string `json:"name"`
	Line1 string `json:"-"`
	Line2 string `json:"-"`
}

// ElementStore caches the most recently fetched element sequence. The
// sequence is replaced as a unit on a successful refresh and left alone on
// failure, so readers always see a complete, possibly stale, set. A disk
// copy under dataRoot lets the daemon warm-start without a network fetch.
type ElementStore struct {
	url      string
	dataRoot string
	maxAge   time.Duration

	mu          sync.RWMutex
	elements    []Element
	lastRefresh time.Time

	client *http.Client
}

// NewElementStore returns a store fetching from url and caching on disk
// under dataRoot, considering the cache stale after maxAge.
func NewElementStore(url, dataRoot string, maxAge time.Duration) *ElementStore {
	return &ElementStore{
		url:      url,
		dataRoot: dataRoot,
		maxAge:   maxAge,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Elements returns a snapshot of the cached sequence, empty if nothing has
// ever been fetched. It never blocks on a refresh in progress.
func (s *ElementStore) Elements() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// LastRefresh returns when the cache was last successfully populated.
func (s *ElementStore) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// RefreshIfStale fetches a new element set when the cache is older than
// maxAge. A failed fetch leaves the current sequence and timestamp
// untouched and returns a recoverable error; the next stale check retries.
// On a cold start a fresh-enough disk copy is used before going to the
// network.
func (s *ElementStore) RefreshIfStale(now time.Time) error {
	s.mu.RLock()
	fresh := len(s.elements) > 0 && now.Sub(s.lastRefresh) < s.maxAge
	empty := len(s.elements) == 0
	s.mu.RUnlock()

	if fresh {
		return nil
	}

	// Cold start: a recent disk cache saves the network round trip.
	if empty {
		if loaded, at := s.loadDisk(); loaded != nil && now.Sub(at) < s.maxAge {
			s.replace(loaded, at)
			return nil
		}
	}

	return s.refresh(now)
}

// ForceRefresh fetches from the network regardless of cache age and
// returns the number of elements obtained.
func (s *ElementStore) ForceRefresh(now time.Time) (int, error) {
	if err := s.refresh(now); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements), nil
}

func (s *ElementStore) refresh(now time.Time) error {
	body, err := s.fetch()
	if err != nil {
		// Stale disk data beats an empty cache while the network is out.
		s.mu.RLock()
		empty := len(s.elements) == 0
		s.mu.RUnlock()
		if empty {
			if loaded, at := s.loadDisk(); loaded != nil {
				s.replace(loaded, at)
			}
		}
		return fmt.Errorf("element fetch: %w", err)
	}

	elements := ParseElements(body)
	if len(elements) == 0 {
		return fmt.Errorf("element fetch: no parsable element sets in %d bytes", len(body))
	}

	s.replace(elements, now)

	// Cache write failure is non-fatal; the data is already in memory.
	_ = s.writeDisk(body)
	return nil
}

func (s *ElementStore) replace(elements []Element, at time.Time) {
	s.mu.Lock()
	s.elements = elements
	s.lastRefresh = at
	s.mu.Unlock()
}

func (s *ElementStore) fetch() (string, error) {
	resp, err := s.client.Get(s.url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from element source", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// loadDisk reads the on-disk cache, returning the parsed elements and the
// file's modification time, or nil if unusable.
func (s *ElementStore) loadDisk() ([]Element, time.Time) {
	path := filepath.Join(s.dataRoot, tleCacheFile)
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}
	}
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		return nil, time.Time{}
	}
	elements := ParseElements(string(b))
	if len(elements) == 0 {
		return nil, time.Time{}
	}
	return elements, info.ModTime()
}

// writeDisk atomically writes the raw element text via a temp file and
// rename so readers never see a half-written cache.
func (s *ElementStore) writeDisk(data string) error {
	if err := os.MkdirAll(s.dataRoot, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dataRoot, "tle-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dataRoot, tleCacheFile))
}

// CacheInfo summarizes cache freshness for the control surface.
func (s *ElementStore) CacheInfo(now time.Time) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := map[string]any{
		"source_url":    s.url,
		"element_count": len(s.elements),
		"max_age_s":     int(s.maxAge.Seconds()),
	}
	if s.lastRefresh.IsZero() {
		info["fetched"] = false
	} else {
		info["fetched"] = true
		info["age_s"] = int(now.Sub(s.lastRefresh).Seconds())
		info["refreshed_at"] = s.lastRefresh.UTC().Format(time.RFC3339)
	}
	return info
}

// ParseElements extracts element sets from bulk TLE text in the standard
// 3-line format (name, line 1, line 2) as served by CelesTrak. Malformed
// groups are skipped rather than failing the whole set.
func ParseElements(raw string) []Element {
	var elements []Element
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}

	for i := 0; i+2 < len(lines); {
		name, l1, l2 := lines[i], lines[i+1], lines[i+2]
		if !strings.HasPrefix(l1, "1 ") || !strings.HasPrefix(l2, "2 ") {
			i++
			continue
		}
		elements = append(elements, Element{Name: name, Line1: l1, Line2: l2})
		i += 3
	}
	return elements
}
