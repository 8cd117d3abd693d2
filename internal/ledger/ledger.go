// Package ledger persists the access points this machine has successfully
// joined: BSSID, SSID, the credential that worked, and when it last worked.
// The recovery engine prefers recently successful entries when the link
// drops, so this table is effectively the daemon's long-term memory.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an operation references a BSSID the ledger
// has never seen.
var ErrNotFound = errors.New("ledger: access point not known")

// Record is one remembered access point. Identity is the BSSID in canonical
// uppercase form; LastSuccess is the epoch-seconds timestamp of the most
// recent successful connection through it.
type Record struct {
	BSSID       string
	SSID        string
	Secret      string
	LastSuccess int64
}

// Store is the SQLite-backed connection ledger. Writes are serialized with
// a mutex on top of the driver's own locking so a manual connect action and
// the recovery engine can't interleave partial mutations.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// Open creates (or opens) the ledger database at path. Use ":memory:" for
// tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	// SQLite allows a single writer; keep the pool at one connection so
	// an in-memory database is also a single shared database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SetClock overrides the store's time source. Tests use this to make
// last-success timestamps deterministic.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// CanonicalBSSID normalizes a hardware address to the uppercase form used
// as the primary key.
func CanonicalBSSID(bssid string) string {
	return strings.ToUpper(strings.TrimSpace(bssid))
}

// Upsert inserts or fully replaces the record for bssid, stamping
// last-success with the current time. Calling it twice with the same
// arguments leaves a single row.
func (s *Store) Upsert(bssid, ssid, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO connections (bssid, ssid, password, last_connected)
		 VALUES (?, ?, ?, ?)`,
		CanonicalBSSID(bssid), ssid, secret, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("ledger upsert %s: %w", CanonicalBSSID(bssid), err)
	}
	return nil
}

// Touch refreshes last-success for an existing record without changing the
// stored credential. Returns ErrNotFound if the BSSID is not in the ledger.
func (s *Store) Touch(bssid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE connections SET last_connected = ? WHERE bssid = ?`,
		s.now().Unix(), CanonicalBSSID(bssid),
	)
	if err != nil {
		return fmt.Errorf("ledger touch %s: %w", CanonicalBSSID(bssid), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger touch %s: %w", CanonicalBSSID(bssid), err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSecret returns the stored credential for bssid, or ErrNotFound.
func (s *Store) GetSecret(bssid string) (string, error) {
	var secret string
	err := s.db.QueryRow(
		`SELECT password FROM connections WHERE bssid = ?`,
		CanonicalBSSID(bssid),
	).Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ledger get secret %s: %w", CanonicalBSSID(bssid), err)
	}
	return secret, nil
}

// ListAll returns every record ordered by last-success descending, most
// recent first. Callers receive copies; mutating them does not affect the
// ledger.
func (s *Store) ListAll() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT bssid, ssid, password, last_connected
		 FROM connections ORDER BY last_connected DESC, bssid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.BSSID, &r.SSID, &r.Secret, &r.LastSuccess); err != nil {
			return nil, fmt.Errorf("ledger list scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	return records, nil
}
