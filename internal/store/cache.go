// Package store provides a SQLite-backed cache of dashboard snapshots and
// a log of fetch outcomes.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/theirongolddev/odash/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNoSnapshot is returned by LoadSnapshot when a lane has never been saved.
var ErrNoSnapshot = errors.New("store: no snapshot")

const timeLayout = time.RFC3339Nano

// Cache is the snapshot database.
type Cache struct {
	db *sql.DB
}

// FetchRecord is one row of the fetch log.
type FetchRecord struct {
	Lane     model.Lane    `json:"lane"`
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration_ns"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
}

// CacheDir returns the cache directory, honouring XDG_CACHE_HOME.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "odash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "odash")
}

// CachePath returns the default database path.
func CachePath() string {
	return filepath.Join(CacheDir(), "snapshots.db")
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveSnapshot replaces the stored payload of a lane.
func (c *Cache) SaveSnapshot(lane model.Lane, payload any, at time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s snapshot: %w", lane, err)
	}

	_, err = c.db.Exec(`INSERT OR REPLACE INTO lane_snapshots (lane, payload, item_count, fetched_at)
		VALUES (?, ?, ?, ?)`,
		string(lane), string(raw), itemCount(payload), at.UTC().Format(timeLayout),
	)
	return err
}

// LoadSnapshot decodes the stored payload of a lane into dst and returns
// when it was fetched.
func (c *Cache) LoadSnapshot(lane model.Lane, dst any) (time.Time, error) {
	var raw, at string
	err := c.db.QueryRow("SELECT payload, fetched_at FROM lane_snapshots WHERE lane = ?", string(lane)).
		Scan(&raw, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, err
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return time.Time{}, fmt.Errorf("decoding %s snapshot: %w", lane, err)
	}
	fetchedAt, _ := time.Parse(timeLayout, at)
	return fetchedAt, nil
}

// RecordFetch appends a fetch outcome to the log.
func (c *Cache) RecordFetch(lane model.Lane, at time.Time, dur time.Duration, fetchErr error) error {
	ok := 1
	var msg sql.NullString
	if fetchErr != nil {
		ok = 0
		msg = sql.NullString{String: fetchErr.Error(), Valid: true}
	}

	_, err := c.db.Exec(`INSERT INTO fetch_log (lane, fetched_at, duration_ms, ok, error)
		VALUES (?, ?, ?, ?, ?)`,
		string(lane), at.UTC().Format(timeLayout), dur.Milliseconds(), ok, msg,
	)
	return err
}

// RecentFetches returns up to limit fetch records, newest first.
func (c *Cache) RecentFetches(limit int) ([]FetchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.db.Query(`SELECT lane, fetched_at, duration_ms, ok, error
		FROM fetch_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []FetchRecord
	for rows.Next() {
		var (
			lane, at string
			ms       int64
			ok       int
			msg      sql.NullString
		)
		if err := rows.Scan(&lane, &at, &ms, &ok, &msg); err != nil {
			return nil, err
		}
		r := FetchRecord{
			Lane:     model.Lane(lane),
			Duration: time.Duration(ms) * time.Millisecond,
			OK:       ok != 0,
		}
		r.At, _ = time.Parse(timeLayout, at)
		if msg.Valid {
			r.Error = msg.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SnapshotCount returns the number of lanes with a stored snapshot.
func (c *Cache) SnapshotCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM lane_snapshots").Scan(&count)
	return count, err
}

// itemCount is the length of a slice payload, or of its Data field for
// wrapped datasets like model.ReplyRateStats.
func itemCount(payload any) int {
	v := reflect.ValueOf(payload)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return v.Len()
	case reflect.Struct:
		if f := v.FieldByName("Data"); f.IsValid() && f.Kind() == reflect.Slice {
			return f.Len()
		}
	}
	return 0
}
