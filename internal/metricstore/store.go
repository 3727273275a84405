// Package metricstore persists Debugger metric samples to disk, grounded
// on `internal/database/database.go`'s database/sql usage. A debugging
// session's in-memory MetricTracker only lives as long as the process; a
// store lets `hydro debug --metrics-db` carry samples across runs for
// trend comparison.
package metricstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"hydro/internal/hydro"
)

// Store wraps a sqlite-backed table of recorded instruction/function
// timing samples.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a sqlite database at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("metricstore: opening %s: %w", path, err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			fingerprint TEXT NOT NULL,
			name TEXT NOT NULL,
			count INTEGER NOT NULL,
			total_ns INTEGER NOT NULL,
			min_ns INTEGER NOT NULL,
			q1_ns INTEGER NOT NULL,
			median_ns INTEGER NOT NULL,
			q3_ns INTEGER NOT NULL,
			max_ns INTEGER NOT NULL,
			mean_ns INTEGER NOT NULL,
			stddev_ns INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_samples_fingerprint ON samples(fingerprint, name);
	`)
	if err != nil {
		return fmt.Errorf("metricstore: migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record snapshots every fingerprint/name pair currently held by tracker
// and inserts one row per pair, stamped with recordedAt (passed in rather
// than taken from time.Now so a batch of runs can share one timestamp).
func (s *Store) Record(tracker *hydro.MetricTracker, recordedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("metricstore: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO samples (
			recorded_at, fingerprint, name, count, total_ns, min_ns, q1_ns,
			median_ns, q3_ns, max_ns, mean_ns, stddev_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("metricstore: preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, fingerprint := range tracker.Fingerprints() {
		for _, name := range tracker.Names(fingerprint) {
			stats, ok := tracker.GetResults(fingerprint, name)
			if !ok {
				continue
			}
			_, err := stmt.Exec(
				recordedAt.Unix(), fingerprint, name, stats.Count,
				stats.Total.Nanoseconds(), stats.Min.Nanoseconds(), stats.Q1.Nanoseconds(),
				stats.Median.Nanoseconds(), stats.Q3.Nanoseconds(), stats.Max.Nanoseconds(),
				stats.Mean.Nanoseconds(), stats.StandardDeviation.Nanoseconds(),
			)
			if err != nil {
				return fmt.Errorf("metricstore: inserting sample %s/%s: %w", fingerprint, name, err)
			}
		}
	}

	return tx.Commit()
}

// Sample is one historical row read back by History.
type Sample struct {
	RecordedAt time.Time
	Fingerprint string
	Name       string
	Count      int
	Total      time.Duration
	Mean       time.Duration
}

// History returns every recorded sample for a given fingerprint/name pair,
// oldest first, used to chart a function's timing trend across runs.
func (s *Store) History(fingerprint, name string) ([]Sample, error) {
	rows, err := s.db.Query(`
		SELECT recorded_at, fingerprint, name, count, total_ns, mean_ns
		FROM samples WHERE fingerprint = ? AND name = ?
		ORDER BY recorded_at ASC
	`, fingerprint, name)
	if err != nil {
		return nil, fmt.Errorf("metricstore: querying history: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var recordedAtUnix, totalNs, meanNs int64
		var sample Sample
		if err := rows.Scan(&recordedAtUnix, &sample.Fingerprint, &sample.Name, &sample.Count, &totalNs, &meanNs); err != nil {
			return nil, fmt.Errorf("metricstore: scanning row: %w", err)
		}
		sample.RecordedAt = time.Unix(recordedAtUnix, 0)
		sample.Total = time.Duration(totalNs)
		sample.Mean = time.Duration(meanNs)
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}
