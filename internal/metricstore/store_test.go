package metricstore

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hydro/internal/hydro"
	"hydro/internal/value"
)

func runAndCollectMetrics(t *testing.T) *hydro.MetricTracker {
	t.Helper()
	fn := hydro.NewFunction("main")
	fn.Body = []hydro.Instruction{
		hydro.PushValue{Value: value.U32(1)},
		hydro.PushValue{Value: value.U32(2)},
		hydro.Add{},
		hydro.Return{},
	}
	mod := hydro.NewModule("main")
	mod.Functions["main"] = fn

	dbg := hydro.NewDebugger(&bytes.Buffer{}, strings.NewReader(""))
	if _, exc := mod.Debug("main", nil, nil, dbg); exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	return dbg.Metrics()
}

func TestRecordAndHistoryRoundTrip(t *testing.T) {
	tracker := runAndCollectMetrics(t)

	path := filepath.Join(t.TempDir(), "metrics.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer store.Close()

	recordedAt := time.Unix(1700000000, 0)
	if err := store.Record(tracker, recordedAt); err != nil {
		t.Fatalf("unexpected error recording: %v", err)
	}

	fingerprints := tracker.Fingerprints()
	if len(fingerprints) == 0 {
		t.Fatal("expected at least one recorded fingerprint")
	}
	fp := fingerprints[0]
	names := tracker.Names(fp)
	if len(names) == 0 {
		t.Fatal("expected at least one recorded metric name")
	}

	history, err := store.History(fp, names[0])
	if err != nil {
		t.Fatalf("unexpected error reading history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one historical sample, got %d", len(history))
	}
	if !history[0].RecordedAt.Equal(recordedAt) {
		t.Fatalf("expected recorded_at %v, got %v", recordedAt, history[0].RecordedAt)
	}
}

func TestHistoryIsEmptyForAnUnknownPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer store.Close()

	history, err := store.History("nope", "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no history for an unrecorded pair, got %v", history)
	}
}

func TestRecordAccumulatesAcrossCalls(t *testing.T) {
	tracker := runAndCollectMetrics(t)
	path := filepath.Join(t.TempDir(), "metrics.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer store.Close()

	if err := store.Record(tracker, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("unexpected error recording: %v", err)
	}
	if err := store.Record(tracker, time.Unix(1700000100, 0)); err != nil {
		t.Fatalf("unexpected error recording: %v", err)
	}

	fp := tracker.Fingerprints()[0]
	name := tracker.Names(fp)[0]
	history, err := store.History(fp, name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 recorded samples across 2 Record calls, got %d", len(history))
	}
}
