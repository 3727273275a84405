package hydro

import (
	"math"
	"sort"
	"sync"
	"time"

	"hydro/internal/value"
)

// MetricTracker records wall-clock durations for named metrics nested under
// a call-stack fingerprint, grounded on `DebugContext`'s
// core_metrics/custom_metrics nested-map bookkeeping in
// `original_source/src/hydro/debugcontext.rs`. Unlike that source (which
// only ever summarizes min/avg/max), GetResults here also computes
// quartiles and standard deviation.
//
// running holds, per (fingerprint, name), a LIFO stack of start times: a
// function that recurses under its own fingerprint (or an instruction that
// somehow re-enters its own tag, e.g. a Call back into the same label)
// opens a second timing without clobbering the first, and stop always
// closes the most recently opened one.
type MetricTracker struct {
	mu      sync.Mutex
	samples map[string]map[string][]time.Duration
	running map[string]map[string][]time.Time
}

func NewMetricTracker() *MetricTracker {
	return &MetricTracker{
		samples: make(map[string]map[string][]time.Duration),
		running: make(map[string]map[string][]time.Time),
	}
}

func (t *MetricTracker) start(fingerprint, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pushLocked(fingerprint, name, time.Now())
}

func (t *MetricTracker) stop(fingerprint, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	started, ok := t.popLocked(fingerprint, name)
	if !ok {
		return
	}
	t.recordLocked(fingerprint, name, time.Since(started))
}

// startAll opens a new timing for name under every fingerprint currently
// tracked, so a caller that wants to time a cross-cutting event (e.g. "the
// console is about to block") doesn't have to enumerate fingerprints itself.
func (t *MetricTracker) startAll(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for fp := range t.running {
		t.pushLocked(fp, name, now)
	}
}

// stopAll closes the most recently opened name timing under every
// fingerprint that has one open, recording each.
func (t *MetricTracker) stopAll(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for fp := range t.running {
		started, ok := t.popLocked(fp, name)
		if !ok {
			continue
		}
		t.recordLocked(fp, name, now.Sub(started))
	}
}

// pauseAll discards every currently in-flight timing, across every
// fingerprint and name, without recording a sample. Used when the
// debugger console itself is open, since time spent waiting on operator
// input must not count toward instruction or call timing. It returns the
// elapsed-so-far duration of each discarded timing, keyed identically to
// running, so resumeAll can restart each one having "lost" none of the
// time it had already accrued.
func (t *MetricTracker) pauseAll() map[string]map[string][]time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	elapsed := make(map[string]map[string][]time.Duration, len(t.running))
	for fp, names := range t.running {
		for name, stack := range names {
			if len(stack) == 0 {
				continue
			}
			durs := make([]time.Duration, len(stack))
			for i, started := range stack {
				durs[i] = now.Sub(started)
			}
			if elapsed[fp] == nil {
				elapsed[fp] = make(map[string][]time.Duration)
			}
			elapsed[fp][name] = durs
		}
	}
	t.running = make(map[string]map[string][]time.Time)
	return elapsed
}

// resumeAll restores the timings pauseAll discarded, backdating each new
// start time by the duration pauseAll reported so the pause itself is
// excluded from the eventual sample.
func (t *MetricTracker) resumeAll(elapsed map[string]map[string][]time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for fp, names := range elapsed {
		for name, durs := range names {
			for _, d := range durs {
				t.pushLocked(fp, name, now.Add(-d))
			}
		}
	}
}

func (t *MetricTracker) pushLocked(fingerprint, name string, startedAt time.Time) {
	if t.running[fingerprint] == nil {
		t.running[fingerprint] = make(map[string][]time.Time)
	}
	t.running[fingerprint][name] = append(t.running[fingerprint][name], startedAt)
}

func (t *MetricTracker) popLocked(fingerprint, name string) (time.Time, bool) {
	stack := t.running[fingerprint][name]
	if len(stack) == 0 {
		return time.Time{}, false
	}
	top := len(stack) - 1
	started := stack[top]
	stack = stack[:top]
	if len(stack) == 0 {
		delete(t.running[fingerprint], name)
		if len(t.running[fingerprint]) == 0 {
			delete(t.running, fingerprint)
		}
	} else {
		t.running[fingerprint][name] = stack
	}
	return started, true
}

func (t *MetricTracker) recordLocked(fingerprint, name string, elapsed time.Duration) {
	if t.samples[fingerprint] == nil {
		t.samples[fingerprint] = make(map[string][]time.Duration)
	}
	t.samples[fingerprint][name] = append(t.samples[fingerprint][name], elapsed)
}

// Stats is the summary recorded per metric.
type Stats struct {
	Count             int
	Total             time.Duration
	Min               time.Duration
	Q1                time.Duration
	Median            time.Duration
	Q3                time.Duration
	Max               time.Duration
	Mean              time.Duration
	StandardDeviation time.Duration
}

// GetResults summarizes every sample recorded for (fingerprint, name). A
// metric with no recorded samples returns ok=false.
func (t *MetricTracker) GetResults(fingerprint, name string) (Stats, bool) {
	t.mu.Lock()
	samples := append([]time.Duration(nil), t.samples[fingerprint][name]...)
	t.mu.Unlock()

	if len(samples) == 0 {
		return Stats{}, false
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	total := sumDurations(samples)
	mean := total / time.Duration(len(samples))

	var variance float64
	for _, s := range samples {
		d := float64(s - mean)
		variance += d * d
	}
	variance /= float64(len(samples))
	stddev := time.Duration(math.Sqrt(variance))

	return Stats{
		Count:             len(samples),
		Total:             total,
		Min:               minDuration(samples),
		Q1:                percentile(samples, 0.25),
		Median:            percentile(samples, 0.5),
		Q3:                percentile(samples, 0.75),
		Max:               maxDuration(samples),
		Mean:              mean,
		StandardDeviation: stddev,
	}, true
}

func sumDurations(sorted []time.Duration) time.Duration {
	var total time.Duration
	for _, s := range sorted {
		total += s
	}
	return total
}

// minDuration and maxDuration fold over the sample set with
// value.MinOrdered/MaxOrdered rather than indexing sorted[0] and
// sorted[len-1] directly, so the bound still comes out right if a future
// caller passes in an unsorted slice.
func minDuration(sorted []time.Duration) time.Duration {
	m := sorted[0]
	for _, s := range sorted[1:] {
		m = value.MinOrdered(m, s)
	}
	return m
}

func maxDuration(sorted []time.Duration) time.Duration {
	m := sorted[0]
	for _, s := range sorted[1:] {
		m = value.MaxOrdered(m, s)
	}
	return m
}

// percentile uses linear interpolation between closest ranks, the
// conventional definition for quartiles over a small, already-sorted
// sample set.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + time.Duration(frac*float64(sorted[hi]-sorted[lo]))
}

// Fingerprints reports every call-stack fingerprint with at least one
// recorded metric, used by the debugger's "metrics" console command to
// list what can be queried.
func (t *MetricTracker) Fingerprints() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.samples))
	for fp := range t.samples {
		out = append(out, fp)
	}
	sort.Strings(out)
	return out
}

// Names reports every metric name recorded under a fingerprint.
func (t *MetricTracker) Names(fingerprint string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.samples[fingerprint]))
	for name := range t.samples[fingerprint] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
