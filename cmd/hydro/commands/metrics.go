// cmd/hydro/commands/metrics.go
package commands

import (
	"fmt"

	"hydro/internal/metricstore"
)

// MetricsCommand prints a fingerprint/name pair's recorded history from a
// metrics database built up across prior `hydro debug --metrics-db` runs.
func MetricsCommand(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("metrics requires DB FINGERPRINT NAME")
	}
	db, fingerprint, name := args[0], args[1], args[2]

	store, err := metricstore.Open(db)
	if err != nil {
		return err
	}
	defer store.Close()

	samples, err := store.History(fingerprint, name)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Printf("no recorded samples for %s/%s\n", fingerprint, name)
		return nil
	}
	for _, s := range samples {
		fmt.Printf("%s  count=%d total=%s mean=%s\n", s.RecordedAt.Format("2006-01-02T15:04:05"), s.Count, s.Total, s.Mean)
	}
	return nil
}
