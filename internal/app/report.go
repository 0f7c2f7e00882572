package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Report fetches the current report series and prints it.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	aggregator := a.newAggregator()
	series, source := aggregator.FetchSeries(ctx, a.Config.Search.Phrases)

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"source": source,
			"series": series,
		})
	}

	if series.AllZero() {
		fmt.Fprintf(os.Stdout, "no reports in the last 24h (source: %s)\n", source)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Hour (UTC)\tReports")
	for _, bucket := range series {
		fmt.Fprintf(writer, "%s\t%d\n", bucket.HourStart.Format(time.RFC3339), bucket.Count)
	}
	fmt.Fprintf(writer, "total\t%d\n", series.Total())
	return writer.Flush()
}

// Status fetches the status document once and prints the snapshot.
func (a *App) Status(ctx context.Context) error {
	statusPoller := a.newPoller()

	snap, _, err := statusPoller.Poll(ctx)
	if err != nil {
		return fmt.Errorf("fetch status: %w", err)
	}

	state := "degraded"
	if statusPoller.Operational(snap.Description) {
		state = "operational"
	}

	fmt.Fprintf(os.Stdout, "state: %s\ndescription: %s\nopen incidents: %d\nobserved: %s\n",
		state, snap.Description, snap.OpenIncidents, snap.ObservedAt.Format(time.RFC3339))
	return nil
}
