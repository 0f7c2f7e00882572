package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"reddit-status-alerts/internal/report"
)

// Export fetches the current report series and renders it as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	aggregator := a.newAggregator()
	series, source := aggregator.FetchSeries(ctx, a.Config.Search.Phrases)

	a.Logger.Info().
		Str("source", string(source)).
		Int("total", series.Total()).
		Msg("exporting report series")

	if opts.CSVPath != "" {
		if err := writeSeriesCSV(opts.CSVPath, series); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := a.writeSeriesPNG(opts.PNGPath, series); err != nil {
			return err
		}
	}

	return nil
}

func writeSeriesCSV(path string, series report.Series) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"hour_start", "count"}); err != nil {
		return err
	}

	for _, bucket := range series {
		record := []string{
			bucket.HourStart.Format(time.RFC3339),
			strconv.Itoa(bucket.Count),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func (a *App) writeSeriesPNG(path string, series report.Series) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(series))
	y := make([]float64, len(series))
	for i, bucket := range series {
		x[i] = bucket.HourStart
		y[i] = float64(bucket.Count)
	}

	graph := chart.Chart{
		Title:  "Reports (24h)",
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
		XAxis: chart.XAxis{
			Name:           "Time (UTC)",
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Reports",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Reports",
				XValues: x,
				YValues: y,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
