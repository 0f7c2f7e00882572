package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"reddit-status-alerts/internal/fetcher"
	"reddit-status-alerts/internal/metrics"
)

// Source names which search source produced a report. It is the internal
// health signal distinguishing a genuinely quiet day from a total source
// outage; the series itself looks the same in both cases.
type Source string

const (
	SourceOAuth  Source = "oauth"
	SourcePublic Source = "public"
	SourceNone   Source = "none"
)

// Aggregator orchestrates the search sources with a fixed fallback order and
// buckets the combined result into a dense hourly series.
type Aggregator struct {
	oauth  fetcher.AuthenticatedSearcher
	public fetcher.PublicSearcher
	logger zerolog.Logger
	now    func() time.Time
}

// NewAggregator constructs a report aggregator.
func NewAggregator(oauth fetcher.AuthenticatedSearcher, public fetcher.PublicSearcher, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		oauth:  oauth,
		public: public,
		logger: logger.With().Str("component", "report_aggregator").Logger(),
		now:    time.Now,
	}
}

// FetchSeries builds the trailing-24h report series for the given phrases.
// The authenticated source is tried first; on an empty or failed result the
// public fallback runs once. Source failures are absorbed: the worst case is
// a fully-zeroed series tagged SourceNone, never an error.
func (a *Aggregator) FetchSeries(ctx context.Context, phrases []string) (Series, Source) {
	now := a.now()
	end := now.UTC().Truncate(time.Hour)
	start := end.Add(-windowHours * time.Hour)

	source := SourceOAuth
	items, err := a.oauth.Search(ctx, fetcher.ReportItemTypes, phrases, start, end)
	if err != nil {
		a.logger.Warn().Err(err).Msg("authenticated search failed")
		items = nil
	}

	if len(items) == 0 {
		metrics.FallbackActivations.Inc()
		source = SourcePublic
		items = a.public.Search(ctx, phrases)
	}
	if len(items) == 0 {
		source = SourceNone
	}

	metrics.SearchResults.WithLabelValues(string(source)).Inc()
	metrics.ReportItems.Set(float64(len(items)))

	a.logger.Debug().Int("items", len(items)).Str("source", string(source)).Msg("report series assembled")
	return Bucketize(now, items), source
}
