package fetcher

import (
	"context"
	"time"
)

// RawItem is a single phrase-matching post or comment. Only the creation time
// matters to the report engine; everything else in the upstream payload is
// ignored.
type RawItem struct {
	CreatedAt time.Time
}

// ItemType selects which listing kind an authenticated search targets.
type ItemType string

const (
	ItemLink    ItemType = "link"
	ItemSelf    ItemType = "self"
	ItemComment ItemType = "comment"
)

// ReportItemTypes is the standard set queried for the report series.
var ReportItemTypes = []ItemType{ItemLink, ItemSelf, ItemComment}

// AuthenticatedSearcher queries the authenticated search endpoint over an
// explicit time window. An empty result with a nil error means "nothing found
// or source unavailable"; the aggregator treats both as a fallback trigger.
type AuthenticatedSearcher interface {
	Search(ctx context.Context, types []ItemType, phrases []string, start, end time.Time) ([]RawItem, error)
}

// PublicSearcher queries the unauthenticated search endpoint over the trailing
// day. It never returns an error; failures degrade to an empty result.
type PublicSearcher interface {
	Search(ctx context.Context, phrases []string) []RawItem
}

// StatusFetcher retrieves the canonical status document.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (StatusSummary, error)
}

// StatusSummary is the decoded status document.
type StatusSummary struct {
	Description string
	Incidents   []Incident
}

// Incident is a single tracked incident from the status document.
type Incident struct {
	Status string
}

// OpenIncidents counts incidents not yet resolved.
func (s StatusSummary) OpenIncidents() int {
	open := 0
	for _, inc := range s.Incidents {
		if inc.Status != "resolved" {
			open++
		}
	}
	return open
}
