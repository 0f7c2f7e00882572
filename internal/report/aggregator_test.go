package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reddit-status-alerts/internal/fetcher"
)

type stubOAuth struct {
	items []fetcher.RawItem
	err   error
	calls int
}

func (s *stubOAuth) Search(ctx context.Context, types []fetcher.ItemType, phrases []string, start, end time.Time) ([]fetcher.RawItem, error) {
	s.calls++
	return s.items, s.err
}

type stubPublic struct {
	items []fetcher.RawItem
	calls int
}

func (s *stubPublic) Search(ctx context.Context, phrases []string) []fetcher.RawItem {
	s.calls++
	return s.items
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 2, 15, 7, 0, 0, time.UTC)
}

func newTestAggregator(oauth *stubOAuth, public *stubPublic) *Aggregator {
	a := NewAggregator(oauth, public, zerolog.Nop())
	a.now = fixedNow
	return a
}

func TestAggregatorPrefersAuthenticatedSource(t *testing.T) {
	oauth := &stubOAuth{items: []fetcher.RawItem{{CreatedAt: fixedNow().Add(-time.Hour)}}}
	public := &stubPublic{items: []fetcher.RawItem{{CreatedAt: fixedNow()}}}

	series, source := newTestAggregator(oauth, public).FetchSeries(context.Background(), []string{"down"})

	if source != SourceOAuth {
		t.Fatalf("expected oauth source, got %s", source)
	}
	if public.calls != 0 {
		t.Fatalf("public fallback must not run when oauth returned data, ran %d times", public.calls)
	}
	if got := series.Total(); got != 1 {
		t.Fatalf("expected 1 item in the series, got %d", got)
	}
}

func TestAggregatorFallsBackOnEmpty(t *testing.T) {
	oauth := &stubOAuth{}
	public := &stubPublic{items: []fetcher.RawItem{{CreatedAt: fixedNow().Add(-2 * time.Hour)}}}

	series, source := newTestAggregator(oauth, public).FetchSeries(context.Background(), []string{"down"})

	if source != SourcePublic {
		t.Fatalf("expected public source, got %s", source)
	}
	if public.calls != 1 {
		t.Fatalf("public fallback must run exactly once, ran %d times", public.calls)
	}
	if got := series.Total(); got != 1 {
		t.Fatalf("expected 1 item in the series, got %d", got)
	}
}

func TestAggregatorFallsBackOnError(t *testing.T) {
	oauth := &stubOAuth{err: errors.New("boom")}
	public := &stubPublic{items: []fetcher.RawItem{{CreatedAt: fixedNow().Add(-3 * time.Hour)}}}

	_, source := newTestAggregator(oauth, public).FetchSeries(context.Background(), []string{"down"})

	if source != SourcePublic {
		t.Fatalf("expected public source after oauth error, got %s", source)
	}
	if public.calls != 1 {
		t.Fatalf("public fallback must run exactly once, ran %d times", public.calls)
	}
}

func TestAggregatorBothEmptyYieldsZeroedSeries(t *testing.T) {
	oauth := &stubOAuth{}
	public := &stubPublic{}

	series, source := newTestAggregator(oauth, public).FetchSeries(context.Background(), []string{"down"})

	if source != SourceNone {
		t.Fatalf("expected none source, got %s", source)
	}
	if len(series) != 25 {
		t.Fatalf("expected a well-formed 25-point series, got %d points", len(series))
	}
	if !series.AllZero() {
		t.Fatal("expected an all-zero series")
	}
}
