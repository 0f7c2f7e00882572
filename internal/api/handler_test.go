package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reddit-status-alerts/internal/fetcher"
	"reddit-status-alerts/internal/poller"
	"reddit-status-alerts/internal/report"
)

type emptyOAuth struct{}

func (emptyOAuth) Search(ctx context.Context, types []fetcher.ItemType, phrases []string, start, end time.Time) ([]fetcher.RawItem, error) {
	return nil, nil
}

type fixedPublic struct{ items []fetcher.RawItem }

func (f fixedPublic) Search(ctx context.Context, phrases []string) []fetcher.RawItem {
	return f.items
}

type fixedStatus struct{ summary fetcher.StatusSummary }

func (f fixedStatus) FetchStatus(ctx context.Context) (fetcher.StatusSummary, error) {
	return f.summary, nil
}

func newTestHandler(t *testing.T, items []fetcher.RawItem) (http.Handler, *poller.Poller) {
	t.Helper()
	aggregator := report.NewAggregator(emptyOAuth{}, fixedPublic{items: items}, zerolog.Nop())
	statusPoller := poller.New(fixedStatus{summary: fetcher.StatusSummary{
		Description: "All Systems Operational",
		Incidents:   []fetcher.Incident{{Status: "resolved"}},
	}}, 288, "Operational", zerolog.Nop())
	return New(aggregator, statusPoller, []string{"reddit down"}, zerolog.Nop()), statusPoller
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzBeforeAndAfterFirstPoll(t *testing.T) {
	handler, statusPoller := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before the first poll, got %d", rec.Code)
	}

	if _, _, err := statusPoller.Poll(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after the first poll, got %d", rec.Code)
	}
}

func TestReportEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t, []fetcher.RawItem{{CreatedAt: time.Now().UTC().Add(-time.Hour)}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Source string          `json:"source"`
		NoData bool            `json:"no_data"`
		Series []report.Bucket `json:"series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Source != string(report.SourcePublic) {
		t.Fatalf("expected public source, got %q", payload.Source)
	}
	if payload.NoData {
		t.Fatal("expected data to be present")
	}
	if len(payload.Series) != 25 {
		t.Fatalf("expected a 25-point series, got %d", len(payload.Series))
	}
}

func TestStatusEndpoints(t *testing.T) {
	handler, statusPoller := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before the first poll, got %d", rec.Code)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := statusPoller.Poll(context.Background()); err != nil {
			t.Fatalf("poll failed: %v", err)
		}
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status struct {
		Operational bool            `json:"operational"`
		Snapshot    poller.Snapshot `json:"snapshot"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !status.Operational {
		t.Fatal("expected operational status")
	}
	if status.Snapshot.OpenIncidents != 0 {
		t.Fatalf("resolved incidents must not count as open, got %d", status.Snapshot.OpenIncidents)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var history struct {
		Count     int               `json:"count"`
		Snapshots []poller.Snapshot `json:"snapshots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if history.Count != 3 || len(history.Snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got count=%d len=%d", history.Count, len(history.Snapshots))
	}
}

func TestRootLiveness(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("expected plain ok body, got %q", rec.Body.String())
	}
}
