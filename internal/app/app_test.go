package app

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"reddit-status-alerts/internal/alerting"
	"reddit-status-alerts/internal/config"
	"reddit-status-alerts/internal/fetcher"
	"reddit-status-alerts/internal/poller"
)

type captureNotifier struct {
	notes []alerting.Notification
	err   error
}

func (c *captureNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	c.notes = append(c.notes, note)
	return c.err
}

func testApp() *App {
	return NewApp(&config.Config{}, zerolog.Nop())
}

func degradedSequence() *scriptedStatusFetcher {
	return &scriptedStatusFetcher{summaries: []fetcher.StatusSummary{
		{Description: "All Systems Operational"},
		{Description: "Partial System Outage", Incidents: []fetcher.Incident{{Status: "investigating"}}},
	}}
}

func TestPollOnceAlertCarriesBothStates(t *testing.T) {
	statusPoller := poller.New(degradedSequence(), 288, "Operational", zerolog.Nop())
	notifier := &captureNotifier{}
	a := testApp()

	if err := a.pollOnce(context.Background(), statusPoller, notifier); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	if len(notifier.notes) != 0 {
		t.Fatalf("first cycle must not alert, got %d notifications", len(notifier.notes))
	}

	if err := a.pollOnce(context.Background(), statusPoller, notifier); err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(notifier.notes))
	}

	note := notifier.notes[0]
	if note.Description != "Partial System Outage" {
		t.Fatalf("unexpected description %q", note.Description)
	}
	if note.Previous != "All Systems Operational" {
		t.Fatalf("alert must carry the previous description, got %q", note.Previous)
	}
	if note.Operational {
		t.Fatal("degraded description must not classify as operational")
	}
	if note.OpenIncidents != 1 {
		t.Fatalf("expected 1 open incident, got %d", note.OpenIncidents)
	}
}

func TestPollOnceSwallowsNotifierFailure(t *testing.T) {
	statusPoller := poller.New(degradedSequence(), 288, "Operational", zerolog.Nop())
	notifier := &captureNotifier{err: errors.New("delivery failed")}
	a := testApp()

	if err := a.pollOnce(context.Background(), statusPoller, notifier); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	if err := a.pollOnce(context.Background(), statusPoller, notifier); err != nil {
		t.Fatalf("notifier failure must not surface from the poll cycle: %v", err)
	}
	if got := len(statusPoller.History()); got != 2 {
		t.Fatalf("history must keep both snapshots despite delivery failure, got %d", got)
	}
}
