package app

import (
	"context"
	"errors"
	"time"

	"reddit-status-alerts/internal/alerting"
	"reddit-status-alerts/internal/fetcher"
	"reddit-status-alerts/internal/poller"
)

// SimulateAlert drives a poller through an operational-to-degraded transition
// against a canned status source and dispatches the resulting alert, so
// delivery can be verified without waiting for a real incident.
func (a *App) SimulateAlert(ctx context.Context, description string) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	if description == "" {
		description = "Partial Outage (simulated)"
	}

	source := &scriptedStatusFetcher{summaries: []fetcher.StatusSummary{
		{Description: a.Config.Poller.OperationalMarker},
		{Description: description, Incidents: []fetcher.Incident{{Status: "investigating"}}},
	}}

	statusPoller := poller.New(source, a.Config.Poller.HistorySize, a.Config.Poller.OperationalMarker, a.Logger)

	if _, _, err := statusPoller.Poll(ctx); err != nil {
		return err
	}
	snap, transition, err := statusPoller.Poll(ctx)
	if err != nil {
		return err
	}
	if !transition.Changed {
		return errors.New("simulated sequence did not transition")
	}

	return notifier.Notify(ctx, alerting.Notification{
		Description:   snap.Description,
		Previous:      transition.Previous,
		Operational:   statusPoller.Operational(snap.Description),
		OpenIncidents: snap.OpenIncidents,
		ObservedAt:    time.Now().UTC(),
	})
}

type scriptedStatusFetcher struct {
	summaries []fetcher.StatusSummary
	next      int
}

func (s *scriptedStatusFetcher) FetchStatus(ctx context.Context) (fetcher.StatusSummary, error) {
	if s.next >= len(s.summaries) {
		return s.summaries[len(s.summaries)-1], nil
	}
	summary := s.summaries[s.next]
	s.next++
	return summary, nil
}

var _ fetcher.StatusFetcher = (*scriptedStatusFetcher)(nil)
