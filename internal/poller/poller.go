package poller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reddit-status-alerts/internal/fetcher"
	"reddit-status-alerts/internal/metrics"
)

// Snapshot is one point-in-time observation of the monitored target.
type Snapshot struct {
	Description   string    `json:"description"`
	OpenIncidents int       `json:"open_incidents"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Poller fetches the status document on a cadence, keeps a bounded FIFO
// history of snapshots, and detects description transitions for one-shot
// alerting. The ring and the last-seen description are mutated only by Poll,
// which the run loop invokes sequentially; the mutex exists so HTTP readers
// can take consistent copies while a cycle is in flight.
type Poller struct {
	status fetcher.StatusFetcher
	logger zerolog.Logger
	marker string
	limit  int
	now    func() time.Time

	mu       sync.RWMutex
	history  []Snapshot
	lastDesc string
	seen     bool
}

// New constructs a poller. historySize bounds the ring (288 keeps a day of
// snapshots at the default 5-minute cadence); marker is the substring whose
// presence in the description means "operational".
func New(status fetcher.StatusFetcher, historySize int, marker string, logger zerolog.Logger) *Poller {
	if historySize <= 0 {
		historySize = 288
	}
	if marker == "" {
		marker = "Operational"
	}
	return &Poller{
		status: status,
		logger: logger.With().Str("component", "status_poller").Logger(),
		marker: marker,
		limit:  historySize,
		now:    time.Now,
	}
}

// Transition is the outcome of comparing a poll cycle against the last
// observed description. Previous is set only when Changed is true.
type Transition struct {
	Changed  bool
	Previous string
}

// Poll runs one cycle: fetch, append to history, compare against the last
// observed description. The transition fires only when a previous description
// exists and differs from the new one. A fetch failure skips the cycle
// entirely; no state is mutated and the error is returned for logging.
func (p *Poller) Poll(ctx context.Context) (Snapshot, Transition, error) {
	summary, err := p.status.FetchStatus(ctx)
	if err != nil {
		metrics.PollCycles.WithLabelValues("skipped").Inc()
		return Snapshot{}, Transition{}, err
	}

	snap := Snapshot{
		Description:   summary.Description,
		OpenIncidents: summary.OpenIncidents(),
		ObservedAt:    p.now().UTC(),
	}

	p.mu.Lock()
	p.history = append(p.history, snap)
	if overflow := len(p.history) - p.limit; overflow > 0 {
		p.history = append(p.history[:0], p.history[overflow:]...)
	}

	var transition Transition
	if p.seen && snap.Description != p.lastDesc {
		transition = Transition{Changed: true, Previous: p.lastDesc}
	}
	p.lastDesc = snap.Description
	p.seen = true
	p.mu.Unlock()

	metrics.PollCycles.WithLabelValues("ok").Inc()
	metrics.OpenIncidents.Set(float64(snap.OpenIncidents))
	if transition.Changed {
		metrics.StatusTransitions.Inc()
	}

	return snap, transition, nil
}

// Operational reports whether a description carries the configured marker.
func (p *Poller) Operational(description string) bool {
	return strings.Contains(description, p.marker)
}

// Latest returns the most recent snapshot, if any cycle has completed.
func (p *Poller) Latest() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.history) == 0 {
		return Snapshot{}, false
	}
	return p.history[len(p.history)-1], true
}

// History returns a copy of the bounded snapshot ring, oldest first.
func (p *Poller) History() []Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Snapshot, len(p.history))
	copy(out, p.history)
	return out
}
