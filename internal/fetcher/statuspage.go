package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// StatusPageOptions parameterise the status document fetcher.
type StatusPageOptions struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// StatusPage fetches the canonical status summary document.
type StatusPage struct {
	opts   StatusPageOptions
	logger zerolog.Logger
	client *http.Client
}

// NewStatusPage constructs a status document fetcher.
func NewStatusPage(opts StatusPageOptions, logger zerolog.Logger) *StatusPage {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if opts.URL == "" {
		opts.URL = "https://www.redditstatus.com/api/v2/summary.json"
	}

	return &StatusPage{
		opts:   opts,
		logger: logger.With().Str("component", "status_page").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchStatus retrieves and decodes the status summary. Unlike the search
// clients it returns errors: the poller decides whether to skip the cycle.
func (s *StatusPage) FetchStatus(ctx context.Context) (StatusSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.URL, nil)
	if err != nil {
		return StatusSummary{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(s.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return StatusSummary{}, fmt.Errorf("fetch status summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusSummary{}, fmt.Errorf("status endpoint rejected request: %d", resp.StatusCode)
	}

	var payload struct {
		Status struct {
			Description string `json:"description"`
		} `json:"status"`
		Incidents []struct {
			Status string `json:"status"`
		} `json:"incidents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return StatusSummary{}, fmt.Errorf("decode status summary: %w", err)
	}

	summary := StatusSummary{Description: payload.Status.Description}
	for _, inc := range payload.Incidents {
		summary.Incidents = append(summary.Incidents, Incident{Status: inc.Status})
	}
	return summary, nil
}

var _ StatusFetcher = (*StatusPage)(nil)
