package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PublicOptions parameterise the unauthenticated fallback client.
type PublicOptions struct {
	SearchURL string
	UserAgent string
	Limit     int
	Timeout   time.Duration
}

// PublicSearch is the last-resort search source: one unauthenticated request
// over the trailing day, no pagination. It never surfaces errors; the
// fallback chain needs "no data", not a failure.
type PublicSearch struct {
	opts   PublicOptions
	logger zerolog.Logger
	client *http.Client
}

// NewPublicSearch constructs the fallback search client.
func NewPublicSearch(opts PublicOptions, logger zerolog.Logger) *PublicSearch {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if opts.SearchURL == "" {
		opts.SearchURL = "https://www.reddit.com/search.json"
	}
	if opts.Limit <= 0 {
		opts.Limit = 250
	}

	return &PublicSearch{
		opts:   opts,
		logger: logger.With().Str("component", "public_search").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Search issues a single last-24h query for the given phrases.
func (p *PublicSearch) Search(ctx context.Context, phrases []string) []RawItem {
	quoted := make([]string, len(phrases))
	for i, phrase := range phrases {
		quoted[i] = `"` + phrase + `"`
	}

	params := url.Values{}
	params.Set("q", "("+strings.Join(quoted, " OR ")+")")
	params.Set("sort", "new")
	params.Set("t", "day")
	params.Set("limit", strconv.Itoa(p.opts.Limit))
	params.Set("restrict_sr", "0")
	params.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.SearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(p.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn().Err(err).Msg("public search request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn().Int("status", resp.StatusCode).Msg("public search rejected")
		return nil
	}

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		p.logger.Warn().Err(err).Msg("public search returned malformed payload")
		return nil
	}

	return payload.rawItems()
}

var _ PublicSearcher = (*PublicSearch)(nil)
