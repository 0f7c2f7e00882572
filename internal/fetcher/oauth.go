package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TokenProvider supplies a bearer token for the authenticated source. An empty
// token with a nil error means credentials are not configured.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// OAuthOptions parameterise the authenticated search client.
type OAuthOptions struct {
	SearchURL string
	UserAgent string
	PageLimit int
	MaxPages  int
	Timeout   time.Duration
}

// OAuthSearch queries the authenticated search endpoint with cloudsearch
// syntax, following the continuation cursor up to a fixed page cap per item
// type.
type OAuthSearch struct {
	opts   OAuthOptions
	tokens TokenProvider
	logger zerolog.Logger
	client *http.Client
}

// NewOAuthSearch constructs an authenticated search client.
func NewOAuthSearch(opts OAuthOptions, tokens TokenProvider, logger zerolog.Logger) *OAuthSearch {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if opts.SearchURL == "" {
		opts.SearchURL = "https://oauth.reddit.com/search"
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 100
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 6
	}

	return &OAuthSearch{
		opts:   opts,
		tokens: tokens,
		logger: logger.With().Str("component", "oauth_search").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Search runs one paginated query per item type over [start, end]. Item types
// fail independently; whatever pages succeeded are still returned. Without a
// usable credential the result is empty and the caller falls back to the
// public source.
func (o *OAuthSearch) Search(ctx context.Context, types []ItemType, phrases []string, start, end time.Time) ([]RawItem, error) {
	token, err := o.tokens.Token(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("token unavailable; skipping authenticated search")
		return nil, nil
	}
	if token == "" {
		return nil, nil
	}

	query := buildCloudsearchQuery(phrases, start, end)

	var items []RawItem
	for _, itemType := range types {
		items = append(items, o.searchType(ctx, token, itemType, query)...)
	}
	return items, nil
}

func (o *OAuthSearch) searchType(ctx context.Context, token string, itemType ItemType, query string) []RawItem {
	var items []RawItem
	after := ""
	for page := 0; page < o.opts.MaxPages; page++ {
		listing, ok := o.fetchPage(ctx, token, itemType, query, after)
		if !ok {
			break
		}
		items = append(items, listing.items...)
		if listing.after == "" {
			break
		}
		after = listing.after
	}
	return items
}

type listingPage struct {
	items []RawItem
	after string
}

func (o *OAuthSearch) fetchPage(ctx context.Context, token string, itemType ItemType, query, after string) (listingPage, bool) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("syntax", "cloudsearch")
	params.Set("sort", "new")
	params.Set("limit", strconv.Itoa(o.opts.PageLimit))
	params.Set("type", string(itemType))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.opts.SearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return listingPage{}, false
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(o.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Warn().Err(err).Str("type", string(itemType)).Msg("authenticated search request failed")
		return listingPage{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.logger.Warn().Int("status", resp.StatusCode).Str("type", string(itemType)).Msg("authenticated search rejected")
		return listingPage{}, false
	}

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		o.logger.Warn().Err(err).Str("type", string(itemType)).Msg("authenticated search returned malformed payload")
		return listingPage{}, false
	}

	return listingPage{items: payload.rawItems(), after: payload.Data.After}, true
}

// buildCloudsearchQuery joins exact-phrase clauses with an inclusive
// epoch-seconds range, e.g.
// ("a" OR "b") AND timestamp:1700000000..1700086400.
func buildCloudsearchQuery(phrases []string, start, end time.Time) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = `"` + p + `"`
	}
	return fmt.Sprintf("(%s) AND timestamp:%d..%d", strings.Join(quoted, " OR "), start.Unix(), end.Unix())
}

// listingResponse mirrors the upstream listing envelope. Children carry an
// epoch-seconds created_utc; everything else is opaque.
type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
		After string `json:"after"`
	} `json:"data"`
}

func (l listingResponse) rawItems() []RawItem {
	items := make([]RawItem, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Data.CreatedUTC == 0 {
			continue
		}
		sec := int64(child.Data.CreatedUTC)
		nsec := int64((child.Data.CreatedUTC - float64(sec)) * float64(time.Second))
		items = append(items, RawItem{CreatedAt: time.Unix(sec, nsec).UTC()})
	}
	return items
}

var _ AuthenticatedSearcher = (*OAuthSearch)(nil)
