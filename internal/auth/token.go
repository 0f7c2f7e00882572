package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// expirySkew is subtracted from the nominal token lifetime so a token is
// refreshed before it can expire mid-request.
const expirySkew = 60 * time.Second

// Options parameterise the token source.
type Options struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	UserAgent    string
	Timeout      time.Duration
}

// TokenSource acquires and caches a bearer token via the client-credentials
// grant. The cached slot is shared across concurrent report requests and is
// guarded by a mutex so callers never observe a half-written token/expiry pair.
type TokenSource struct {
	opts   Options
	logger zerolog.Logger
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource constructs a token source.
func NewTokenSource(opts Options, logger zerolog.Logger) *TokenSource {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if opts.TokenURL == "" {
		opts.TokenURL = "https://www.reddit.com/api/v1/access_token"
	}

	return &TokenSource{
		opts:   opts,
		logger: logger.With().Str("component", "token_source").Logger(),
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// Configured reports whether client credentials are present.
func (t *TokenSource) Configured() bool {
	return t.opts.ClientID != "" && t.opts.ClientSecret != ""
}

// Token returns a valid bearer token, refreshing it when the cached one is
// within the skew window of expiry. It returns "" without error when no
// credentials are configured; callers skip the authenticated source in that
// case. Refresh failures are returned to the caller, which decides the retry
// policy.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	if !t.Configured() {
		return "", nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expires.Add(-expirySkew)) {
		return t.token, nil
	}

	token, expiresIn, err := t.exchange(ctx)
	if err != nil {
		return "", err
	}

	t.token = token
	t.expires = t.now().Add(expiresIn)
	t.logger.Debug().Time("expires", t.expires).Msg("token refreshed")
	return t.token, nil
}

func (t *TokenSource) exchange(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{"grant_type": []string{"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.SetBasicAuth(t.opts.ClientID, t.opts.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if ua := strings.TrimSpace(t.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, &GrantError{Status: resp.StatusCode}
	}

	var grant struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return "", 0, err
	}
	if grant.AccessToken == "" {
		return "", 0, &GrantError{Status: resp.StatusCode}
	}

	expiresIn := time.Duration(grant.ExpiresIn * float64(time.Second))
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return grant.AccessToken, expiresIn, nil
}

// GrantError marks a rejected credential exchange.
type GrantError struct {
	Status int
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("auth: credential grant rejected with status %d", e.Status)
}
