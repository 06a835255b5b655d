// Package polygon reads daily aggregates from the Polygon REST API.
package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"monthly-ohlcv/internal/model"
)

const (
	defaultBaseURL = "https://api.polygon.io"

	// Max 50k results per request
	maxLimit = 50000

	// KeyCooldown: Polygon 5 req/min => 12s between requests per key
	KeyCooldown = 12 * time.Second

	maxRetries        = 3
	defaultRetryDelay = 15 * time.Second
)

// Options configures a Source. Zero durations take the defaults above;
// a zero To means today and a zero From means two years before To.
type Options struct {
	APIKeys    []string
	Tickers    []string
	From       time.Time
	To         time.Time
	BaseURL    string
	Cooldown   time.Duration
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// Source is a DataSource over Polygon daily aggregates. API keys are handed
// out through a channel pool; a key goes back to the pool Cooldown after its
// last request.
type Source struct {
	opts    Options
	client  *http.Client
	keyPool chan string
}

// NewSource validates opts and builds the key pool.
func NewSource(opts Options) (*Source, error) {
	if len(opts.APIKeys) == 0 {
		return nil, errors.New("POLYGON_API_KEY or POLYGON_API_KEYS not set")
	}
	if len(opts.Tickers) == 0 {
		return nil, errors.New("polygon source needs a tickers file")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = KeyCooldown
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.To.IsZero() {
		opts.To = model.DateOf(time.Now())
	}
	if opts.From.IsZero() {
		opts.From = opts.To.AddDate(-2, 0, 0)
	}
	if opts.From.After(opts.To) {
		return nil, fmt.Errorf("from %s is after to %s", opts.From.Format("2006-01-02"), opts.To.Format("2006-01-02"))
	}

	client := opts.HTTPClient
	if client == nil {
		client = newHTTPClient()
	}
	pool := make(chan string, len(opts.APIKeys))
	for _, k := range opts.APIKeys {
		pool <- k
	}
	return &Source{opts: opts, client: client, keyPool: pool}, nil
}

// GetName returns provider name
func (s *Source) GetName() string { return "Polygon" }

// Close is a no-op; pending key returns finish on their own.
func (s *Source) Close() error { return nil }

// Instruments returns the configured tickers.
func (s *Source) Instruments(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.opts.Tickers...), nil
}

// DailyBars fetches the ticker's daily aggregates over [From, To], following next_url.
func (s *Source) DailyBars(ctx context.Context, ticker string) ([]model.DailyBar, error) {
	key, err := s.takeKey(ctx)
	if err != nil {
		return nil, err
	}
	defer s.returnKey(key)

	var out []model.DailyBar
	next := s.dailyAggregatesURL(ticker)
	for page := 1; next != ""; page++ {
		if page > 1 {
			if err := sleepCtx(ctx, s.opts.Cooldown); err != nil {
				return nil, err
			}
		}
		resp, err := s.doAggregatesRequest(ctx, next, key)
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %w", ticker, page, err)
		}
		if resp == nil {
			slog.Debug("polygon delayed, skipping rest", "ticker", ticker, "page", page)
			break
		}
		for _, br := range resp.Results {
			out = append(out, br.dailyBar(ticker))
		}
		slog.Debug("polygon page", "ticker", ticker, "page", page, "bars", len(resp.Results), "key", keyPrefix(key))
		next = resp.NextURL
	}
	return out, nil
}

func (s *Source) takeKey(ctx context.Context) (string, error) {
	select {
	case k := <-s.keyPool:
		return k, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Source) returnKey(key string) {
	time.AfterFunc(s.opts.Cooldown, func() { s.keyPool <- key })
}

// dailyAggregatesURL builds the first-page URL (adjusted, limit, sort asc) without the key.
func (s *Source) dailyAggregatesURL(ticker string) string {
	q := url.Values{}
	q.Set("adjusted", "true")
	q.Set("limit", strconv.Itoa(maxLimit))
	q.Set("sort", "asc")
	return fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?%s",
		s.opts.BaseURL, url.PathEscape(ticker),
		s.opts.From.Format("2006-01-02"), s.opts.To.Format("2006-01-02"), q.Encode())
}

func withKey(rawURL, apiKey string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// doAggregatesRequest runs one GET request with retries on transport errors, 429 and bad JSON.
// Returns (nil, nil) when status is DELAYED; (nil, err) on error; (resp, nil) on success.
func (s *Source) doAggregatesRequest(ctx context.Context, rawURL, apiKey string) (*AggregatesResponse, error) {
	target, err := withKey(rawURL, apiKey)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, s.opts.RetryDelay); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("API call failed: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("API rate limit (429): %s", string(body))
				continue
			}
			return nil, fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
		}

		var result AggregatesResponse
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("parse JSON: %w", err)
			continue
		}

		switch result.Status {
		case "OK":
			return &result, nil
		case "DELAYED":
			return nil, nil
		default:
			return nil, fmt.Errorf("API status not OK: %s", result.Status)
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func keyPrefix(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
