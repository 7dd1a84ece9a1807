package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/external/treasury"
	"github.com/wonny/moatscreen/pkg/httputil"
	"github.com/wonny/moatscreen/pkg/logger"
	"github.com/wonny/moatscreen/pkg/redis"
)

// Client talks to the remote quote service
// ⭐ SSOT: 시세/재무 데이터 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	scraper    *treasury.Client
	logger     *logger.Logger
	baseURL    string
}

var _ contracts.QuoteSource = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithCache caches payloads (TTLMedium) and the treasury rate (TTLLong)
func WithCache(cache *redis.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithTreasuryScraper adds the HTML fallback for the treasury rate
func WithTreasuryScraper(s *treasury.Client) Option {
	return func(c *Client) { c.scraper = s }
}

// NewClient creates a quote client for baseURL (e.g. http://localhost:5000)
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Nop()
	}
	c := &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("quote"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLimiter returns the Redis sliding-window limiter when Redis is on,
// otherwise an in-process token bucket with the same rate.
func NewLimiter(rc *redis.Client, prefix string, perSec int) httputil.Limiter {
	cfg := redis.QuoteRateLimit(perSec)
	if rc != nil && rc.Enabled() {
		return redis.NewRateLimiter(rc, prefix).Bind(cfg)
	}
	return rate.NewLimiter(rate.Limit(cfg.Limit), cfg.Limit)
}

type batchResponse struct {
	Securities []contracts.SecurityPayload `json:"securities"`
}

// rateResponse carries the yield as a fraction (rate) or a percentage (rate_pct)
type rateResponse struct {
	Rate    float64  `json:"rate"`
	RatePct *float64 `json:"rate_pct,omitempty"`
}

// FetchSecurity returns one payload, cached when Redis is on
func (c *Client) FetchSecurity(ctx context.Context, ticker string) (*contracts.SecurityPayload, error) {
	ticker = contracts.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, contracts.ErrEmptyTicker
	}

	fetch := func() (interface{}, error) {
		return c.fetchSecurity(ctx, ticker)
	}

	if c.cache == nil {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.(*contracts.SecurityPayload), nil
	}

	var payload contracts.SecurityPayload
	if err := c.cache.GetOrSet(ctx, redis.SecurityKey(ticker), &payload, redis.TTLMedium, fetch); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) fetchSecurity(ctx context.Context, ticker string) (*contracts.SecurityPayload, error) {
	var payload contracts.SecurityPayload
	endpoint := fmt.Sprintf("%s/api/securities/%s", c.baseURL, url.PathEscape(ticker))
	if err := c.httpClient.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, classify(ticker, err)
	}
	if payload.Ticker == "" {
		payload.Ticker = ticker
	}
	return &payload, nil
}

// FetchSecurities fetches a batch, falling back to per-ticker requests
// when the batch call fails or returns nothing. Unknown tickers are skipped.
func (c *Client) FetchSecurities(ctx context.Context, tickers []string) ([]contracts.SecurityPayload, error) {
	if len(tickers) == 0 {
		return []contracts.SecurityPayload{}, nil
	}

	var batch batchResponse
	endpoint := fmt.Sprintf("%s/api/securities?tickers=%s", c.baseURL, url.QueryEscape(strings.Join(tickers, ",")))
	err := c.httpClient.GetJSON(ctx, endpoint, &batch)
	if err == nil && len(batch.Securities) > 0 {
		c.storeAll(ctx, batch.Securities)
		c.logger.WithFields(map[string]interface{}{
			"requested": len(tickers),
			"received":  len(batch.Securities),
		}).Debug("Fetched securities batch")
		return batch.Securities, nil
	}

	c.logger.WithError(err).WithField("tickers", len(tickers)).Warn("Batch fetch failed, falling back to per-ticker")

	payloads := make([]contracts.SecurityPayload, 0, len(tickers))
	var unavailable error
	for _, t := range tickers {
		p, err := c.FetchSecurity(ctx, t)
		if errors.Is(err, contracts.ErrQuoteNotFound) {
			c.logger.WithTicker(t).Warn("Ticker not found, skipping")
			continue
		}
		if err != nil {
			// 서비스 장애: 한 번 기록 후 나머지 계속 시도
			if unavailable == nil {
				unavailable = err
			}
			continue
		}
		payloads = append(payloads, *p)
	}

	if len(payloads) == 0 && unavailable != nil {
		return nil, unavailable
	}
	return payloads, nil
}

func (c *Client) storeAll(ctx context.Context, payloads []contracts.SecurityPayload) {
	if c.cache == nil {
		return
	}
	for _, p := range payloads {
		if err := c.cache.Set(ctx, redis.SecurityKey(p.Ticker), p, redis.TTLMedium); err != nil {
			c.logger.WithTicker(p.Ticker).WithError(err).Debug("Cache write failed")
		}
	}
}

// FetchTreasuryRate returns the 10-year yield as a fraction.
// Order: cache, JSON API, HTML scraper.
func (c *Client) FetchTreasuryRate(ctx context.Context) (float64, error) {
	if c.cache != nil {
		var cached float64
		if found, err := c.cache.Get(ctx, redis.TreasuryRateKey(), &cached); err == nil && found && cached > 0 {
			return cached, nil
		}
	}

	r, err := c.fetchTreasuryRate(ctx)
	if err != nil && c.scraper.Enabled() {
		c.logger.WithError(err).Warn("Treasury API failed, trying HTML source")
		r, err = c.scraper.FetchRate(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("treasury rate: %w", err)
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, redis.TreasuryRateKey(), r, redis.TTLLong)
	}
	return r, nil
}

func (c *Client) fetchTreasuryRate(ctx context.Context) (float64, error) {
	var body rateResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/api/treasury/10y", &body); err != nil {
		return 0, classify("treasury", err)
	}
	r := body.Rate
	if body.RatePct != nil {
		r = *body.RatePct / 100 // 4.31 → 0.0431
	}
	if r <= 0 || r > treasury.MaxPlausibleRate {
		return 0, fmt.Errorf("invalid treasury rate %v: %w", r, contracts.ErrQuoteUnavailable)
	}
	return r, nil
}

// Status checks the quote service health endpoint
func (c *Client) Status(ctx context.Context) error {
	var body map[string]interface{}
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/api/status", &body); err != nil {
		return classify("status", err)
	}
	return nil
}

// classify maps transport errors to the contract sentinels
func classify(subject string, err error) error {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", subject, contracts.ErrQuoteNotFound)
	}
	return fmt.Errorf("%s: %w: %v", subject, contracts.ErrQuoteUnavailable, err)
}
