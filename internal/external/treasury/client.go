package treasury

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/moatscreen/pkg/httputil"
	"github.com/wonny/moatscreen/pkg/logger"
)

// ErrNoRate is returned when the page has no usable yield
var ErrNoRate = errors.New("treasury: no yield found on page")

// MaxPlausibleRate rejects parse accidents (e.g. a price cell picked up by the selector)
const MaxPlausibleRate = 0.25

// Client scrapes the 10-year treasury yield from an HTML quote page
// ⭐ SSOT: 국채 금리 HTML 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	pageURL    string
	selector   string
}

// NewClient creates a scraper for pageURL, reading the first node matching selector
func NewClient(httpClient *httputil.Client, log *logger.Logger, pageURL, selector string) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if selector == "" {
		selector = "[data-field=yield]"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("treasury"),
		pageURL:    pageURL,
		selector:   selector,
	}
}

// Enabled reports whether a page URL is configured
func (c *Client) Enabled() bool {
	return c != nil && c.pageURL != ""
}

// FetchRate returns the yield as a fraction (4.31% → 0.0431)
func (c *Client) FetchRate(ctx context.Context) (float64, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("treasury page not configured: %w", ErrNoRate)
	}

	html, err := c.fetchHTML(ctx)
	if err != nil {
		return 0, err
	}

	rate, err := ParseRate(html, c.selector)
	if err != nil {
		return 0, err
	}

	c.logger.WithField("rate", rate).Debug("Fetched treasury yield")
	return rate, nil
}

func (c *Client) fetchHTML(ctx context.Context) (string, error) {
	resp, err := c.httpClient.Get(ctx, c.pageURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// ParseRate extracts the first matching node's text as a yield.
// Text ending in % is a percentage; an unmarked value above 1 is read as one too.
func ParseRate(html, selector string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return 0, ErrNoRate
	}

	// data-value 속성이 있으면 텍스트보다 우선
	text, ok := node.Attr("data-value")
	if !ok {
		text = node.Text()
	}

	rate, percent, err := parseNum(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoRate, strings.TrimSpace(text))
	}
	if percent || rate > 1 {
		rate /= 100
	}
	if rate <= 0 || rate > MaxPlausibleRate {
		return 0, fmt.Errorf("%w: implausible value %.4f", ErrNoRate, rate)
	}
	return rate, nil
}

// parseNum reports whether the text carried a % suffix
func parseNum(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	s, percent := strings.CutSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, percent, err
}
