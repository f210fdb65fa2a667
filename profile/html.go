package profile

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"

	"github.com/smallnest/searchflow/log"
)

// DefaultEndpoint is the profile search site the HTML client talks to.
const DefaultEndpoint = "https://buddyschool.com"

const (
	nickSelector  = ".profileMainNick"
	titleSelector = ".profileMainTitle"
	maxErrorBody  = 512
)

// HTTPError is returned when the search endpoint answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("profile search returned %s", e.Status)
	}
	return fmt.Sprintf("profile search returned %s: %s", e.Status, e.Body)
}

// HTTPClient searches profiles by scraping the HTML search result page.
type HTTPClient struct {
	Endpoint string

	httpClient *http.Client
	limiter    *rate.Limiter
	policy     *bluemonday.Policy
	logger     log.Logger
}

var _ Client = (*HTTPClient)(nil)

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithEndpoint sets the base URL; "/search" is appended to it.
func WithEndpoint(endpoint string) HTTPOption {
	return func(c *HTTPClient) {
		c.Endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithHTTPClient sets the underlying *http.Client, e.g. to configure a timeout.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithRateLimit throttles outgoing requests to rps per second with the given
// burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPLogger sets the logger used for request tracing.
func WithHTTPLogger(logger log.Logger) HTTPOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewHTTPClient creates an HTML scraping client for DefaultEndpoint unless
// WithEndpoint says otherwise.
func NewHTTPClient(opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		Endpoint:   DefaultEndpoint,
		httpClient: http.DefaultClient,
		policy:     bluemonday.StrictPolicy(),
		logger:     log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search issues GET {Endpoint}/search?keyword=K&limit=L&page=P and parses
// the profiles out of the returned page.
func (c *HTTPClient) Search(ctx context.Context, keyword string, page, limit int) ([]Profile, error) {
	if err := validate(page, limit); err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	reqURL := fmt.Sprintf("%s/search?%s", c.Endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	c.logger.Debug("GET %s", reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	profiles, err := c.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("page %d for %q: %d profiles", page, keyword, len(profiles))
	return profiles, nil
}

// Parse extracts profiles from a search result document. Names come from
// the nickname elements, titles and links from the title elements; the two
// selections are paired in document order and the shorter one wins.
func (c *HTTPClient) Parse(r io.Reader) ([]Profile, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	var names []string
	doc.Find(nickSelector).Each(func(_ int, s *goquery.Selection) {
		names = append(names, c.clean(s.Text()))
	})

	type titled struct{ title, link string }
	var titles []titled
	doc.Find(titleSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a[href]").First().Attr("href")
		titles = append(titles, titled{
			title: c.clean(s.Text()),
			link:  strings.TrimSpace(href),
		})
	})

	n := min(len(names), len(titles))
	profiles := make([]Profile, 0, n)
	for i := 0; i < n; i++ {
		profiles = append(profiles, Profile{
			Name:  names[i],
			Title: titles[i].title,
			Link:  titles[i].link,
		})
	}
	return profiles, nil
}

// clean strips any markup left in s and collapses whitespace. Sanitize
// escapes entities, so the result is unescaped back to plain text.
func (c *HTTPClient) clean(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(c.policy.Sanitize(s))), " ")
}
