// Package semrush queries domain and keyword metrics from the Semrush
// analytics API.
package semrush

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/ledger"
)

const (
	// DefaultBaseURL is the analytics API endpoint.
	DefaultBaseURL = "https://api.semrush.com/"
	// DefaultDatabase is the regional keyword database.
	DefaultDatabase = "us"
	// DefaultThrottle is the pause after every keyword lookup.
	DefaultThrottle = 100 * time.Millisecond
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

var errNoData = errors.New("no data returned")

// DomainOverview summarises a domain's organic presence.
type DomainOverview struct {
	Domain          string
	OrganicKeywords int
	OrganicTraffic  int
	OrganicCost     float64
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Database   string
	Throttle   time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a Semrush API client. A client without an API key never touches
// the network and returns empty results.
type Client struct {
	apiKey   string
	baseURL  string
	database string
	throttle time.Duration
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Throttle < 0 {
		opts.Throttle = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIKey == "" {
		opts.Logger.Warn("semrush API key not configured, keyword research skipped")
	}
	return &Client{
		apiKey:   opts.APIKey,
		baseURL:  opts.BaseURL,
		database: opts.Database,
		throttle: opts.Throttle,
		http:     opts.HTTPClient,
		logger:   opts.Logger,
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// DomainOverview fetches the domain_rank report for domain. It returns
// ok=false when the client is disabled or the lookup fails.
func (c *Client) DomainOverview(ctx context.Context, domain string) (DomainOverview, bool) {
	if !c.Enabled() {
		return DomainOverview{}, false
	}

	fields, err := c.query(ctx, url.Values{
		"type":           {"domain_rank"},
		"domain":         {domain},
		"export_columns": {"Dn,Or,Ot,Oc,Ad,At,Ac"},
	})
	if err != nil {
		c.logger.Warn("domain overview unavailable", zap.String("domain", domain), zap.Error(err))
		return DomainOverview{}, false
	}

	overview := DomainOverview{Domain: field(fields, 0)}
	overview.OrganicKeywords, _ = strconv.Atoi(field(fields, 1))
	overview.OrganicTraffic, _ = strconv.Atoi(field(fields, 2))
	overview.OrganicCost, _ = strconv.ParseFloat(field(fields, 3), 64)
	if overview.Domain == "" {
		overview.Domain = domain
	}
	return overview, true
}

// KeywordMetrics looks up search volume and difficulty for each keyword, in
// order. A failed lookup yields zero metrics for that keyword. A disabled
// client returns nil.
func (c *Client) KeywordMetrics(ctx context.Context, keywords []string) []ledger.KeywordMetric {
	if !c.Enabled() || len(keywords) == 0 {
		return nil
	}

	metrics := make([]ledger.KeywordMetric, 0, len(keywords))
	for i, keyword := range keywords {
		metric := ledger.KeywordMetric{Keyword: keyword}

		fields, err := c.query(ctx, url.Values{
			"type":           {"phrase_this"},
			"phrase":         {keyword},
			"export_columns": {"Ph,Nq,Kd"},
		})
		switch {
		case err == nil:
			metric.Volume, _ = strconv.Atoi(field(fields, 1))
			metric.Difficulty, _ = strconv.ParseFloat(field(fields, 2), 64)
		case errors.Is(err, errNoData):
			c.logger.Debug("no keyword data", zap.String("keyword", keyword))
		default:
			c.logger.Warn("keyword lookup failed", zap.String("keyword", keyword), zap.Error(err))
		}
		metrics = append(metrics, metric)

		if i < len(keywords)-1 && !c.pause(ctx) {
			for _, rest := range keywords[i+1:] {
				metrics = append(metrics, ledger.KeywordMetric{Keyword: rest})
			}
			break
		}
	}
	return metrics
}

func (c *Client) pause(ctx context.Context) bool {
	if c.throttle == 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(c.throttle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// query performs one report request and returns the first data line's
// semicolon-separated fields.
func (c *Client) query(ctx context.Context, params url.Values) ([]string, error) {
	params.Set("key", c.apiKey)
	params.Set("database", c.database)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", params.Get("type"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: status %d", params.Get("type"), resp.StatusCode)
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "ERROR") {
		if strings.Contains(text, "NOTHING FOUND") {
			return nil, errNoData
		}
		return nil, fmt.Errorf("request %s: %s", params.Get("type"), text)
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil, errNoData
	}
	return strings.Split(lines[1], ";"), nil
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
