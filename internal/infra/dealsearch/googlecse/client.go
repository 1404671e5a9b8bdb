package googlecse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/yanqian/familylog/internal/domain/advice"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	resultsPerItem = 5
)

var (
	storeDomains = []struct {
		domain string
		name   string
	}{
		{"kaufland.hr", "Kaufland"},
		{"konzum.hr", "Konzum"},
		{"spar.hr", "Spar"},
		{"lidl.hr", "Lidl"},
		{"plodine.hr", "Plodine"},
	}

	pricePattern    = regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*(kn|€|eur|hrk)`)
	discountPattern = regexp.MustCompile(`(?i)(-?\d+%)|(\d+%\s*popust)|(akcija)`)
)

// Config configures the client.
type Config struct {
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration
	Breaker  BreakerConfig
}

// BreakerConfig controls the circuit breaker around outbound calls.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Client searches Croatian store sites for promotions through Google Custom Search.
type Client struct {
	apiKey     string
	engineID   string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]advice.Deal]
	logger     *slog.Logger
}

// NewClient builds a search client. Without credentials every search returns no deals.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		engineID: strings.TrimSpace(cfg.EngineID),
		baseURL:  strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "googlecse.client"),
	}
	if cfg.Breaker.Enabled {
		threshold := cfg.Breaker.FailureThreshold
		if threshold == 0 {
			threshold = 3
		}
		c.breaker = gobreaker.NewCircuitBreaker[[]advice.Deal](gobreaker.Settings{
			Name:        "google-cse",
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    cfg.Breaker.Interval,
			Timeout:     cfg.Breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return c
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

// SearchDeals returns promotions for one product. location is accepted for the
// collaborator contract; the engine is already restricted to Croatian stores.
func (c *Client) SearchDeals(ctx context.Context, product, location string) ([]advice.Deal, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, nil
	}
	if !c.Configured() {
		c.logger.Warn("deal search not configured")
		return nil, nil
	}
	if c.breaker == nil {
		return c.fetch(ctx, product)
	}
	return c.breaker.Execute(func() ([]advice.Deal, error) {
		return c.fetch(ctx, product)
	})
}

func (c *Client) fetch(ctx context.Context, product string) ([]advice.Deal, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", BuildQuery(product))
	params.Set("num", fmt.Sprint(resultsPerItem))
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("search request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	deals := make([]advice.Deal, 0, len(raw.Items))
	for _, item := range raw.Items {
		price, discount := extractPriceInfo(item.Snippet)
		deals = append(deals, advice.Deal{
			ProductName: product,
			StoreName:   storeName(item.Link),
			Title:       item.Title,
			Snippet:     item.Snippet,
			URL:         item.Link,
			Price:       price,
			Discount:    discount,
		})
	}
	c.logger.Debug("deal search completed", "product", product, "deals", len(deals))
	return deals, nil
}

type apiResponse struct {
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// BuildQuery restricts the search to discount pages on the known store sites.
func BuildQuery(product string) string {
	sites := make([]string, 0, len(storeDomains))
	for _, s := range storeDomains {
		sites = append(sites, "site:"+s.domain)
	}
	return fmt.Sprintf("%s (akcija popust OR akcija -%% OR akcija sniženje) (%s)", product, strings.Join(sites, " OR "))
}

func storeName(link string) string {
	for _, s := range storeDomains {
		if strings.Contains(link, s.domain) {
			return s.name
		}
	}
	return "Trgovina"
}

func extractPriceInfo(snippet string) (string, string) {
	return pricePattern.FindString(snippet), discountPattern.FindString(snippet)
}

var _ advice.DealSearcher = (*Client)(nil)
