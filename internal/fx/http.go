package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hostledger/internal/models"
)

// HTTPProvider fetches historical rates from a Fixer-compatible JSON API:
//
//	GET {baseURL}/{YYYY-MM-DD}?base=EUR&symbols=USD&access_key=...
type HTTPProvider struct {
	baseURL   string
	accessKey string
	client    *http.Client
}

// NewHTTPProvider creates a provider against baseURL. accessKey may be empty.
func NewHTTPProvider(baseURL, accessKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ratesResponse struct {
	Success bool                   `json:"success"`
	Base    string                 `json:"base"`
	Date    string                 `json:"date"`
	Rates   map[string]json.Number `json:"rates"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

// GetRate requests the from/to rate for asOf's calendar day.
func (p *HTTPProvider) GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("base", strings.ToUpper(from))
	q.Set("symbols", strings.ToUpper(to))
	if p.accessKey != "" {
		q.Set("access_key", p.accessKey)
	}
	endpoint := fmt.Sprintf("%s/%s?%s", p.baseURL, asOf.UTC().Format(time.DateOnly), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrCurrencyConversionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: rate provider returned %s", models.ErrCurrencyConversionUnavailable, resp.Status)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: failed to decode rates: %v", models.ErrCurrencyConversionUnavailable, err)
	}
	if !body.Success {
		info := "unknown error"
		if body.Error != nil {
			info = body.Error.Info
		}
		return decimal.Zero, fmt.Errorf("%w: rate provider error: %s", models.ErrCurrencyConversionUnavailable, info)
	}

	raw, ok := body.Rates[strings.ToUpper(to)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s/%s on %s", models.ErrCurrencyConversionUnavailable, from, to, body.Date)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed rate %q", models.ErrCurrencyConversionUnavailable, raw)
	}
	return rate, nil
}
