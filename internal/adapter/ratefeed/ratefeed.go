// Package ratefeed fetches the USD/CDF market rate from an HTTP JSON feed
// shaped like {"rates":{"CDF":2845.12}}.
package ratefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// HTTPSource implements ports.RateSource.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{url: url, client: &http.Client{Timeout: timeout}}
}

type feedResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FetchUSDCDF returns how many CDF one USD buys, before spread.
func (s *HTTPSource) FetchUSDCDF(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rates: %w", err)
	}

	rate, ok := body.Rates["CDF"]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("decode rates: missing or non-positive CDF rate")
	}
	return rate, nil
}
