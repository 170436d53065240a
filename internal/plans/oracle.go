package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PriceOracle returns the current fiat price of one native token.
type PriceOracle interface {
	Price(ctx context.Context) (float64, error)
}

const DefaultStaticPrice = 20.0

type StaticOracle struct {
	price float64
}

func NewStaticOracle(price float64) *StaticOracle {
	if price <= 0 {
		price = DefaultStaticPrice
	}
	return &StaticOracle{price: price}
}

func (o *StaticOracle) Price(context.Context) (float64, error) {
	return o.price, nil
}

// HTTPOracle reads a CoinGecko style simple price document:
// {"solana":{"usd":142.17}}.
type HTTPOracle struct {
	url        string
	asset      string
	currency   string
	httpClient *http.Client
}

func NewHTTPOracle(url, asset, currency string) *HTTPOracle {
	if asset == "" {
		asset = "solana"
	}
	if currency == "" {
		currency = "usd"
	}
	return &HTTPOracle{
		url:        url,
		asset:      asset,
		currency:   currency,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (o *HTTPOracle) Price(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price oracle: unexpected status %s", resp.Status)
	}

	var doc map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return 0, fmt.Errorf("price oracle: decode: %w", err)
	}
	price, ok := doc[o.asset][o.currency]
	if !ok {
		return 0, fmt.Errorf("price oracle: no %s/%s price in response", o.asset, o.currency)
	}
	if price <= 0 {
		return 0, fmt.Errorf("price oracle: non-positive price %v", price)
	}
	return price, nil
}
