// backend-go/internal/forecast/client.go
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

const defaultRequestTimeout = 10 * time.Second

// Client reads active demand forecasts from the upstream forecast service.
// It satisfies repository.ForecastProvider; callers treat any failure here
// as missing input and carry on with a partial result.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient wires OAuth2 client credentials into the HTTP client. Every
// request carries a bearer token refreshed automatically on expiry.
func NewClient(cfg config.ForecastConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("forecast base url must be provided")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = creds.Client(ctx)
		httpClient.Timeout = timeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}, nil
}

// ActiveForecast fetches the forecast currently trusted for the key.
// A 404 maps to domain.ErrNotFound so the calculator can warn and skip.
func (c *Client) ActiveForecast(ctx context.Context, storeID, productID uuid.UUID) (*domain.DemandForecast, error) {
	endpoint := fmt.Sprintf("%s/v1/forecasts/active?%s", c.baseURL, url.Values{
		"store_id":   {storeID.String()},
		"product_id": {productID.String()},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("forecast service returned %d", resp.StatusCode)
	}

	var forecast domain.DemandForecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}

	return &forecast, nil
}
