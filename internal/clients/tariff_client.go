package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/geo"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/tariff"
)

// HTTPTariffClient implements tariff.ZoneProvider against the delivery
// partner's zone API. Each restaurant authenticates with its own
// partner key, so the key travels per call rather than per client.
type HTTPTariffClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewHTTPTariffClient(cfg config.ServiceConfig, logger *logging.Logger) *HTTPTariffClient {
	return &HTTPTariffClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// zoneDTO is the partner's wire format for one tariff zone.
type zoneDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Price     int64   `json:"price"`
}

func (c *HTTPTariffClient) GetZones(ctx context.Context, apiKey string, offset, limit int) ([]tariff.Zone, error) {
	url := fmt.Sprintf("%s/api/v1/zones?offset=%d&limit=%d", c.baseURL, offset, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tariff provider returned status %d", resp.StatusCode)
	}

	var dtos []zoneDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, err
	}

	zones := make([]tariff.Zone, 0, len(dtos))
	for _, d := range dtos {
		zones = append(zones, tariff.Zone{
			ID:       d.ID,
			Name:     d.Name,
			Location: geo.Point{Latitude: d.Latitude, Longitude: d.Longitude},
			Price:    d.Price,
		})
	}
	return zones, nil
}
