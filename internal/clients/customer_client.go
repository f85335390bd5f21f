// Package clients holds HTTP clients for the sibling services the
// pricing pipeline consumes as black boxes.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// CustomerClient resolves customer records from the customer directory.
type CustomerClient interface {
	// GetCustomer returns nil, nil when the customer does not exist.
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
}

// HTTPCustomerClient implements CustomerClient over HTTP.
type HTTPCustomerClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewHTTPCustomerClient(cfg config.ServiceConfig, logger *logging.Logger) *HTTPCustomerClient {
	return &HTTPCustomerClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *HTTPCustomerClient) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	url := fmt.Sprintf("%s/api/v1/customers/%s", c.baseURL, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch customer", logging.Fields{
			"customer_id": customerID,
			"error":       err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("customer service returned status %d", resp.StatusCode)
	}

	var customer models.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// MockCustomerClient is an in-memory implementation for tests.
type MockCustomerClient struct {
	Customers map[string]*models.Customer
}

func NewMockCustomerClient() *MockCustomerClient {
	return &MockCustomerClient{Customers: make(map[string]*models.Customer)}
}

func (m *MockCustomerClient) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	return m.Customers[customerID], nil
}
