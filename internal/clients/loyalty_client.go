package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// ApplyPromotionRequest asks the promotion service for the discount a
// code yields on a priced cart.
type ApplyPromotionRequest struct {
	Code        string              `json:"code"`
	CustomerID  string              `json:"customer_id"`
	NetAmount   int64               `json:"net_amount"`
	Lines       []models.PricedLine `json:"lines"`
	LoyaltyTier string              `json:"loyalty_tier"`
}

// PromotionResult is the discount granted by the promotion service.
type PromotionResult struct {
	Discount int64 `json:"discount"`
}

// RedeemPointsRequest asks the loyalty service to convert points into
// an order deduction.
type RedeemPointsRequest struct {
	CustomerID string `json:"customer_id"`
	Points     int64  `json:"points"`
	NetAmount  int64  `json:"net_amount"`
}

// RedemptionResult reports how many points were consumed and their
// monetary value.
type RedemptionResult struct {
	PointsUsed int64 `json:"points_used"`
	Value      int64 `json:"value"`
}

// LoyaltyClient is the promotion and loyalty-point collaborator. The
// pipeline never computes discount or point math itself; it applies
// whatever these calls return.
type LoyaltyClient interface {
	ApplyPromotion(ctx context.Context, req *ApplyPromotionRequest) (*PromotionResult, error)
	RedeemPoints(ctx context.Context, req *RedeemPointsRequest) (*RedemptionResult, error)
}

// HTTPLoyaltyClient implements LoyaltyClient over HTTP.
type HTTPLoyaltyClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewHTTPLoyaltyClient(cfg config.ServiceConfig, logger *logging.Logger) *HTTPLoyaltyClient {
	return &HTTPLoyaltyClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *HTTPLoyaltyClient) ApplyPromotion(ctx context.Context, req *ApplyPromotionRequest) (*PromotionResult, error) {
	var result PromotionResult
	if err := c.post(ctx, "/api/v1/promotions/apply", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPLoyaltyClient) RedeemPoints(ctx context.Context, req *RedeemPointsRequest) (*RedemptionResult, error) {
	var result RedemptionResult
	if err := c.post(ctx, "/api/v1/loyalty/redeem", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPLoyaltyClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Loyalty service call failed", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loyalty service returned status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// MockLoyaltyClient is an in-memory implementation for tests.
type MockLoyaltyClient struct {
	Discount     int64
	PointsValue  int64
	PromotionErr error
	RedeemErr    error

	PromotionCalls []*ApplyPromotionRequest
	RedeemCalls    []*RedeemPointsRequest
}

func NewMockLoyaltyClient() *MockLoyaltyClient {
	return &MockLoyaltyClient{}
}

func (m *MockLoyaltyClient) ApplyPromotion(ctx context.Context, req *ApplyPromotionRequest) (*PromotionResult, error) {
	m.PromotionCalls = append(m.PromotionCalls, req)
	if m.PromotionErr != nil {
		return nil, m.PromotionErr
	}
	return &PromotionResult{Discount: m.Discount}, nil
}

func (m *MockLoyaltyClient) RedeemPoints(ctx context.Context, req *RedeemPointsRequest) (*RedemptionResult, error) {
	m.RedeemCalls = append(m.RedeemCalls, req)
	if m.RedeemErr != nil {
		return nil, m.RedeemErr
	}
	return &RedemptionResult{PointsUsed: req.Points, Value: m.PointsValue}, nil
}
