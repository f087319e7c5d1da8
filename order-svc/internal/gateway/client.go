package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"restaurant-app/order-svc/internal/domain"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://uat.onebanc.ai"
	DefaultTimeout = 60 * time.Second

	ActionGetItemList     = "get_item_list"
	ActionGetItemByID     = "get_item_by_id"
	ActionGetItemByFilter = "get_item_by_filter"
	ActionMakePayment     = "make_payment"

	// MaxResponseBytes caps how much of a partner response body is read.
	MaxResponseBytes = 4 << 20

	actionPathPrefix = "/emulator/interview/"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL       string
	PartnerAPIKey string
}

// Client talks to the partner catalog and payment API. Every failure that
// is not a decoded partner response wraps domain.ErrTransport.
type Client struct {
	config Config
	client HTTPClient
	logger *zap.Logger
}

func NewClient(config Config, client HTTPClient, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{config: config, client: client, logger: logger}
}

func (c *Client) MakePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error) {
	var resp domain.PaymentResponse
	if err := c.post(ctx, ActionMakePayment, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetItemList(ctx context.Context, page, count int) (*domain.ItemListResponse, error) {
	body := map[string]int{"page": page, "count": count}
	var resp domain.ItemListResponse
	if err := c.post(ctx, ActionGetItemList, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetItemByID(ctx context.Context, itemID string) (*domain.ItemByIDResponse, error) {
	body := map[string]string{"item_id": itemID}
	var resp domain.ItemByIDResponse
	if err := c.post(ctx, ActionGetItemByID, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetItemByFilter(ctx context.Context, minRating float64) (*domain.ItemByFilterResponse, error) {
	body := map[string]float64{"min_rating": minRating}
	var resp domain.ItemByFilterResponse
	if err := c.post(ctx, ActionGetItemByFilter, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, action string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode %s request: %w", domain.ErrTransport, action, err)
	}

	url := c.config.BaseURL + actionPathPrefix + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build %s request: %w", domain.ErrTransport, action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Partner-API-Key", c.config.PartnerAPIKey)
	req.Header.Set("X-Forward-Proxy-Action", action)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("partner request failed", zap.String("action", action), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", domain.ErrTransport, action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %w", domain.ErrTransport, action, err)
	}
	if len(data) > MaxResponseBytes {
		return fmt.Errorf("%w: %s response exceeds %d bytes", domain.ErrTransport, action, MaxResponseBytes)
	}

	c.logger.Debug("partner request",
		zap.String("action", action),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if err := statusError(resp.StatusCode, data); err != nil {
		c.logger.Warn("partner rejected request", zap.String("action", action), zap.Error(err))
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrTransport, action, err)
	}
	return nil
}

func statusError(code int, body []byte) error {
	switch {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: unauthorized", domain.ErrTransport)
	case code == http.StatusBadRequest:
		var status domain.ResponseStatus
		_ = json.Unmarshal(body, &status)
		return fmt.Errorf("%w: bad request: %s", domain.ErrTransport, status.ResponseMessage)
	case code < 200 || code > 299:
		return fmt.Errorf("%w: http error %d", domain.ErrTransport, code)
	}
	return nil
}
