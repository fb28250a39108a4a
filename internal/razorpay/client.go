package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.razorpay.com/v1/"

// MaxReceiptLength is the provider's limit on the receipt field.
const MaxReceiptLength = 40

type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	backoffs   []time.Duration
}

type OrderRequest struct {
	Amount   int64             `json:"amount"` // minor units
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *StatusError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("razorpay: status %d: %s: %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("razorpay: status %d", e.StatusCode)
}

// Retryable reports whether repeating the request could succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// WithBackoffs replaces the retry delays.
func (c *Client) WithBackoffs(backoffs ...time.Duration) *Client {
	c.backoffs = backoffs
	return c
}

// KeyID is the public key handed to the checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

func (c *Client) CreateOrder(ctx context.Context, orderReq OrderRequest) (*Order, error) {
	jsonData, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil {
			statusErr.Code = apiErr.Error.Code
			statusErr.Description = apiErr.Error.Description
		}
		return nil, statusErr
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if order.ID == "" {
		return nil, fmt.Errorf("order id is empty in response, body: %s", string(body))
	}

	return &order, nil
}

// RetryWithBackoff runs fn up to maxRetries times, sleeping between attempts.
// Client errors (4xx other than 429) are returned without retrying.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return err
		}
		if i == maxRetries-1 || i >= len(c.backoffs) {
			continue
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(c.backoffs[i]):
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
