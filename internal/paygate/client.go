// Package paygate talks to the crypto payment provider's invoice API.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("paygate: api key not configured")

// APIError is a non-2xx provider response. The body is kept verbatim so
// callers can surface the provider's own diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment provider error %d: %s", e.StatusCode, e.Body)
}

// InvoiceRequest describes one hosted-invoice creation for an order.
type InvoiceRequest struct {
	OrderID     string
	Amount      decimal.Decimal
	PayCurrency string
	Description string
}

// Invoice is the provider's payment object: an id to correlate webhooks with
// and a hosted URL for the customer to pay at.
type Invoice struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
}

type Client interface {
	// CreateInvoice creates a payment invoice at the provider. It is never
	// retried automatically; a retry could mint a duplicate provider-side
	// invoice.
	CreateInvoice(ctx context.Context, in InvoiceRequest) (*Invoice, error)
	Currencies(ctx context.Context) ([]string, error)
}

// Config configures the HTTP client for the provider API.
type Config struct {
	BaseURL        string
	APIKey         string
	IPNCallbackURL string
	SuccessURL     string
	CancelURL      string
	Timeout        time.Duration
}

type httpClient struct {
	client         *http.Client
	baseURL        string
	apiKey         string
	ipnCallbackURL string
	successURL     string
	cancelURL      string
}

func NewClient(cfg Config) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpClient{
		client:         &http.Client{Timeout: timeout},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		ipnCallbackURL: cfg.IPNCallbackURL,
		successURL:     cfg.SuccessURL,
		cancelURL:      cfg.CancelURL,
	}
}

func (c *httpClient) CreateInvoice(ctx context.Context, in InvoiceRequest) (*Invoice, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	// The provider expects a plain decimal string with exactly two fraction
	// digits and a literal dot, regardless of host locale.
	payload := map[string]string{
		"price_amount":      in.Amount.StringFixed(2),
		"price_currency":    "usd",
		"pay_currency":      in.PayCurrency,
		"order_id":          in.OrderID,
		"order_description": in.Description,
		"ipn_callback_url":  c.ipnCallbackURL,
		"success_url":       withOrderID(c.successURL, in.OrderID),
		"cancel_url":        withOrderID(c.cancelURL, in.OrderID),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/invoice", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var invoice Invoice
	if err := json.Unmarshal(respBody, &invoice); err != nil {
		return nil, fmt.Errorf("decode invoice response: %w", err)
	}
	if invoice.ID == "" {
		return nil, fmt.Errorf("invoice response missing id")
	}
	return &invoice, nil
}

func (c *httpClient) Currencies(ctx context.Context) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/currencies", nil)
	if err != nil {
		return nil, fmt.Errorf("build currencies request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get currencies: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed struct {
		Currencies []string `json:"currencies"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode currencies response: %w", err)
	}
	return parsed.Currencies, nil
}

func withOrderID(base, orderID string) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("orderId", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}
