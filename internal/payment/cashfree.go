// Package payment talks to the Cashfree payment gateway.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/as0628/expense-tracker-project/internal/config"

	"github.com/shopspring/decimal"
)

const StatusSuccess = "SUCCESS"

// OrderRequest describes the order to open at the gateway.
type OrderRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerPhone string
	ReturnURL     string
}

// OrderSession is the part of the create-order response the checkout needs.
type OrderSession struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderStatus      string `json:"order_status"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
}

type createOrderBody struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       *orderMeta      `json:"order_meta,omitempty"`
}

type paymentAttempt struct {
	PaymentStatus string `json:"payment_status"`
}

// Client is a minimal Cashfree PG client: create order and read its payments.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	apiVersion   string
	http         *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		apiVersion:   cfg.APIVersion,
		http:         &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder opens an order and returns its payment session.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderSession, error) {
	body := createOrderBody{
		OrderID:       req.OrderID,
		OrderAmount:   req.Amount.InexactFloat64(),
		OrderCurrency: req.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    req.CustomerID,
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: req.CustomerEmail,
		},
	}
	if req.ReturnURL != "" {
		body.OrderMeta = &orderMeta{ReturnURL: req.ReturnURL}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	var session OrderSession
	if err := c.do(ctx, http.MethodPost, "/pg/orders", bytes.NewReader(raw), &session); err != nil {
		return nil, fmt.Errorf("create order %s: %w", req.OrderID, err)
	}
	return &session, nil
}

// PaymentStatus returns the status of the latest payment attempt for the
// order, or an empty string when no attempt exists yet.
func (c *Client) PaymentStatus(ctx context.Context, orderID string) (string, error) {
	var attempts []paymentAttempt
	path := "/pg/orders/" + url.PathEscape(orderID) + "/payments"
	if err := c.do(ctx, http.MethodGet, path, nil, &attempts); err != nil {
		return "", fmt.Errorf("get payments for %s: %w", orderID, err)
	}
	if len(attempts) == 0 {
		return "", nil
	}
	return attempts[0].PaymentStatus, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("x-api-version", c.apiVersion)
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
