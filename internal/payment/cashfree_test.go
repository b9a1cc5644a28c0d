package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/as0628/expense-tracker-project/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PaymentConfig{
		BaseURL:      srv.URL,
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		APIVersion:   "2022-09-01",
	})
}

func TestCreateOrder(t *testing.T) {
	var got createOrderBody
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/orders", r.URL.Path)
		assert.Equal(t, "app-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "app-secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "2022-09-01", r.Header.Get("x-api-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order_id":"order_1","payment_session_id":"session_abc","order_status":"ACTIVE"}`))
	})

	session, err := client.CreateOrder(context.Background(), OrderRequest{
		OrderID:       "order_1",
		Amount:        decimal.NewFromInt(499),
		Currency:      "INR",
		CustomerID:    "7",
		CustomerPhone: "9999999999",
		ReturnURL:     "http://localhost/return",
	})
	require.NoError(t, err)
	require.Equal(t, "session_abc", session.PaymentSessionID)

	require.Equal(t, "order_1", got.OrderID)
	require.Equal(t, 499.0, got.OrderAmount)
	require.Equal(t, "INR", got.OrderCurrency)
	require.Equal(t, "7", got.CustomerDetails.CustomerID)
	require.NotNil(t, got.OrderMeta)
	require.Equal(t, "http://localhost/return", got.OrderMeta.ReturnURL)
}

func TestCreateOrderGatewayError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"authentication Failed"}`))
	})

	_, err := client.CreateOrder(context.Background(), OrderRequest{OrderID: "order_2", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestPaymentStatus(t *testing.T) {
	t.Run("first attempt wins", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/pg/orders/order_9/payments", r.URL.Path)
			_, _ = w.Write([]byte(`[{"payment_status":"SUCCESS"},{"payment_status":"FAILED"}]`))
		})

		status, err := client.PaymentStatus(context.Background(), "order_9")
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, status)
	})

	t.Run("no attempts", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		status, err := client.PaymentStatus(context.Background(), "order_10")
		require.NoError(t, err)
		require.Empty(t, status)
	})
}
