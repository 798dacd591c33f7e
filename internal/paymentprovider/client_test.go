package paymentprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms-platform/internal/config"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PaymentGateway{
		GatewayBaseURL:   srv.URL + "/v1/",
		GatewaySecretKey: "sk_test",
		GatewayTimeout:   time.Second,
	})
}

func TestUnitAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{amount: "19.99", want: 1999},
		{amount: "100", want: 10000},
		{amount: "0.019", want: 1},
		{amount: "12.345", want: 1234},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestClient_CreateProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Курс: Go", r.PostForm.Get("name"))
		assert.Equal(t, "about go", r.PostForm.Get("description"))
		_, _ = w.Write([]byte(`{"id":"prod_1","name":"Курс: Go"}`))
	})

	p, err := c.CreateProduct(context.Background(), "Курс: Go", "about go")
	require.NoError(t, err)
	assert.Equal(t, "prod_1", p.ID)
}

func TestClient_CreatePrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/prices", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "prod_1", r.PostForm.Get("product"))
		assert.Equal(t, "1999", r.PostForm.Get("unit_amount"))
		assert.Equal(t, "rub", r.PostForm.Get("currency"))
		_, _ = w.Write([]byte(`{"id":"price_1","product":"prod_1","unit_amount":1999,"currency":"rub"}`))
	})

	p, err := c.CreatePrice(context.Background(), "prod_1", decimal.RequireFromString("19.99"), "rub")
	require.NoError(t, err)
	assert.Equal(t, "price_1", p.ID)
	assert.Equal(t, int64(1999), p.UnitAmount)
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		assert.Equal(t, "price_1", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "http://ok", r.PostForm.Get("success_url"))
		assert.Equal(t, "http://cancel", r.PostForm.Get("cancel_url"))
		assert.Equal(t, "42", r.PostForm.Get("metadata[user_id]"))
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://checkout/cs_1"}`))
	})

	s, err := c.CreateCheckoutSession(context.Background(), "price_1", "http://ok", "http://cancel",
		map[string]string{"user_id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, "https://checkout/cs_1", s.URL)
}

func TestClient_GetSessionStatus(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantPaid  bool
		wantEmail *string
	}{
		{
			name:     "paid with customer",
			body:     `{"id":"cs_1","payment_status":"paid","amount_total":1999,"currency":"rub","customer_details":{"email":"a@b.c"}}`,
			wantPaid: true,
		},
		{
			name: "unpaid without customer",
			body: `{"id":"cs_1","payment_status":"unpaid","amount_total":1999,"currency":"rub","customer_details":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			st, err := c.GetSessionStatus(context.Background(), "cs_1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, st.Paid)
			assert.Equal(t, int64(1999), st.AmountTotal)
			if tt.wantPaid {
				require.NotNil(t, st.CustomerEmail)
				assert.Equal(t, "a@b.c", *st.CustomerEmail)
			} else {
				assert.Nil(t, st.CustomerEmail)
			}
		})
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "provider error message",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
			},
			wantMsg: "No such price",
		},
		{
			name: "bare non-2xx",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantMsg: "unexpected status",
		},
		{
			name: "broken json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{`))
			},
			wantMsg: "decode response",
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(1500 * time.Millisecond)
				_, _ = w.Write([]byte(`{}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			_, err := c.CreateProduct(context.Background(), "x", "")
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindGateway))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
