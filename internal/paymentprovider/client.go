// Package paymentprovider реализует клиент платёжного провайдера
// со Stripe-совместимым REST API: продукты, цены и сессии оплаты.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/lms-platform/internal/config"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
)

const statusPaid = "paid"

// Client обращается к API провайдера. Повторов нет: любая ошибка
// возвращается вызывающему как apperr.KindGateway.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент по настройкам платёжного шлюза.
func NewClient(cfg config.PaymentGateway) *Client {
	return &Client{
		secretKey:  cfg.GatewaySecretKey,
		apiURL:     strings.TrimRight(cfg.GatewayBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.GatewayTimeout},
	}
}

// UnitAmount переводит сумму в минимальные единицы валюты с отбрасыванием дробной части.
func UnitAmount(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, method, path, form)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateProduct создаёт продукт.
func (c *Client) CreateProduct(ctx context.Context, name, description string) (*Product, error) {
	const op = "paymentprovider.CreateProduct"
	form := url.Values{}
	form.Set("name", name)
	if description != "" {
		form.Set("description", description)
	}

	var product Product
	if err := c.do(ctx, http.MethodPost, "/products", form, &product); err != nil {
		return nil, apperr.Gateway(op, err)
	}
	return &product, nil
}

// CreatePrice создаёт цену для продукта.
func (c *Client) CreatePrice(ctx context.Context, productID string, amount decimal.Decimal, currency string) (*Price, error) {
	const op = "paymentprovider.CreatePrice"
	form := url.Values{}
	form.Set("product", productID)
	form.Set("unit_amount", strconv.FormatInt(UnitAmount(amount), 10))
	form.Set("currency", currency)

	var price Price
	if err := c.do(ctx, http.MethodPost, "/prices", form, &price); err != nil {
		return nil, apperr.Gateway(op, err)
	}
	return &price, nil
}

// CreateCheckoutSession создаёт сессию оплаты на одну позицию.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string, metadata map[string]string) (*Session, error) {
	const op = "paymentprovider.CreateCheckoutSession"
	form := url.Values{}
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return nil, apperr.Gateway(op, err)
	}
	return &session, nil
}

// GetSessionStatus возвращает статус оплаты сессии.
func (c *Client) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	const op = "paymentprovider.GetSessionStatus"

	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, apperr.Gateway(op, err)
	}

	status := &SessionStatus{
		ID:          resp.ID,
		Status:      resp.PaymentStatus,
		AmountTotal: resp.AmountTotal,
		Currency:    resp.Currency,
		Paid:        resp.PaymentStatus == statusPaid,
	}
	if resp.CustomerDetails != nil {
		status.CustomerEmail = resp.CustomerDetails.Email
	}
	return status, nil
}
