package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Client is the HTTP implementation of Provider. The provider's API is
// JSON over basic auth with an Idempotence-Key header on mutating calls.
type Client struct {
	BaseURL string
	ShopID  string
	Secret  string
	HTTP    *http.Client
}

func NewClient(baseURL, shopID, secret string) *Client {
	return &Client{
		BaseURL: baseURL,
		ShopID:  shopID,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type wirePayment struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

func (p wirePayment) toPayment() Payment {
	return Payment{ID: p.ID, Status: p.Status, ConfirmationURL: p.Confirmation.ConfirmationURL}
}

func (c *Client) do(method, path string, body any, idempotent bool) (Payment, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return Payment{}, err
		}
	}
	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return Payment{}, err
	}
	req.SetBasicAuth(c.ShopID, c.Secret)
	req.Header.Set("Content-Type", "application/json")
	if idempotent {
		req.Header.Set("Idempotence-Key", uuid.NewString())
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Payment{}, fmt.Errorf("payment provider: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payment{}, fmt.Errorf("payment provider: unexpected status %d", resp.StatusCode)
	}

	var wp wirePayment
	if err := json.NewDecoder(resp.Body).Decode(&wp); err != nil {
		return Payment{}, fmt.Errorf("payment provider: decode: %w", err)
	}
	return wp.toPayment(), nil
}

func (c *Client) CreatePayment(req CreateRequest) (Payment, error) {
	body := map[string]any{
		"amount": map[string]string{
			"value":    strconv.Itoa(req.Amount),
			"currency": "RUB",
		},
		"capture": true,
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": req.ReturnURL,
		},
		"description": req.Description,
		"metadata":    map[string]string{"order_id": req.OrderID},
	}
	return c.do(http.MethodPost, "/payments", body, true)
}

func (c *Client) FindPayment(paymentID string) (Payment, error) {
	return c.do(http.MethodGet, "/payments/"+paymentID, nil, false)
}

func (c *Client) CancelPayment(paymentID string) (Payment, error) {
	return c.do(http.MethodPost, "/payments/"+paymentID+"/cancel", map[string]any{}, true)
}
