// Package payment talks to the hosted payment gateway that collects deposits.
package payment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BaseURL         string
	MerchantID      string
	Password        string
	Currency        string
	SuccessURL      string
	FailURL         string
	NotificationURL string
	Timeout         time.Duration
}

type Redirect struct {
	URL               string
	ProviderPaymentID string
}

type initRequest struct {
	MerchantID      string `json:"merchantId"`
	Token           string `json:"token"`
	Amount          int64  `json:"amount"`
	OrderID         string `json:"orderId"`
	Currency        string `json:"currency"`
	Description     string `json:"description,omitempty"`
	SuccessURL      string `json:"successURL,omitempty"`
	FailURL         string `json:"failURL,omitempty"`
	NotificationURL string `json:"notificationURL,omitempty"`
	Language        string `json:"language,omitempty"`
}

type initResponse struct {
	Success    bool   `json:"success"`
	PaymentID  string `json:"paymentId"`
	OrderID    string `json:"orderId"`
	Status     string `json:"status"`
	PaymentURL string `json:"paymentURL"`
	Message    string `json:"message"`
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "ARS"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// CreatePaymentRedirect opens a payment for the reservation deposit and returns
// the page the client must be sent to.
func (c *Client) CreatePaymentRedirect(ctx context.Context, reservationID string, amount int64) (*Redirect, error) {
	req := initRequest{
		MerchantID: c.cfg.MerchantID,
		Token: c.token(map[string]string{
			"Amount":   strconv.FormatInt(amount, 10),
			"Currency": c.cfg.Currency,
			"OrderId":  reservationID,
		}),
		Amount:          amount,
		OrderID:         reservationID,
		Currency:        c.cfg.Currency,
		Description:     "Seña de reserva " + reservationID,
		SuccessURL:      c.cfg.SuccessURL,
		FailURL:         c.cfg.FailURL,
		NotificationURL: c.cfg.NotificationURL,
		Language:        "es",
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/api/v1/payments/init", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("init payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("init payment: provider returned %d", resp.StatusCode)
	}

	var result initResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	if !result.Success || result.PaymentID == "" || result.PaymentURL == "" {
		return nil, fmt.Errorf("init payment rejected: %s", result.Message)
	}

	return &Redirect{URL: result.PaymentURL, ProviderPaymentID: result.PaymentID}, nil
}

// VerifyNotification checks the token the gateway signs webhook calls with.
func (c *Client) VerifyNotification(paymentID, status, token string) bool {
	expected := c.token(map[string]string{"PaymentId": paymentID, "Status": status})
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// token is sha256 over the parameter values concatenated in key order,
// merchant id and password included.
func (c *Client) token(params map[string]string) string {
	all := make(map[string]string, len(params)+2)
	for k, v := range params {
		all[k] = v
	}
	all["MerchantId"] = c.cfg.MerchantID
	all["Password"] = c.cfg.Password

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(all[k])
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
