package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeResult is the success signal extracted from the gateway response.
// Both Paid and Status come from the response body; a 2xx transport code
// alone never counts as a successful charge.
type ChargeResult struct {
	ID     string `json:"id"`
	Paid   bool   `json:"paid"`
	Status string `json:"status"`
}

// StripeClient submits charges to the payment gateway. Amounts cross the
// wire in integer cents only.
type StripeClient struct {
	baseURL string
	apiKey  string
	source  string
	client  *http.Client
}

func NewStripeClient(baseURL, apiKey, source string) *StripeClient {
	return &StripeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		source:  source,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *StripeClient) Charge(ctx context.Context, email string, total decimal.Decimal) (*ChargeResult, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be positive", ErrValidation)
	}
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: invalid payer email", ErrValidation)
	}

	cents := total.Round(2).Mul(decimal.NewFromInt(100)).IntPart()

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(cents, 10))
	form.Set("currency", "usd")
	form.Set("source", c.source)
	form.Set("receipt_email", email)
	form.Set("description", "pizza-delivery order for "+email)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrChargeFailed, resp.StatusCode, string(body))
	}

	var res ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrChargeFailed, err)
	}

	if !res.Paid || res.Status != "succeeded" {
		return nil, fmt.Errorf("%w: paid=%t status=%q", ErrChargeFailed, res.Paid, res.Status)
	}

	return &res, nil
}
