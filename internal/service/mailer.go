package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geomm/pizza-delivery/internal/model"
)

// MailEvent is one entry of the notification provider's event log.
type MailEvent struct {
	Event     string  `json:"event"`
	Timestamp float64 `json:"timestamp"`
}

// MailgunClient submits receipt messages and queries their delivery events.
// A 2xx on submit means accepted for delivery, not delivered; the tracker
// confirms the latter through Events.
type MailgunClient struct {
	baseURL string
	domain  string
	apiKey  string
	sender  string
	client  *http.Client
}

func NewMailgunClient(baseURL, domain, apiKey, sender string) *MailgunClient {
	return &MailgunClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		domain:  domain,
		apiKey:  apiKey,
		sender:  sender,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SendReceipt renders the order receipt and submits it. Returns the
// provider-assigned message id.
func (c *MailgunClient) SendReceipt(ctx context.Context, order *model.Order) (string, error) {
	form := url.Values{}
	form.Set("from", c.sender)
	form.Set("to", order.Email)
	form.Set("subject", fmt.Sprintf("Your order %s", order.ID))
	form.Set("text", renderReceipt(order))

	endpoint := fmt.Sprintf("%s/v3/%s/messages", c.baseURL, c.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrDispatchFailed, resp.StatusCode, string(body))
	}

	var res struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrDispatchFailed, err)
	}
	if res.ID == "" {
		return "", fmt.Errorf("%w: response carries no message id", ErrDispatchFailed)
	}

	return res.ID, nil
}

// Events returns the provider's event log entries for one message id.
func (c *MailgunClient) Events(ctx context.Context, messageID string) ([]MailEvent, error) {
	endpoint := fmt.Sprintf("%s/v3/%s/events?message-id=%s", c.baseURL, c.domain, url.QueryEscape(messageID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("query events: status %d: %s", resp.StatusCode, string(body))
	}

	var res struct {
		Items []MailEvent `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	return res.Items, nil
}

func renderReceipt(order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s for %s\n", order.ID, order.Email)
	fmt.Fprintf(&b, "Placed at %s\n\n", order.CreatedAt.Format(time.RFC1123))
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "%d x %s ($%s) = $%s\n", line.Quantity, line.Name, line.Price.StringFixed(2), line.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n", order.Total.StringFixed(2))
	return b.String()
}
