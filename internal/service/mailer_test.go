package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomm/pizza-delivery/internal/model"
)

func testOrder() *model.Order {
	return &model.Order{
		ID:    "55512",
		Email: "a@b.com",
		Lines: []model.ResolvedLine{
			{
				ItemID:    "pizza_margherita",
				Name:      "Margherita",
				Type:      "pizza",
				Price:     decimal.RequireFromString("9.50"),
				Quantity:  2,
				LineTotal: decimal.RequireFromString("19.00"),
			},
		},
		Total:     decimal.RequireFromString("19.00"),
		CreatedAt: time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC),
	}
}

func TestSendReceipt(t *testing.T) {
	var gotText, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mg.example.com/messages", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "key-test", pass)

		require.NoError(t, r.ParseForm())
		gotTo = r.PostForm.Get("to")
		gotText = r.PostForm.Get("text")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"<msg_1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	client := NewMailgunClient(srv.URL, "mg.example.com", "key-test", "Pizza <no-reply@mg.example.com>")
	id, err := client.SendReceipt(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Equal(t, "<msg_1@mg.example.com>", id)
	assert.Equal(t, "a@b.com", gotTo)
	assert.Contains(t, gotText, "Order 55512 for a@b.com")
	assert.Contains(t, gotText, "2 x Margherita ($9.50) = $19.00")
	assert.Contains(t, gotText, "Total: $19.00")
}

func TestSendReceiptNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewMailgunClient(srv.URL, "mg.example.com", "bad-key", "no-reply@mg.example.com")
	_, err := client.SendReceipt(context.Background(), testOrder())
	assert.ErrorIs(t, err, ErrDispatchFailed)
}

func TestSendReceiptMissingMessageID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	client := NewMailgunClient(srv.URL, "mg.example.com", "key-test", "no-reply@mg.example.com")
	_, err := client.SendReceipt(context.Background(), testOrder())
	assert.ErrorIs(t, err, ErrDispatchFailed)
}

func TestEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mg.example.com/events", r.URL.Path)
		assert.Equal(t, "<msg_1@mg.example.com>", r.URL.Query().Get("message-id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"event":"accepted","timestamp":1756576800},{"event":"delivered","timestamp":1756576815}]}`))
	}))
	defer srv.Close()

	client := NewMailgunClient(srv.URL, "mg.example.com", "key-test", "no-reply@mg.example.com")
	events, err := client.Events(context.Background(), "<msg_1@mg.example.com>")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "accepted", events[0].Event)
	assert.Equal(t, "delivered", events[1].Event)
}

func TestEventsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewMailgunClient(srv.URL, "mg.example.com", "key-test", "no-reply@mg.example.com")
	_, err := client.Events(context.Background(), "<msg_1@mg.example.com>")
	assert.Error(t, err)
}
