package model

import "time"

// HistoryEntry records one completed order in a user's permanent history.
type HistoryEntry struct {
	ChargeID  string `json:"charge_id"`
	MessageID string `json:"message_id"`
}

type User struct {
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	PasswordHash []byte         `json:"password_hash,omitempty"`
	Admin        bool           `json:"admin,omitempty"`
	Orders       []HistoryEntry `json:"orders,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Sanitized returns a copy safe to send back to clients.
func (u User) Sanitized() User {
	u.PasswordHash = nil
	return u
}
