package model

import "time"

// Token is the stored side of an issued credential. The JWT handed to the
// client carries the same id, so deleting this record revokes the token
// before its signed expiry.
type Token struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Admin   bool      `json:"admin,omitempty"`
	Expires time.Time `json:"expires"`
}

func (t Token) Expired(now time.Time) bool {
	return now.After(t.Expires)
}
