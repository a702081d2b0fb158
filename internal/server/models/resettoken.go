package models

import "time"

// ResetToken is a single-use password-reset grant.
type ResetToken struct {
	ID         int64
	Token      string
	UserID     string
	ExpiryDate time.Time
	Used       bool
	CreatedAt  time.Time
}

// ValidAt reports whether the token may still be consumed at now.
func (t *ResetToken) ValidAt(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiryDate)
}
