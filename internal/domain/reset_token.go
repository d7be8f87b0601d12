package domain

import "time"

// ResetToken is a single-use password-reset secret. The unique index on
// UserID enforces at most one live token per user; ResendAt gates how soon
// a replacement may be requested while a token is outstanding.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Token     string    `gorm:"size:512;not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	ResendAt  time.Time `gorm:"not null" json:"resend_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *ResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *ResetToken) ResendAllowed(now time.Time) bool {
	return !now.Before(t.ResendAt)
}
