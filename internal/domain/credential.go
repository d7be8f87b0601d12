package domain

import "time"

// Credential stores the salted password hash for exactly one user. The salt
// is kept in its own column so a login can recompute the hash with the
// stored salt and compare.
type Credential struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	PasswordHash string     `gorm:"size:1024;not null" json:"-"`
	PasswordSalt string     `gorm:"size:256;not null" json:"-"`
	LastAccess   *time.Time `json:"last_access,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
