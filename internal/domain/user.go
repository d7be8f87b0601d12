package domain

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:120;not null" json:"firstName"`
	LastName  string    `gorm:"size:120;not null" json:"lastName"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName is the "first last" form used in reset emails and token claims.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
