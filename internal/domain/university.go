package domain

import "time"

type University struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:512;not null;index" json:"name"`
	Domains       []string  `gorm:"serializer:json" json:"domains"`
	Country       string    `gorm:"size:120;not null;index" json:"country"`
	AlphaTwoCode  string    `gorm:"size:2" json:"alpha_two_code"`
	StateProvince string    `gorm:"size:120" json:"state-province,omitempty"`
	WebPages      []string  `gorm:"serializer:json" json:"web_pages"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
