package database

import (
	"github.com/univdir/universities-api/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Credential{},
		&domain.ResetToken{},
		&domain.University{},
	)
}
