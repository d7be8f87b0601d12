package database

import (
	"fmt"
	"strings"

	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/security"

	"gorm.io/gorm"
)

// Seed ensures a bootstrap user exists when BOOTSTRAP_USER_EMAIL and
// BOOTSTRAP_USER_PASSWORD are provided. The user is created without a
// credential when the password is empty; the registration flow retrofits
// a credential onto such pre-seeded users on first sign-up.
func Seed(db *gorm.DB, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}

	user := domain.User{FirstName: "Bootstrap", LastName: "User", Email: email}
	res := db.Where("email = ?", email).FirstOrCreate(&user)
	if res.Error != nil {
		return fmt.Errorf("seed bootstrap user: %w", res.Error)
	}
	if password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&domain.Credential{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, salt, err := security.GeneratePassword(password)
	if err != nil {
		return err
	}
	cred := domain.Credential{UserID: user.ID, PasswordHash: hash, PasswordSalt: salt}
	if err := db.Create(&cred).Error; err != nil {
		return fmt.Errorf("seed bootstrap credential: %w", err)
	}
	return nil
}
