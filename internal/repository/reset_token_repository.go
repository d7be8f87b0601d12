package repository

import (
	"errors"

	"github.com/univdir/universities-api/internal/domain"

	"gorm.io/gorm"
)

var ErrResetTokenNotFound = errors.New("reset token not found")

type ResetTokenRepository interface {
	Create(token *domain.ResetToken) error
	FindByUserID(userID uint) (*domain.ResetToken, error)
	FindByToken(token string) (*domain.ResetToken, error)
	DeleteByID(id uint) error
}

type GormResetTokenRepository struct{ db *gorm.DB }

func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &GormResetTokenRepository{db: db}
}

func (r *GormResetTokenRepository) Create(token *domain.ResetToken) error {
	return r.db.Create(token).Error
}

func (r *GormResetTokenRepository) FindByUserID(userID uint) (*domain.ResetToken, error) {
	var t domain.ResetToken
	if err := r.db.Where("user_id = ?", userID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *GormResetTokenRepository) FindByToken(token string) (*domain.ResetToken, error) {
	var t domain.ResetToken
	if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *GormResetTokenRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.ResetToken{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResetTokenNotFound
	}
	return nil
}
