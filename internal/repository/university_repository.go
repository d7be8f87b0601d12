package repository

import (
	"errors"
	"strings"

	"github.com/univdir/universities-api/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUniversityNotFound = errors.New("university not found")
	ErrUniversityExists   = errors.New("university already exists")
)

type UniversityRepository interface {
	Create(university *domain.University) error
	FindByID(id uint) (*domain.University, error)
	FindByName(name string) (*domain.University, error)
	FindByLocation(country, stateProvince, name string) (*domain.University, error)
	ListPaged(country string, page PageRequest) (*PageResult[domain.University], error)
	Update(university *domain.University) error
	DeleteByID(id uint) error
	SaveAll(universities []domain.University) error
}

type GormUniversityRepository struct{ db *gorm.DB }

func NewUniversityRepository(db *gorm.DB) UniversityRepository {
	return &GormUniversityRepository{db: db}
}

func (r *GormUniversityRepository) Create(university *domain.University) error {
	existing, err := r.FindByLocation(university.Country, university.StateProvince, university.Name)
	if err != nil && !errors.Is(err, ErrUniversityNotFound) {
		return err
	}
	if existing != nil {
		return ErrUniversityExists
	}
	return r.db.Create(university).Error
}

func (r *GormUniversityRepository) FindByID(id uint) (*domain.University, error) {
	var u domain.University
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUniversityRepository) FindByName(name string) (*domain.University, error) {
	var u domain.University
	if err := r.db.Where("name = ?", name).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUniversityRepository) FindByLocation(country, stateProvince, name string) (*domain.University, error) {
	var u domain.University
	err := r.db.Where("country = ? AND state_province = ? AND name = ?", country, stateProvince, name).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListPaged returns one page of universities, optionally filtered by
// country (case-insensitive exact match). Total deliberately counts the
// whole collection regardless of the filter; clients page the filtered
// data against the global total.
func (r *GormUniversityRepository) ListPaged(country string, page PageRequest) (*PageResult[domain.University], error) {
	p := normalizePageRequest(page)

	var total int64
	if err := r.db.Model(&domain.University{}).Count(&total).Error; err != nil {
		return nil, err
	}

	q := r.db.Model(&domain.University{})
	if country != "" {
		q = q.Where("LOWER(country) = ?", strings.ToLower(country))
	}

	var data []domain.University
	offset := p.Limit * (p.Page - 1)
	if err := q.Order("id ASC").Limit(p.Limit).Offset(offset).Find(&data).Error; err != nil {
		return nil, err
	}
	if data == nil {
		data = []domain.University{}
	}

	return &PageResult[domain.University]{
		Data:  data,
		Page:  p.Page,
		Total: total,
		Limit: p.Limit,
	}, nil
}

func (r *GormUniversityRepository) Update(university *domain.University) error {
	return r.db.Save(university).Error
}

func (r *GormUniversityRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.University{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUniversityNotFound
	}
	return nil
}

// SaveAll persists an ingestion batch in one transaction. Records that
// already carry an ID update in place, the rest insert. A single
// failure rolls back the whole batch.
func (r *GormUniversityRepository) SaveAll(universities []domain.University) error {
	if len(universities) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range universities {
			u := &universities[i]
			if u.ID != 0 {
				if err := tx.Save(u).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(u).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
