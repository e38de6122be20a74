package repository

import (
	"context"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UniversityRepository struct {
	db *gorm.DB
}

func NewUniversityRepository(db *gorm.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// ListWithOfferings returns every university with its offerings, ordered by id
func (r *UniversityRepository) ListWithOfferings(ctx context.Context) ([]domain.University, error) {
	var universities []domain.University
	err := r.db.WithContext(ctx).
		Scopes(withOfferings("")).
		Order("universities.id").
		Find(&universities).Error
	return universities, err
}

func (r *UniversityRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.University{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateImageURL sets the stored image; returns gorm.ErrRecordNotFound for unknown ids
func (r *UniversityRepository) UpdateImageURL(ctx context.Context, id int64, imageURL string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.University{}).
		Where("id = ?", id).
		Update("image_url", imageURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Upsert inserts the university or updates the one with the same name. Offerings are not touched.
func (r *UniversityRepository) Upsert(ctx context.Context, uni *domain.University) (created bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.University
		res := tx.Where("name = ?", uni.Name).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			created = true
			return tx.Omit(clause.Associations).Create(uni).Error
		}
		uni.ID = existing.ID
		return tx.Model(&existing).Updates(map[string]interface{}{
			"location":    uni.Location,
			"description": uni.Description,
			"image_url":   uni.ImageURL,
			"ratings":     uni.Ratings,
			"website_url": uni.WebsiteURL,
		}).Error
	})
	return created, err
}

// UpsertOffering links a subject to a university, updating the offering detail if the link exists
func (r *UniversityRepository) UpsertOffering(ctx context.Context, offering *domain.UniversitySubject) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "university_id"}, {Name: "subject_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"unique_features", "entry_requirements"}),
		}).
		Create(offering).Error
}

// Truncate removes the whole catalog including user rows that reference it
func (r *UniversityRepository) Truncate(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&domain.Match{},
			&domain.FavoriteSubject{},
			&domain.UniversitySubject{},
			&domain.University{},
			&domain.Subject{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
