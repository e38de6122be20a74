package repository

import (
	"context"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"gorm.io/gorm"
)

type SubjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) List(ctx context.Context) ([]domain.Subject, error) {
	var subjects []domain.Subject
	err := r.db.WithContext(ctx).Order("name, id").Find(&subjects).Error
	return subjects, err
}

// ExistingIDs returns the subset of ids that exist in the catalog
func (r *SubjectRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var existing []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Subject{}).
		Where("id IN ?", ids).
		Pluck("id", &existing).Error
	return existing, err
}

// Upsert inserts the subject or updates the duration of the one with the same name and degree
func (r *SubjectRepository) Upsert(ctx context.Context, subject *domain.Subject) (created bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Subject
		res := tx.Where("name = ? AND degree_type = ?", subject.Name, subject.DegreeType).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			created = true
			return tx.Create(subject).Error
		}
		subject.ID = existing.ID
		return tx.Model(&existing).Update("duration", subject.Duration).Error
	})
	return created, err
}
