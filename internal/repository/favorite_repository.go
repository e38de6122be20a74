package repository

import (
	"context"
	"errors"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// ListSubjectIDs returns the favorite subject ids of a user in ascending order
func (r *FavoriteRepository) ListSubjectIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.FavoriteSubject{}).
		Scopes(OwnedBy(userID)).
		Order("subject_id").
		Pluck("subject_id", &ids).Error
	return ids, err
}

func (r *FavoriteRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.FavoriteSubject{}).
		Scopes(OwnedBy(userID)).
		Count(&count).Error
	return count, err
}

// Toggle removes the favorite if present, otherwise adds it, in one transaction.
// It reports whether the subject is a favorite afterwards.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID uuid.UUID, subjectID int64) (bool, error) {
	var favorite bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND subject_id = ?", userID, subjectID).
			Delete(&domain.FavoriteSubject{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			favorite = false
			return nil
		}

		favorite = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.FavoriteSubject{UserID: userID, SubjectID: subjectID}).Error
	})
	return favorite, err
}

// AddMany inserts favorites for a user, ignoring pairs that already exist
func (r *FavoriteRepository) AddMany(ctx context.Context, userID uuid.UUID, subjectIDs []int64) error {
	if len(subjectIDs) == 0 {
		return nil
	}
	rows := make([]domain.FavoriteSubject, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		rows = append(rows, domain.FavoriteSubject{UserID: userID, SubjectID: id})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// RoundTripResult records the outcome of each step of a favorite write check
type RoundTripResult struct {
	InsertErr error
	SelectErr error
	DeleteErr error
	Found     bool
}

var errRollback = errors.New("rollback")

// RoundTrip inserts, reads back and deletes a favorite inside a transaction that
// is always rolled back, so persistent state is never changed.
func (r *FavoriteRepository) RoundTrip(ctx context.Context, userID uuid.UUID, subjectID int64) (RoundTripResult, error) {
	var result RoundTripResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A savepoint lets the remaining steps run when the insert is rejected
		tx.SavePoint("roundtrip")
		result.InsertErr = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.FavoriteSubject{UserID: userID, SubjectID: subjectID}).Error
		if result.InsertErr != nil {
			tx.RollbackTo("roundtrip")
		}

		var count int64
		result.SelectErr = tx.Model(&domain.FavoriteSubject{}).
			Where("user_id = ? AND subject_id = ?", userID, subjectID).
			Count(&count).Error
		result.Found = count > 0

		result.DeleteErr = tx.Where("user_id = ? AND subject_id = ?", userID, subjectID).
			Delete(&domain.FavoriteSubject{}).Error
		return errRollback
	})
	if errors.Is(err, errRollback) {
		err = nil
	}
	return result, err
}
