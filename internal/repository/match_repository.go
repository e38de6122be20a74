package repository

import (
	"context"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts the match unless the user already matched the university.
// On conflict match is filled with the stored row and created is false.
func (r *MatchRepository) Create(ctx context.Context, match *domain.Match) (created bool, err error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(match)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	err = r.db.WithContext(ctx).
		Where("user_id = ? AND university_id = ?", match.UserID, match.UniversityID).
		First(match).Error
	return false, err
}

// Delete removes the match only if it belongs to userID and returns the affected row count
func (r *MatchRepository) Delete(ctx context.Context, id int64, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		Delete(&domain.Match{})
	return res.RowsAffected, res.Error
}

// ListByUser returns the user's matches newest first with university and offerings
func (r *MatchRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Match, error) {
	var matches []domain.Match
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Preload("University").
		Scopes(withOfferings("University.")).
		Order("matched_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) UniversityIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Match{}).
		Scopes(OwnedBy(userID)).
		Pluck("university_id", &ids).Error
	return ids, err
}

func (r *MatchRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Match{}).
		Scopes(OwnedBy(userID)).
		Count(&count).Error
	return count, err
}
