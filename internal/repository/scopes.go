package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy restricts a query to rows of the given user
func OwnedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// withOfferings preloads a university's offerings and their subjects in id order
func withOfferings(prefix string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Preload(prefix+"Offerings", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("university_subjects.id")
			}).
			Preload(prefix + "Offerings.Subject")
	}
}
