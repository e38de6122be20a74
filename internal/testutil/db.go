// Package testutil provides an in-memory database and catalog fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/database"
	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the schema migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serializes transactions
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestSubject inserts a subject
func CreateTestSubject(t *testing.T, db *gorm.DB, name, degreeType string) *domain.Subject {
	t.Helper()
	subject := &domain.Subject{Name: name, DegreeType: degreeType, Duration: "6 Semester"}
	require.NoError(t, db.Create(subject).Error)
	return subject
}

// CreateTestUniversity inserts a university offering the given subjects
func CreateTestUniversity(t *testing.T, db *gorm.DB, name, location string, ratings float64, subjects ...*domain.Subject) *domain.University {
	t.Helper()
	uni := &domain.University{
		Name:       name,
		Location:   location,
		Ratings:    ratings,
		WebsiteURL: "https://www." + uuid.NewString()[:8] + ".de",
	}
	require.NoError(t, db.Omit(clause.Associations).Create(uni).Error)

	for _, s := range subjects {
		offering := &domain.UniversitySubject{
			UniversityID:      uni.ID,
			SubjectID:         s.ID,
			UniqueFeatures:    "Praxisnah",
			EntryRequirements: "Abitur",
		}
		require.NoError(t, db.Omit(clause.Associations).Create(offering).Error)
	}
	return uni
}

// CreateTestProfile inserts a profile for a fresh user id
func CreateTestProfile(t *testing.T, db *gorm.DB, email string) *domain.Profile {
	t.Helper()
	profile := &domain.Profile{
		ID:     uuid.New(),
		Email:  email,
		Radius: domain.DefaultSearchRadius,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}
