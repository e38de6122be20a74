package domain

import (
	"time"

	"github.com/google/uuid"
)

// DegreeCategory is the coarse degree filter a user picks on their profile
type DegreeCategory string

const (
	DegreeBachelor       DegreeCategory = "bachelor"
	DegreeMaster         DegreeCategory = "master"
	DegreePhD            DegreeCategory = "phd"
	DegreeApprenticeship DegreeCategory = "apprenticeship"
)

// DefaultSearchRadius is the radius (km) stored for profiles that never set one
const DefaultSearchRadius = 50

// Profile holds the preferences of an identity-provider user (1:1, same id)
type Profile struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Email             string          `gorm:"type:varchar(320)"`
	FullName          string          `gorm:"type:varchar(200);column:full_name"`
	PreferredLocation string          `gorm:"type:varchar(200);column:preferred_location"`
	Radius            int             `gorm:"not null;default:50"`
	DegreeType        *DegreeCategory `gorm:"type:varchar(50);column:degree_type"`
	Bio               string          `gorm:"type:text"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Profile) TableName() string { return "profiles" }

// Subject is a catalog entry; DegreeType holds the literal catalog string ("Bachelor", "Doktor", ...)
type Subject struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"type:varchar(200);not null"`
	DegreeType string `gorm:"type:varchar(50);not null;column:degree_type"`
	Duration   string `gorm:"type:varchar(50)"`
}

func (Subject) TableName() string { return "subjects" }

// University is a catalog entry with its subject offerings
type University struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Location    string    `gorm:"type:varchar(200)"`
	Description string    `gorm:"type:text"`
	ImageURL    string    `gorm:"type:varchar(1000);column:image_url"`
	Ratings     float64   `gorm:"type:numeric;not null;default:0"`
	WebsiteURL  string    `gorm:"type:varchar(1000);column:website_url"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Offerings []UniversitySubject `gorm:"foreignKey:UniversityID"`
}

func (University) TableName() string { return "universities" }

// UniversitySubject records that a university teaches a subject, with offering detail
type UniversitySubject struct {
	ID                int64    `gorm:"primaryKey;autoIncrement"`
	UniversityID      int64    `gorm:"not null;uniqueIndex:idx_university_subject;column:university_id"`
	SubjectID         int64    `gorm:"not null;uniqueIndex:idx_university_subject;column:subject_id"`
	UniqueFeatures    string   `gorm:"type:text;column:unique_features"`
	EntryRequirements string   `gorm:"type:text;column:entry_requirements"`
	Subject           *Subject `gorm:"foreignKey:SubjectID"`
}

func (UniversitySubject) TableName() string { return "university_subjects" }

// FavoriteSubject marks a subject a user is interested in. The pair is the primary key.
type FavoriteSubject struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id"`
	SubjectID int64     `gorm:"primaryKey;autoIncrement:false;column:subject_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FavoriteSubject) TableName() string { return "user_favorite_subjects" }

// Match is a right-swipe of a user on a university
type Match struct {
	ID           int64       `gorm:"primaryKey;autoIncrement"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_match_user_university;column:user_id"`
	UniversityID int64       `gorm:"not null;uniqueIndex:idx_match_user_university;column:university_id"`
	MatchedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:matched_at"`
	University   *University `gorm:"foreignKey:UniversityID"`
}

func (Match) TableName() string { return "matches" }
