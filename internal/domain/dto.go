package domain

import "github.com/google/uuid"

// DTOs for API responses and requests. Timestamps are ISO 8601 strings.

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SubjectDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	DegreeType string `json:"degreeType"`
	Duration   string `json:"duration,omitempty"`
}

// OfferingDTO is a subject as taught at a specific university
type OfferingDTO struct {
	SubjectID         int64  `json:"subjectId"`
	Name              string `json:"name"`
	DegreeType        string `json:"degreeType"`
	Duration          string `json:"duration,omitempty"`
	UniqueFeatures    string `json:"uniqueFeatures,omitempty"`
	EntryRequirements string `json:"entryRequirements,omitempty"`
}

type UniversityDTO struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Location    string        `json:"location"`
	Description string        `json:"description,omitempty"`
	ImageURL    string        `json:"imageUrl"`
	Ratings     float64       `json:"ratings"`
	WebsiteURL  string        `json:"websiteUrl,omitempty"`
	Subjects    []OfferingDTO `json:"subjects"`
}

type RecommendedSubjectDTO struct {
	OfferingDTO
	IsUserFavorite bool `json:"isUserFavorite"`
}

// RecommendationDTO is one swipe card
type RecommendationDTO struct {
	ID           int64                   `json:"id"`
	Name         string                  `json:"name"`
	Location     string                  `json:"location"`
	Description  string                  `json:"description,omitempty"`
	ImageURL     string                  `json:"imageUrl"`
	Ratings      float64                 `json:"ratings"`
	WebsiteURL   string                  `json:"websiteUrl,omitempty"`
	MatchScore   int                     `json:"matchScore"`
	TotalMatches int                     `json:"totalMatches"`
	Subjects     []RecommendedSubjectDTO `json:"subjects"`
}

type RecommendationFiltersDTO struct {
	DegreeType string `json:"degreeType,omitempty"`
	Location   string `json:"location,omitempty"`
	Radius     int    `json:"radius"`
}

type RecommendationsResponse struct {
	Universities []RecommendationDTO      `json:"universities"`
	Count        int                      `json:"count"`
	Fallback     bool                     `json:"fallback"`
	Filters      RecommendationFiltersDTO `json:"filters"`
}

type MatchDTO struct {
	ID           int64          `json:"id"`
	UniversityID int64          `json:"universityId"`
	MatchedAt    string         `json:"matchedAt"`
	University   *UniversityDTO `json:"university,omitempty"`
}

type CreateMatchRequest struct {
	UniversityID int64 `json:"universityId" validate:"required,gt=0"`
}

type CreateMatchResponse struct {
	Match   MatchDTO `json:"match"`
	Created bool     `json:"created"`
}

// MatchFilter narrows the match list
type MatchFilter struct {
	Search   string
	Category string
}

type FavoritesResponse struct {
	SubjectIDs []int64 `json:"subjectIds"`
}

type FavoriteToggleResponse struct {
	SubjectID int64 `json:"subjectId"`
	Favorite  bool  `json:"favorite"`
}

type ProfileDTO struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"fullName"`
	PreferredLocation string    `json:"preferredLocation"`
	Radius            int       `json:"radius"`
	DegreeType        string    `json:"degreeType,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	CreatedAt         string    `json:"createdAt"`
	UpdatedAt         string    `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	FullName          string `json:"fullName" validate:"max=200"`
	PreferredLocation string `json:"preferredLocation" validate:"max=200"`
	Radius            int    `json:"radius" validate:"gte=0,lte=500"`
	DegreeType        string `json:"degreeType" validate:"omitempty,oneof=bachelor master phd apprenticeship"`
	Bio               string `json:"bio" validate:"max=2000"`
}

type RegisterRequest struct {
	Email              string  `json:"email" validate:"required,email,max=320"`
	Password           string  `json:"password" validate:"required,min=6,max=72"`
	FullName           string  `json:"fullName" validate:"required,max=200"`
	DegreeType         string  `json:"degreeType" validate:"omitempty,oneof=bachelor master phd apprenticeship"`
	PreferredLocation  string  `json:"preferredLocation" validate:"max=200"`
	Radius             *int    `json:"radius" validate:"omitempty,gte=0,lte=500"`
	FavoriteSubjectIDs []int64 `json:"favoriteSubjectIds" validate:"required,min=1,dive,gt=0"`
}

type RegisterResponse struct {
	UserID               uuid.UUID   `json:"userId"`
	Email                string      `json:"email"`
	ConfirmationRequired bool        `json:"confirmationRequired"`
	Session              *SessionDTO `json:"session,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SessionDTO struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
	UserID       string `json:"userId,omitempty"`
}

type MeResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"emailConfirmed"`
	CreatedAt      string    `json:"createdAt,omitempty"`
}

// DiagnosticStep is the outcome of one self-check step
type DiagnosticStep struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type DiagnosticsResponse struct {
	UserID          uuid.UUID        `json:"userId"`
	Email           string           `json:"email"`
	ProfileExists   bool             `json:"profileExists"`
	FavoriteCount   int64            `json:"favoriteCount"`
	MatchCount      int64            `json:"matchCount"`
	CatalogSubjects int              `json:"catalogSubjects"`
	Steps           []DiagnosticStep `json:"steps"`
}

type ImageUploadResponse struct {
	UniversityID int64  `json:"universityId"`
	ImageURL     string `json:"imageUrl"`
}
