package mapper

import (
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/identity"
	"github.com/FreakyLetsFail/uni-swipe/internal/recommendation"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// ToSubjectDTO converts Subject to SubjectDTO
func ToSubjectDTO(subject *domain.Subject) domain.SubjectDTO {
	return domain.SubjectDTO{
		ID:         subject.ID,
		Name:       subject.Name,
		DegreeType: subject.DegreeType,
		Duration:   subject.Duration,
	}
}

// ToOfferingDTO flattens an offering with its subject; a missing subject yields only the id
func ToOfferingDTO(offering *domain.UniversitySubject) domain.OfferingDTO {
	dto := domain.OfferingDTO{
		SubjectID:         offering.SubjectID,
		UniqueFeatures:    offering.UniqueFeatures,
		EntryRequirements: offering.EntryRequirements,
	}
	if offering.Subject != nil {
		dto.Name = offering.Subject.Name
		dto.DegreeType = offering.Subject.DegreeType
		dto.Duration = offering.Subject.Duration
	}
	return dto
}

// ToUniversityDTO converts University with its offerings; imageURL overrides the stored image
func ToUniversityDTO(uni *domain.University, imageURL string) domain.UniversityDTO {
	subjects := make([]domain.OfferingDTO, 0, len(uni.Offerings))
	for i := range uni.Offerings {
		subjects = append(subjects, ToOfferingDTO(&uni.Offerings[i]))
	}
	return domain.UniversityDTO{
		ID:          uni.ID,
		Name:        uni.Name,
		Location:    uni.Location,
		Description: uni.Description,
		ImageURL:    imageURL,
		Ratings:     uni.Ratings,
		WebsiteURL:  uni.WebsiteURL,
		Subjects:    subjects,
	}
}

// ToRecommendationUniversity converts a catalog university into scorer input
func ToRecommendationUniversity(uni *domain.University) recommendation.University {
	offerings := make([]recommendation.Offering, 0, len(uni.Offerings))
	for i := range uni.Offerings {
		o := ToOfferingDTO(&uni.Offerings[i])
		offerings = append(offerings, recommendation.Offering{
			SubjectID:         o.SubjectID,
			Name:              o.Name,
			DegreeType:        o.DegreeType,
			Duration:          o.Duration,
			UniqueFeatures:    o.UniqueFeatures,
			EntryRequirements: o.EntryRequirements,
		})
	}
	return recommendation.University{
		ID:          uni.ID,
		Name:        uni.Name,
		Location:    uni.Location,
		Description: uni.Description,
		ImageURL:    uni.ImageURL,
		Ratings:     uni.Ratings,
		WebsiteURL:  uni.WebsiteURL,
		Offerings:   offerings,
	}
}

// ToRecommendationCatalog converts the whole catalog into scorer input
func ToRecommendationCatalog(universities []domain.University) []recommendation.University {
	out := make([]recommendation.University, 0, len(universities))
	for i := range universities {
		out = append(out, ToRecommendationUniversity(&universities[i]))
	}
	return out
}

// ToRecommendationsResponse converts scorer output to the API response
func ToRecommendationsResponse(resp recommendation.Response) domain.RecommendationsResponse {
	cards := make([]domain.RecommendationDTO, 0, len(resp.Results))
	for _, r := range resp.Results {
		subjects := make([]domain.RecommendedSubjectDTO, 0, len(r.Subjects))
		for _, s := range r.Subjects {
			subjects = append(subjects, domain.RecommendedSubjectDTO{
				OfferingDTO: domain.OfferingDTO{
					SubjectID:         s.SubjectID,
					Name:              s.Name,
					DegreeType:        s.DegreeType,
					Duration:          s.Duration,
					UniqueFeatures:    s.UniqueFeatures,
					EntryRequirements: s.EntryRequirements,
				},
				IsUserFavorite: s.IsUserFavorite,
			})
		}
		cards = append(cards, domain.RecommendationDTO{
			ID:           r.ID,
			Name:         r.Name,
			Location:     r.Location,
			Description:  r.Description,
			ImageURL:     r.ImageURL,
			Ratings:      r.Ratings,
			WebsiteURL:   r.WebsiteURL,
			MatchScore:   r.MatchScore,
			TotalMatches: r.TotalMatches,
			Subjects:     subjects,
		})
	}
	return domain.RecommendationsResponse{
		Universities: cards,
		Count:        len(cards),
		Fallback:     resp.Fallback,
		Filters: domain.RecommendationFiltersDTO{
			DegreeType: resp.DegreeType,
			Location:   resp.Location,
			Radius:     resp.SearchRadius,
		},
	}
}

// ToMatchDTO converts Match; the university is included when preloaded
func ToMatchDTO(match *domain.Match, imageURL string) domain.MatchDTO {
	dto := domain.MatchDTO{
		ID:           match.ID,
		UniversityID: match.UniversityID,
		MatchedAt:    formatTime(match.MatchedAt),
	}
	if match.University != nil {
		uni := ToUniversityDTO(match.University, imageURL)
		dto.University = &uni
	}
	return dto
}

// ToProfileDTO converts Profile to ProfileDTO
func ToProfileDTO(profile *domain.Profile) domain.ProfileDTO {
	dto := domain.ProfileDTO{
		ID:                profile.ID,
		Email:             profile.Email,
		FullName:          profile.FullName,
		PreferredLocation: profile.PreferredLocation,
		Radius:            profile.Radius,
		Bio:               profile.Bio,
		CreatedAt:         formatTime(profile.CreatedAt),
		UpdatedAt:         formatTime(profile.UpdatedAt),
	}
	if profile.DegreeType != nil {
		dto.DegreeType = string(*profile.DegreeType)
	}
	return dto
}

// ToSessionDTO converts an identity session
func ToSessionDTO(session *identity.Session) *domain.SessionDTO {
	if session == nil {
		return nil
	}
	dto := &domain.SessionDTO{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		ExpiresIn:    session.ExpiresIn,
		ExpiresAt:    session.ExpiresAt,
	}
	if session.User != nil {
		dto.UserID = session.User.ID.String()
	}
	return dto
}

// ToMeResponse converts an identity user
func ToMeResponse(user *identity.User) domain.MeResponse {
	resp := domain.MeResponse{
		ID:             user.ID,
		Email:          user.Email,
		EmailConfirmed: user.EmailConfirmedAt != nil,
	}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = formatTime(user.CreatedAt)
	}
	return resp
}
