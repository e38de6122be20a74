package recommendation

import "sort"

// Scorer ranks catalog universities against a user's favorites. It holds no
// per-request state and never mutates its inputs.
type Scorer struct {
	images *ImageResolver
}

// NewScorer creates a scorer; a nil resolver uses the default placeholders
func NewScorer(images *ImageResolver) *Scorer {
	if images == nil {
		images = NewImageResolver(ImageConfig{}, nil)
	}
	return &Scorer{images: images}
}

// Score ranks req.Catalog. With no favorites it falls back to a rating-only listing.
func (s *Scorer) Score(req Request) Response {
	resp := Response{
		DegreeType:   req.DegreeType,
		Location:     req.PreferredLocation,
		SearchRadius: req.SearchRadius,
	}

	if len(req.FavoriteSubjectIDs) == 0 {
		resp.Fallback = true
		resp.Results = s.fallback(req)
		return resp
	}

	var matchDegree func(string) bool
	if m, ok := DegreeMatcher(req.DegreeType); ok {
		matchDegree = m
	}

	results := make([]Result, 0, len(req.Catalog))
	for _, u := range req.Catalog {
		if _, excluded := req.ExcludedUniversityIDs[u.ID]; excluded {
			continue
		}
		if !LocationMatches(req.PreferredLocation, u.Location) {
			continue
		}

		subjects := make([]SubjectDetail, 0, len(u.Offerings))
		score := 0
		for _, o := range u.Offerings {
			if matchDegree != nil && !matchDegree(o.DegreeType) {
				continue
			}
			_, fav := req.FavoriteSubjectIDs[o.SubjectID]
			if fav {
				score++
			}
			subjects = append(subjects, SubjectDetail{Offering: o, IsUserFavorite: fav})
		}
		if len(subjects) == 0 {
			continue
		}

		r := s.result(u, subjects)
		r.MatchScore = score
		r.TotalMatches = len(req.FavoriteSubjectIDs)
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].Ratings > results[j].Ratings
	})

	resp.Results = results
	return resp
}

func (s *Scorer) fallback(req Request) []Result {
	results := make([]Result, 0, len(req.Catalog))
	for _, u := range req.Catalog {
		if _, excluded := req.ExcludedUniversityIDs[u.ID]; excluded {
			continue
		}
		if len(u.Offerings) == 0 {
			continue
		}
		subjects := make([]SubjectDetail, len(u.Offerings))
		for i, o := range u.Offerings {
			subjects[i] = SubjectDetail{Offering: o}
		}
		results = append(results, s.result(u, subjects))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Ratings > results[j].Ratings
	})
	return results
}

func (s *Scorer) result(u University, subjects []SubjectDetail) Result {
	return Result{
		ID:          u.ID,
		Name:        u.Name,
		Location:    u.Location,
		Description: u.Description,
		ImageURL:    s.images.Resolve(u),
		Ratings:     u.Ratings,
		WebsiteURL:  u.WebsiteURL,
		Subjects:    subjects,
	}
}
