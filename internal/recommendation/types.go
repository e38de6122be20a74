// Package recommendation ranks universities for a user by how many of their
// favorite subjects each university offers.
package recommendation

// Offering is one subject taught at a university, flattened with the subject's catalog data
type Offering struct {
	SubjectID         int64
	Name              string
	DegreeType        string
	Duration          string
	UniqueFeatures    string
	EntryRequirements string
}

// University is a scorer input: a catalog university with its offerings
type University struct {
	ID          int64
	Name        string
	Location    string
	Description string
	ImageURL    string
	Ratings     float64
	WebsiteURL  string
	Offerings   []Offering
}

// Request carries everything a scoring run depends on. Sets are keyed by id.
type Request struct {
	FavoriteSubjectIDs    map[int64]struct{}
	ExcludedUniversityIDs map[int64]struct{}
	Catalog               []University

	// DegreeType is a coarse category (bachelor, master, phd, apprenticeship); empty or unknown disables the filter
	DegreeType string
	// PreferredLocation is matched as a substring in either direction
	PreferredLocation string
	// SearchRadius is echoed back but not geometrically applied
	SearchRadius int
}

// SubjectDetail is an offering as shown on a recommendation card
type SubjectDetail struct {
	Offering
	IsUserFavorite bool
}

// Result is a ranked university
type Result struct {
	ID          int64
	Name        string
	Location    string
	Description string
	ImageURL    string
	Ratings     float64
	WebsiteURL  string

	MatchScore   int
	TotalMatches int
	Subjects     []SubjectDetail
}

// Response is the ranked output of a scoring run
type Response struct {
	Results []Result
	// Fallback is set when the user has no favorites and results are ranked by rating only
	Fallback     bool
	DegreeType   string
	Location     string
	SearchRadius int
}

// IDSet builds a lookup set from a slice of ids
func IDSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
