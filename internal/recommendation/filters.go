package recommendation

import "strings"

// degreeMatcher reports whether a literal catalog degree type belongs to a coarse category
type degreeMatcher func(degreeType string) bool

func exactDegree(literal string) degreeMatcher {
	return func(degreeType string) bool { return degreeType == literal }
}

var degreeMatchers = map[string]degreeMatcher{
	"bachelor": exactDegree("Bachelor"),
	"master":   exactDegree("Master"),
	"phd": func(degreeType string) bool {
		return strings.Contains(strings.ToLower(degreeType), "doktor")
	},
	"apprenticeship": exactDegree("Ausbildung"),
}

// DegreeMatcher returns the matcher for a coarse category, false when the category does not filter
func DegreeMatcher(category string) (func(string) bool, bool) {
	m, ok := degreeMatchers[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return nil, false
	}
	return m, true
}

// LocationMatches compares a preferred location with a university location.
// Either string containing the other counts as a match, ignoring case and surrounding space.
func LocationMatches(preferred, location string) bool {
	p := strings.ToLower(strings.TrimSpace(preferred))
	if p == "" {
		return true
	}
	l := strings.ToLower(strings.TrimSpace(location))
	if l == "" {
		return false
	}
	return strings.Contains(l, p) || strings.Contains(p, l)
}
