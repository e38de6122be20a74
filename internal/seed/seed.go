// Package seed imports a JSON catalog of subjects and universities.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"gorm.io/gorm"
)

// Catalog is the seed file layout
type Catalog struct {
	Subjects     []Subject    `json:"subjects"`
	Universities []University `json:"universities"`
}

type Subject struct {
	Name       string `json:"name"`
	DegreeType string `json:"degreeType"`
	Duration   string `json:"duration"`
}

type University struct {
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl"`
	Ratings     float64    `json:"ratings"`
	WebsiteURL  string     `json:"websiteUrl"`
	Offerings   []Offering `json:"offerings"`
}

// Offering references a subject of the same file by name and degree
type Offering struct {
	Subject           string `json:"subject"`
	DegreeType        string `json:"degreeType"`
	UniqueFeatures    string `json:"uniqueFeatures"`
	EntryRequirements string `json:"entryRequirements"`
}

// Result describes what happened to one university
type Result struct {
	Name      string
	Location  string
	Offerings int
	Created   bool
}

// Summary is returned by Import
type Summary struct {
	SubjectsCreated int
	SubjectsUpdated int
	Universities    []Result
}

// Decode reads and checks a catalog
func Decode(r io.Reader) (*Catalog, error) {
	var cat Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func subjectKey(name, degree string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(degree))
}

func (c *Catalog) validate() error {
	known := make(map[string]bool, len(c.Subjects))
	for i, s := range c.Subjects {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.DegreeType) == "" {
			return fmt.Errorf("subject %d: name and degreeType are required", i)
		}
		known[subjectKey(s.Name, s.DegreeType)] = true
	}
	for _, u := range c.Universities {
		if strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("university without name")
		}
		if u.Ratings < 0 || u.Ratings > 5 {
			return fmt.Errorf("university %q: ratings must be between 0 and 5", u.Name)
		}
		for _, o := range u.Offerings {
			if !known[subjectKey(o.Subject, o.DegreeType)] {
				return fmt.Errorf("university %q offers unknown subject %q (%s)", u.Name, o.Subject, o.DegreeType)
			}
		}
	}
	return nil
}

// Import upserts the catalog in one transaction. With truncate the existing
// catalog is removed first, together with the matches and favorites pointing at it.
func Import(ctx context.Context, db *gorm.DB, cat *Catalog, truncate bool) (*Summary, error) {
	summary := &Summary{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subjects := repository.NewSubjectRepository(tx)
		universities := repository.NewUniversityRepository(tx)

		if truncate {
			if err := universities.Truncate(ctx); err != nil {
				return fmt.Errorf("failed to truncate catalog: %w", err)
			}
		}

		ids := make(map[string]int64, len(cat.Subjects))
		for _, s := range cat.Subjects {
			subject := &domain.Subject{
				Name:       strings.TrimSpace(s.Name),
				DegreeType: strings.TrimSpace(s.DegreeType),
				Duration:   strings.TrimSpace(s.Duration),
			}
			created, err := subjects.Upsert(ctx, subject)
			if err != nil {
				return fmt.Errorf("failed to upsert subject %q: %w", s.Name, err)
			}
			if created {
				summary.SubjectsCreated++
			} else {
				summary.SubjectsUpdated++
			}
			ids[subjectKey(s.Name, s.DegreeType)] = subject.ID
		}

		for _, u := range cat.Universities {
			uni := &domain.University{
				Name:        strings.TrimSpace(u.Name),
				Location:    strings.TrimSpace(u.Location),
				Description: u.Description,
				ImageURL:    strings.TrimSpace(u.ImageURL),
				Ratings:     u.Ratings,
				WebsiteURL:  strings.TrimSpace(u.WebsiteURL),
			}
			created, err := universities.Upsert(ctx, uni)
			if err != nil {
				return fmt.Errorf("failed to upsert university %q: %w", u.Name, err)
			}
			for _, o := range u.Offerings {
				err := universities.UpsertOffering(ctx, &domain.UniversitySubject{
					UniversityID:      uni.ID,
					SubjectID:         ids[subjectKey(o.Subject, o.DegreeType)],
					UniqueFeatures:    o.UniqueFeatures,
					EntryRequirements: o.EntryRequirements,
				})
				if err != nil {
					return fmt.Errorf("failed to link %q to %q: %w", o.Subject, u.Name, err)
				}
			}
			summary.Universities = append(summary.Universities, Result{
				Name:      uni.Name,
				Location:  uni.Location,
				Offerings: len(u.Offerings),
				Created:   created,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
