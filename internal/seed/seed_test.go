package seed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/FreakyLetsFail/uni-swipe/internal/seed"
	"github.com/FreakyLetsFail/uni-swipe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
  "subjects": [
    {"name": "Informatik", "degreeType": "Bachelor", "duration": "6 Semester"},
    {"name": "Informatik", "degreeType": "Master", "duration": "4 Semester"},
    {"name": "Maschinenbau", "degreeType": "Bachelor", "duration": "7 Semester"}
  ],
  "universities": [
    {
      "name": "TU München",
      "location": "München",
      "ratings": 4.7,
      "websiteUrl": "https://www.tum.de",
      "offerings": [
        {"subject": "Informatik", "degreeType": "Bachelor", "uniqueFeatures": "Garching Campus"},
        {"subject": "Informatik", "degreeType": "Master"}
      ]
    },
    {
      "name": "RWTH Aachen",
      "location": "Aachen",
      "ratings": 4.5,
      "offerings": [{"subject": "Maschinenbau", "degreeType": "Bachelor"}]
    }
  ]
}`

func TestDecode_RejectsUnknownOffering(t *testing.T) {
	_, err := seed.Decode(strings.NewReader(`{
	  "subjects": [{"name": "Physik", "degreeType": "Bachelor"}],
	  "universities": [{"name": "Uni Jena", "offerings": [{"subject": "Chemie", "degreeType": "Bachelor"}]}]
	}`))
	assert.ErrorContains(t, err, "unknown subject")
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := seed.Decode(strings.NewReader(`{"subjects": [], "colleges": []}`))
	assert.Error(t, err)
}

func TestImport_IsRepeatable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	cat, err := seed.Decode(strings.NewReader(catalogJSON))
	require.NoError(t, err)

	first, err := seed.Import(ctx, db, cat, false)
	require.NoError(t, err)
	assert.Equal(t, 3, first.SubjectsCreated)
	require.Len(t, first.Universities, 2)
	assert.True(t, first.Universities[0].Created)
	assert.Equal(t, 2, first.Universities[0].Offerings)

	cat.Universities[0].Ratings = 4.9
	second, err := seed.Import(ctx, db, cat, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.SubjectsCreated)
	assert.Equal(t, 3, second.SubjectsUpdated)
	assert.False(t, second.Universities[0].Created)

	unis, err := repository.NewUniversityRepository(db).ListWithOfferings(ctx)
	require.NoError(t, err)
	require.Len(t, unis, 2)
	var offerings int64
	require.NoError(t, db.Model(&domain.UniversitySubject{}).Count(&offerings).Error)
	assert.EqualValues(t, 3, offerings)

	for _, u := range unis {
		if u.Name == "TU München" {
			assert.InDelta(t, 4.9, u.Ratings, 0.001)
		}
	}
}

func TestImport_Truncate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	testutil.CreateTestUniversity(t, db, "Alte Hochschule", "Bonn", 3.0)

	cat, err := seed.Decode(strings.NewReader(catalogJSON))
	require.NoError(t, err)
	_, err = seed.Import(ctx, db, cat, true)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.University{}).Where("name = ?", "Alte Hochschule").Count(&count).Error)
	assert.Zero(t, count)
}
