package logbookrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/familylog/internal/domain/logbook"
	apperrors "github.com/yanqian/familylog/pkg/errors"
	"github.com/yanqian/familylog/pkg/util"
)

// exerciseRepository runs the shared contract against any implementation.
func exerciseRepository(t *testing.T, repo logbook.Repository) {
	t.Helper()
	ctx := context.Background()
	dob := time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)

	neo, err := repo.AddPerson(ctx, logbook.Person{Name: "Neo", Type: logbook.PersonChild, DateOfBirth: &dob})
	require.NoError(t, err)
	require.NotEmpty(t, neo.ID)
	_, err = repo.AddPerson(ctx, logbook.Person{Name: "Ana", Type: logbook.PersonParent})
	require.NoError(t, err)

	got, err := repo.GetPerson(ctx, neo.ID)
	require.NoError(t, err)
	require.Equal(t, "Neo", got.Name)
	require.NotNil(t, got.DateOfBirth)
	require.True(t, dob.Equal(*got.DateOfBirth))

	_, err = repo.GetPerson(ctx, "missing")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	persons, err := repo.AllPersons(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 2)
	require.Equal(t, "Ana", persons[0].Name)
	require.Nil(t, persons[0].DateOfBirth)

	base := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	later, err := repo.AddEntry(ctx, logbook.Entry{
		PersonID:         neo.ID,
		Timestamp:        base.Add(time.Hour),
		RawText:          "Dao/la Sirup 5ml",
		Category:         logbook.CategoryMedicine,
		Tags:             []string{"medicine"},
		Temperature:      util.Ptr(38.5),
		MedicineGiven:    "Sirup",
		NextMedicineTime: util.Ptr(base.Add(7 * time.Hour)),
	})
	require.NoError(t, err)
	require.NotEmpty(t, later.ID)

	earlier, err := repo.AddEntry(ctx, logbook.Entry{PersonID: neo.ID, Timestamp: base, RawText: "Hranjenje", Category: logbook.CategoryFeeding})
	require.NoError(t, err)

	entries, err := repo.AllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, earlier.ID, entries[0].ID)
	require.Equal(t, later.ID, entries[1].ID)
	require.Equal(t, []string{"medicine"}, entries[1].Tags)
	require.InDelta(t, 38.5, *entries[1].Temperature, 0.0001)
	require.True(t, base.Add(7*time.Hour).Equal(*entries[1].NextMedicineTime))

	later.RawText = "Dao/la Sirup 10ml"
	require.NoError(t, repo.UpdateEntry(ctx, later))
	entries, err = repo.AllEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, "Dao/la Sirup 10ml", entries[1].RawText)

	err = repo.UpdateEntry(ctx, logbook.Entry{ID: "missing", Timestamp: base})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestDecodeEntryFoldsLegacyCategory(t *testing.T) {
	entry, err := decodeEntry([]byte(`{"id":"x","category":"KINDERGARTEN_SCHOOL","rawText":"vrtić","timestamp":"2026-10-17T08:00:00Z"}`))
	require.NoError(t, err)
	require.Equal(t, logbook.CategorySchool, entry.Category)
}
