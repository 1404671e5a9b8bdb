package logbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseCategoryFoldsLegacyNames(t *testing.T) {
	require.Equal(t, CategorySchool, ParseCategory("KINDERGARTEN_SCHOOL"))
	require.Equal(t, CategoryHome, ParseCategory("house"))
	require.Equal(t, CategorySmartHome, ParseCategory(" smart_home "))
	require.Equal(t, CategoryOther, ParseCategory("garden"))
}

func TestAgeInYearsUsesCalendarRule(t *testing.T) {
	dob := time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)

	require.InDelta(t, 0.0, AgeInYears(dob, time.Date(2024, time.April, 19, 9, 0, 0, 0, time.UTC)), 1e-9)
	require.InDelta(t, 1.0/12.0, AgeInYears(dob, time.Date(2024, time.April, 20, 9, 0, 0, 0, time.UTC)), 1e-9)
	require.InDelta(t, 1.0+11.0/12.0, AgeInYears(dob, time.Date(2026, time.March, 19, 9, 0, 0, 0, time.UTC)), 1e-9)
	require.InDelta(t, 2.0, AgeInYears(dob, time.Date(2026, time.March, 20, 9, 0, 0, 0, time.UTC)), 1e-9)
}

func TestFeedingAndBabyThresholds(t *testing.T) {
	dob := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	require.True(t, CanHaveFeeding(dob, time.Date(2026, time.March, 19, 0, 0, 0, 0, time.UTC)))
	require.False(t, CanHaveFeeding(dob, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)))
	require.True(t, IsBabyAge(dob, time.Date(2025, time.March, 19, 0, 0, 0, 0, time.UTC)))
	require.False(t, IsBabyAge(dob, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, int64(365), AgeInDays(dob, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)))
}

func TestNewMedicineEntrySchedulesNextDose(t *testing.T) {
	given := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

	entry := NewMedicineEntry("p1", "Panadol", "5ml", given, 0, "")
	require.Equal(t, CategoryMedicine, entry.Category)
	require.Equal(t, DefaultMedicineInterval, entry.MedicineIntervalHours)
	require.Equal(t, "Dao/la Panadol 5ml", entry.RawText)

	next, ok := NextDose(entry)
	require.True(t, ok)
	require.Equal(t, given.Add(6*time.Hour), next)

	entry.MedicineGiven = ""
	_, ok = NextDose(entry)
	require.False(t, ok)
}

func TestNewSymptomEntryBuildsText(t *testing.T) {
	temp := 38.5
	at := time.Date(2026, time.January, 5, 20, 0, 0, 0, time.UTC)

	entry := NewSymptomEntry("p1", &temp, []string{"kašalj", "curenje nosa"}, at, "loše spava")
	require.Equal(t, CategorySymptom, entry.Category)
	require.Equal(t, "Temperatura 38.5°C. Simptomi: kašalj, curenje nosa. loše spava", entry.RawText)
	require.True(t, IsSymptomEntry(entry))

	empty := NewSymptomEntry("p1", nil, nil, at, "")
	require.Equal(t, CategoryHealth, empty.Category)
	require.Equal(t, "Simptom zapis", empty.RawText)
	require.False(t, IsSymptomEntry(empty))
}

func TestSubjectIDFallsBackToChildID(t *testing.T) {
	require.Equal(t, "c1", Entry{ChildID: "c1"}.SubjectID())
	require.Equal(t, "p1", Entry{PersonID: "p1", ChildID: "c1"}.SubjectID())
}
