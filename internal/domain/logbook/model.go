package logbook

import (
	"strings"
	"time"
)

// Category is the single topical bucket assigned to a note.
type Category string

const (
	CategoryHealth      Category = "HEALTH"
	CategoryFeeding     Category = "FEEDING"
	CategorySleep       Category = "SLEEP"
	CategoryMood        Category = "MOOD"
	CategoryDevelopment Category = "DEVELOPMENT"
	CategorySchool      Category = "SCHOOL"
	CategoryHome        Category = "HOME"
	CategoryAuto        Category = "AUTO"
	CategoryFinance     Category = "FINANCE"
	CategoryWork        Category = "WORK"
	CategoryShopping    Category = "SHOPPING"
	CategorySmartHome   Category = "SMART_HOME"
	CategoryMedicine    Category = "MEDICINE"
	CategorySymptom     Category = "SYMPTOM"
	CategoryVaccination Category = "VACCINATION"
	CategoryDay         Category = "DAY"
	CategoryOther       Category = "OTHER"
)

// Categories lists every known category in declaration order.
var Categories = []Category{
	CategoryHealth, CategoryFeeding, CategorySleep, CategoryMood, CategoryDevelopment,
	CategorySchool, CategoryHome, CategoryAuto, CategoryFinance, CategoryWork,
	CategoryShopping, CategorySmartHome, CategoryMedicine, CategorySymptom,
	CategoryVaccination, CategoryDay, CategoryOther,
}

// ParseCategory maps stored or user supplied names onto a Category.
// Legacy names are folded into their current equivalent; anything unknown is OTHER.
func ParseCategory(raw string) Category {
	name := strings.ToUpper(strings.TrimSpace(raw))
	switch name {
	case "KINDERGARTEN_SCHOOL", "KINDERGARTEN":
		return CategorySchool
	case "HOUSE":
		return CategoryHome
	}
	for _, c := range Categories {
		if string(c) == name {
			return c
		}
	}
	return CategoryOther
}

// Mood is the optional emotional tone of a note.
type Mood string

const (
	MoodVeryGood Mood = "VERY_GOOD"
	MoodGood     Mood = "GOOD"
	MoodBad      Mood = "BAD"
	MoodVeryBad  Mood = "VERY_BAD"
)

// FeedingType distinguishes breast sides and bottle feeds.
type FeedingType string

const (
	FeedingBreastLeft  FeedingType = "BREAST_LEFT"
	FeedingBreastRight FeedingType = "BREAST_RIGHT"
	FeedingBottle      FeedingType = "BOTTLE"
)

// RawNote is the transcribed text handed to the engine.
type RawNote struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ClassifiedMetadata is produced once per note and never patched.
type ClassifiedMetadata struct {
	Category        Category     `json:"category"`
	Tags            []string     `json:"tags"`
	Mood            *Mood        `json:"mood,omitempty"`
	Temperature     *float64     `json:"temperature,omitempty"`
	Medicine        string       `json:"medicine,omitempty"`
	FeedingType     *FeedingType `json:"feedingType,omitempty"`
	FeedingAmountML *int         `json:"feedingAmountMl,omitempty"`
}

// Entry is a stored logbook record.
type Entry struct {
	ID       string `json:"id"`
	PersonID string `json:"personId,omitempty"`
	EntityID string `json:"entityId,omitempty"`
	// ChildID is the pre-person reference still present on old records.
	ChildID   string    `json:"childId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RawText   string    `json:"rawText"`
	Category  Category  `json:"category"`
	Tags      []string  `json:"tags,omitempty"`
	Mood      *Mood     `json:"mood,omitempty"`
	AdviceID  string    `json:"adviceId,omitempty"`

	ReminderDate *time.Time `json:"reminderDate,omitempty"`

	FeedingType     *FeedingType `json:"feedingType,omitempty"`
	FeedingAmountML *int         `json:"feedingAmountMl,omitempty"`

	Temperature           *float64   `json:"temperature,omitempty"`
	Symptoms              []string   `json:"symptoms,omitempty"`
	MedicineGiven         string     `json:"medicineGiven,omitempty"`
	MedicineDosage        string     `json:"medicineDosage,omitempty"`
	NextMedicineTime      *time.Time `json:"nextMedicineTime,omitempty"`
	MedicineIntervalHours int        `json:"medicineIntervalHours,omitempty"`

	VaccinationName     string     `json:"vaccinationName,omitempty"`
	NextVaccinationDate *time.Time `json:"nextVaccinationDate,omitempty"`

	ServiceType string   `json:"serviceType,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    string   `json:"currency,omitempty"`
}

// SubjectID returns the person the entry is about, preferring PersonID over the legacy ChildID.
func (e Entry) SubjectID() string {
	if e.PersonID != "" {
		return e.PersonID
	}
	return e.ChildID
}

// PersonType classifies family members.
type PersonType string

const (
	PersonParent      PersonType = "PARENT"
	PersonChild       PersonType = "CHILD"
	PersonOtherFamily PersonType = "OTHER_FAMILY_MEMBER"
	PersonPet         PersonType = "PET"
)

// Person is a family member entries can refer to.
type Person struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         PersonType `json:"type"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	Relationship string     `json:"relationship,omitempty"`
}
