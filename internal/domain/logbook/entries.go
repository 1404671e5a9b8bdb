package logbook

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMedicineInterval is used when a dose is logged without an interval.
const DefaultMedicineInterval = 6

// NewMedicineEntry builds a MEDICINE entry and schedules the next dose.
func NewMedicineEntry(personID, name, dosage string, givenAt time.Time, intervalHours int, notes string) Entry {
	if intervalHours <= 0 {
		intervalHours = DefaultMedicineInterval
	}
	next := givenAt.Add(time.Duration(intervalHours) * time.Hour)
	text := strings.TrimSpace(notes)
	if text == "" {
		text = strings.TrimSpace(fmt.Sprintf("Dao/la %s %s", name, dosage))
	}
	return Entry{
		PersonID:              personID,
		Timestamp:             givenAt,
		RawText:               text,
		Category:              CategoryMedicine,
		MedicineGiven:         name,
		MedicineDosage:        dosage,
		NextMedicineTime:      &next,
		MedicineIntervalHours: intervalHours,
	}
}

// IsMedicineEntry reports whether the entry records a dose.
func IsMedicineEntry(e Entry) bool {
	return e.MedicineGiven != "" && (e.Category == CategoryMedicine || e.Category == CategoryHealth)
}

// NextDose returns the scheduled next dose, if any.
func NextDose(e Entry) (time.Time, bool) {
	if !IsMedicineEntry(e) || e.NextMedicineTime == nil {
		return time.Time{}, false
	}
	return *e.NextMedicineTime, true
}

// NewSymptomEntry records a temperature and/or symptom list.
func NewSymptomEntry(personID string, temperature *float64, symptoms []string, at time.Time, notes string) Entry {
	category := CategoryHealth
	if temperature != nil || len(symptoms) > 0 {
		category = CategorySymptom
	}

	parts := make([]string, 0, 3)
	if temperature != nil {
		parts = append(parts, fmt.Sprintf("Temperatura %.1f°C", *temperature))
	}
	if len(symptoms) > 0 {
		parts = append(parts, "Simptomi: "+strings.Join(symptoms, ", "))
	}
	if n := strings.TrimSpace(notes); n != "" {
		parts = append(parts, n)
	}
	text := strings.Join(parts, ". ")
	if text == "" {
		text = "Simptom zapis"
	}

	entry := Entry{
		PersonID:    personID,
		Timestamp:   at,
		RawText:     text,
		Category:    category,
		Temperature: temperature,
	}
	if len(symptoms) > 0 {
		entry.Symptoms = append([]string(nil), symptoms...)
	}
	return entry
}

// IsSymptomEntry reports whether the entry carries symptom data.
func IsSymptomEntry(e Entry) bool {
	return (e.Temperature != nil || len(e.Symptoms) > 0) &&
		(e.Category == CategorySymptom || e.Category == CategoryHealth)
}

// IsFeedingEntry reports whether the entry logs a feed.
func IsFeedingEntry(e Entry) bool {
	return e.Category == CategoryFeeding || e.FeedingType != nil
}
