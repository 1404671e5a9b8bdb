package journal

import (
	"context"
	"time"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/logbook"
)

// NoteRequest carries one transcribed note plus the optional fields the user filled in.
type NoteRequest struct {
	PersonID              string     `json:"personId"`
	Text                  string     `json:"text"`
	Timestamp             *time.Time `json:"timestamp,omitempty"`
	MedicineIntervalHours int        `json:"medicineIntervalHours,omitempty"`
	ReminderDate          *time.Time `json:"reminderDate,omitempty"`
	ServiceType           string     `json:"serviceType,omitempty"`
	Amount                *float64   `json:"amount,omitempty"`
	Currency              string     `json:"currency,omitempty"`
}

// NoteResult is the stored entry with the advice picked for it.
type NoteResult struct {
	Entry    logbook.Entry              `json:"entry"`
	Metadata logbook.ClassifiedMetadata `json:"metadata"`
	Advice   *advice.Template           `json:"advice,omitempty"`
}

// MedicineRequest logs a dose given to a person.
type MedicineRequest struct {
	PersonID      string     `json:"personId"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	GivenAt       *time.Time `json:"givenAt,omitempty"`
	IntervalHours int        `json:"intervalHours"`
	Notes         string     `json:"notes"`
}

// SymptomRequest logs a temperature reading and/or symptoms.
type SymptomRequest struct {
	PersonID    string     `json:"personId"`
	Temperature *float64   `json:"temperature,omitempty"`
	Symptoms    []string   `json:"symptoms"`
	At          *time.Time `json:"at,omitempty"`
	Notes       string     `json:"notes"`
}

// ReminderCanceller withdraws reminders scheduled from an entry.
type ReminderCanceller interface {
	Cancel(ctx context.Context, entry logbook.Entry) error
}
