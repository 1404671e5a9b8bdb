package reminder

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies which rule produced a reminder.
type Kind string

const (
	KindFeeding       Kind = "feeding"
	KindFeedingUrgent Kind = "feeding_urgent"
	KindMedicine      Kind = "medicine"
	KindVaccination   Kind = "vaccination"
	KindAppointment   Kind = "appointment"
)

// Reminder is a notification the sink should show once per Key.
type Reminder struct {
	Kind           Kind      `json:"kind"`
	Key            string    `json:"key"`
	NotificationID uint64    `json:"notificationId"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	PersonID       string    `json:"personId,omitempty"`
	EntryID        string    `json:"entryId"`
	DueAt          time.Time `json:"dueAt"`
}

// NotificationID hashes a reminder key into the 64-bit id handed to the push layer.
func NotificationID(key string) uint64 {
	return xxhash.Sum64String(key)
}

func newReminder(kind Kind, key, title, body, personID, entryID string, due time.Time) Reminder {
	return Reminder{
		Kind:           kind,
		Key:            key,
		NotificationID: NotificationID(key),
		Title:          title,
		Body:           body,
		PersonID:       personID,
		EntryID:        entryID,
		DueAt:          due,
	}
}

// Session is the authenticated account a tick runs for.
type Session struct {
	Subject   string
	ExpiresAt time.Time
}

// SessionSource reports whether a tick currently has data access.
type SessionSource interface {
	ActiveSession(ctx context.Context) (Session, bool, error)
}

// Sink delivers reminders. ShowReminder returns false when the key was already shown.
type Sink interface {
	ShowReminder(ctx context.Context, r Reminder) (bool, error)
	Cancel(ctx context.Context, key string) error
}

// Config holds the tick cadence and the feeding windows.
type Config struct {
	Interval          time.Duration
	FeedingAfter      time.Duration
	FeedingUrgentFrom time.Duration
	FeedingGiveUp     time.Duration
}

// DefaultConfig returns the standard schedule: every 15 minutes, feeding at 3h, urgent after 6h, silent after 8h.
func DefaultConfig() Config {
	return Config{
		Interval:          15 * time.Minute,
		FeedingAfter:      3 * time.Hour,
		FeedingUrgentFrom: 6 * time.Hour,
		FeedingGiveUp:     8 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.FeedingAfter <= 0 {
		c.FeedingAfter = def.FeedingAfter
	}
	if c.FeedingUrgentFrom <= c.FeedingAfter {
		c.FeedingUrgentFrom = def.FeedingUrgentFrom
		if c.FeedingUrgentFrom <= c.FeedingAfter {
			c.FeedingUrgentFrom = c.FeedingAfter * 2
		}
	}
	if c.FeedingGiveUp <= c.FeedingUrgentFrom {
		c.FeedingGiveUp = c.FeedingUrgentFrom + 2*time.Hour
	}
	return c
}
