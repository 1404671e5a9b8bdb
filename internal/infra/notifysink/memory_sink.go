package notifysink

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/familylog/internal/domain/reminder"
)

// MemorySink de-duplicates by key in process and records deliveries for tests/dev.
type MemorySink struct {
	mu     sync.Mutex
	ttl    time.Duration
	claims map[string]time.Time
	outbox []Envelope
	now    func() time.Time
}

// NewMemorySink builds a sink; ttl <= 0 keeps claims forever.
func NewMemorySink(ttl time.Duration) *MemorySink {
	return &MemorySink{
		ttl:    ttl,
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

// ShowReminder queues the reminder unless its key is still claimed.
func (s *MemorySink) ShowReminder(_ context.Context, r reminder.Reminder) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if expires, ok := s.claims[r.Key]; ok && (expires.IsZero() || now.Before(expires)) {
		return false, nil
	}
	var expires time.Time
	if s.ttl > 0 {
		expires = now.Add(s.ttl)
	}
	s.claims[r.Key] = expires
	copied := r
	s.outbox = append(s.outbox, Envelope{
		Action:         actionShow,
		Key:            r.Key,
		NotificationID: r.NotificationID,
		Reminder:       &copied,
		QueuedAt:       now,
	})
	return true, nil
}

// Cancel releases the key and records a cancel envelope.
func (s *MemorySink) Cancel(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, key)
	s.outbox = append(s.outbox, Envelope{
		Action:         actionCancel,
		Key:            key,
		NotificationID: reminder.NotificationID(key),
		QueuedAt:       s.now(),
	})
	return nil
}

// Outbox returns a copy of everything queued so far.
func (s *MemorySink) Outbox() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Envelope(nil), s.outbox...)
}

var _ reminder.Sink = (*MemorySink)(nil)
