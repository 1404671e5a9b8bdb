package notifysink

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/familylog/internal/domain/reminder"
)

// ValkeySink claims reminder keys with SET NX and pushes claimed reminders onto a
// list the push gateway pops from.
type ValkeySink struct {
	client      valkey.Client
	prefix      string
	deliveryKey string
	ttl         time.Duration
	logger      *slog.Logger
}

// NewValkeySink constructs the sink.
func NewValkeySink(client valkey.Client, prefix, deliveryKey string, ttl time.Duration, logger *slog.Logger) *ValkeySink {
	if prefix == "" {
		prefix = "familylog:reminder:"
	}
	if deliveryKey == "" {
		deliveryKey = "familylog:notifications"
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &ValkeySink{
		client:      client,
		prefix:      prefix,
		deliveryKey: deliveryKey,
		ttl:         ttl,
		logger:      logger.With("component", "notifysink.valkey"),
	}
}

// ShowReminder returns false when another tick already claimed the key.
func (s *ValkeySink) ShowReminder(ctx context.Context, r reminder.Reminder) (bool, error) {
	claim := s.client.B().Set().Key(s.claimKey(r.Key)).Value(time.Now().UTC().Format(time.RFC3339)).Nx().ExSeconds(int64(s.ttl.Seconds())).Build()
	if err := s.client.Do(ctx, claim).Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	copied := r
	if err := s.push(ctx, Envelope{
		Action:         actionShow,
		Key:            r.Key,
		NotificationID: r.NotificationID,
		Reminder:       &copied,
		QueuedAt:       time.Now().UTC(),
	}); err != nil {
		// Release the claim so the next tick retries the delivery.
		_ = s.client.Do(ctx, s.client.B().Del().Key(s.claimKey(r.Key)).Build()).Error()
		return false, err
	}
	return true, nil
}

// Cancel drops the claim and tells the gateway to withdraw the notification.
func (s *ValkeySink) Cancel(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.claimKey(key)).Build()).Error(); err != nil {
		return err
	}
	return s.push(ctx, Envelope{
		Action:         actionCancel,
		Key:            key,
		NotificationID: reminder.NotificationID(key),
		QueuedAt:       time.Now().UTC(),
	})
}

func (s *ValkeySink) push(ctx context.Context, env Envelope) error {
	encoded, err := json.Marshal(env)
	if err != nil {
		return err
	}
	cmd := s.client.B().Lpush().Key(s.deliveryKey).Element(string(encoded)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		s.logger.Warn("notification push failed", "key", env.Key, "action", env.Action, "error", err)
		return err
	}
	return nil
}

func (s *ValkeySink) claimKey(key string) string {
	return s.prefix + key
}

var _ reminder.Sink = (*ValkeySink)(nil)
