package notifysink

import (
	"time"

	"github.com/yanqian/familylog/internal/domain/reminder"
)

const (
	actionShow   = "show"
	actionCancel = "cancel"
)

// Envelope is what the push gateway consumes from the delivery list.
type Envelope struct {
	Action         string             `json:"action"`
	Key            string             `json:"key"`
	NotificationID uint64             `json:"notificationId"`
	Reminder       *reminder.Reminder `json:"reminder,omitempty"`
	QueuedAt       time.Time          `json:"queuedAt"`
}
