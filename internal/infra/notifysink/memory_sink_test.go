package notifysink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/familylog/internal/domain/reminder"
)

func TestMemorySinkDeduplicatesByKey(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	sink := NewMemorySink(time.Hour)
	sink.now = func() time.Time { return now }
	ctx := context.Background()

	r := reminder.Reminder{Kind: reminder.KindMedicine, Key: "medicine_e1_100", NotificationID: reminder.NotificationID("medicine_e1_100")}
	shown, err := sink.ShowReminder(ctx, r)
	require.NoError(t, err)
	require.True(t, shown)

	shown, err = sink.ShowReminder(ctx, r)
	require.NoError(t, err)
	require.False(t, shown)

	now = now.Add(2 * time.Hour)
	shown, err = sink.ShowReminder(ctx, r)
	require.NoError(t, err)
	require.True(t, shown)

	out := sink.Outbox()
	require.Len(t, out, 2)
	require.Equal(t, actionShow, out[0].Action)
	require.Equal(t, r.NotificationID, out[0].NotificationID)
	require.Equal(t, "medicine_e1_100", out[0].Reminder.Key)
}

func TestMemorySinkCancelReleasesKey(t *testing.T) {
	sink := NewMemorySink(0)
	ctx := context.Background()
	r := reminder.Reminder{Key: "reminder_e2_today"}

	shown, err := sink.ShowReminder(ctx, r)
	require.NoError(t, err)
	require.True(t, shown)

	require.NoError(t, sink.Cancel(ctx, r.Key))
	out := sink.Outbox()
	require.Len(t, out, 2)
	require.Equal(t, actionCancel, out[1].Action)
	require.Nil(t, out[1].Reminder)
	require.Equal(t, reminder.NotificationID(r.Key), out[1].NotificationID)

	shown, err = sink.ShowReminder(ctx, r)
	require.NoError(t, err)
	require.True(t, shown)
}
