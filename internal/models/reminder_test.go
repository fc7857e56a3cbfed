package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReminderKindTriggerAt(t *testing.T) {
	due := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)

	require.Equal(t, due.Add(-48*time.Hour), ReminderDueIn48h.TriggerAt(due))
	require.Equal(t, due.Add(-24*time.Hour), ReminderDueIn24h.TriggerAt(due))
	require.Equal(t, due.Add(time.Hour), ReminderOverdue.TriggerAt(due))
}

func TestReminderKindValid(t *testing.T) {
	for _, kind := range ReminderKinds() {
		require.True(t, kind.Valid())
	}
	require.False(t, ReminderKind("weekly_digest").Valid())
}

func TestReminderDue(t *testing.T) {
	scheduled := time.Date(2026, 3, 8, 17, 0, 0, 0, time.UTC)

	reminder := Reminder{ScheduledFor: scheduled}
	require.True(t, reminder.Due(scheduled))
	require.True(t, reminder.Due(scheduled.Add(time.Minute)))
	require.False(t, reminder.Due(scheduled.Add(-time.Minute)))

	reminder.Processed = true
	require.False(t, reminder.Due(scheduled.Add(time.Hour)))
}
