package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-notify/internal/models"
)

func TestRecordFinalizeSetsOutcome(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	record := models.NotificationRecord{
		RecipientID:  "s-1",
		AssignmentID: 9,
		Channel:      models.ChannelEmail,
		Category:     "deadlines",
		Type:         "ASSIGNMENT_DUE_REMINDER_24H",
		Status:       models.RecordPending,
		AttemptedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, &record))

	completed := time.Now().UTC()
	require.NoError(t, repo.Finalize(ctx, record.ID, models.RecordFailed, "smtp timeout", completed))

	records, err := repo.ListByAssignment(ctx, 9)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.RecordFailed, records[0].Status)
	require.Equal(t, "smtp timeout", records[0].Error)
	require.NotNil(t, records[0].CompletedAt)
}

func TestRecordListByRecipientClampsLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record := models.NotificationRecord{
			RecipientID: "s-2",
			Channel:     models.ChannelInApp,
			Category:    "submissions",
			Type:        "SUBMISSION_RECEIVED",
			Status:      models.RecordSent,
			AttemptedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Create(ctx, &record))
	}

	records, err := repo.ListByRecipient(ctx, "s-2", -5, -1)
	require.NoError(t, err)
	require.Len(t, records, 3)

	records, err = repo.ListByRecipient(ctx, "s-2", 2, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestInboxMarkReadIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepository(db)
	ctx := context.Background()

	notification := models.InboxNotification{RecipientID: "s-3", Type: "SUBMISSION_GRADED", Title: "Graded", Body: "92/100"}
	require.NoError(t, repo.Create(ctx, &notification))

	unread, err := repo.CountUnread(ctx, "s-3")
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	first, err := repo.MarkRead(ctx, notification.ID, "s-3")
	require.NoError(t, err)
	require.True(t, first.Read)

	second, err := repo.MarkRead(ctx, notification.ID, "s-3")
	require.NoError(t, err)
	require.True(t, second.Read)

	unread, err = repo.CountUnread(ctx, "s-3")
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestInboxMarkReadScopedToRecipient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepository(db)
	ctx := context.Background()

	notification := models.InboxNotification{RecipientID: "s-4", Type: "EXTENSION_GRANTED", Title: "Extended", Body: "New deadline"}
	require.NoError(t, repo.Create(ctx, &notification))

	_, err := repo.MarkRead(ctx, notification.ID, "someone-else")
	require.Error(t, err)
}
