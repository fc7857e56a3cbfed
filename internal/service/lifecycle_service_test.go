package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-notify/internal/channel"
	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/models"
)

type lifecycleFixture struct {
	reminders   *fakeReminderRepo
	assignments *fakeAssignmentRepo
	extensions  *fakeExtensionRepo
	enrollments *fakeEnrollmentRepo
	submissions *fakeSubmissionRepo
	inApp       *fakeSender
	service     LifecycleService
}

func newLifecycleFixture(roster []string) *lifecycleFixture {
	f := &lifecycleFixture{
		reminders:   newFakeReminderRepo(),
		assignments: &fakeAssignmentRepo{assignments: make(map[uint]models.Assignment)},
		extensions:  &fakeExtensionRepo{},
		enrollments: &fakeEnrollmentRepo{roster: map[uint][]string{10: roster}},
		submissions: &fakeSubmissionRepo{},
		inApp:       &fakeSender{channel: models.ChannelInApp},
	}

	fanout := NewNotificationFanout(&fakePreferenceRepo{}, &fakeRecordRepo{}, []channel.Sender{f.inApp}, time.Second, 2, testLogger())
	scheduler := NewReminderScheduler(f.reminders, testLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())
	f.service = NewLifecycleService(f.assignments, f.submissions, f.extensions, f.enrollments, scheduler, fanout, validate, testLogger())
	return f
}

func publishPayload(due time.Time) dto.AssignmentEventRequest {
	return dto.AssignmentEventRequest{
		AssignmentID: 1,
		CourseID:     10,
		CourseName:   "CS101",
		Title:        "Essay",
		DueDate:      due.Format(time.RFC3339),
		Published:    true,
	}
}

func TestAssignmentUpsertedSchedulesReminders(t *testing.T) {
	f := newLifecycleFixture([]string{"s-1"})
	ctx := context.Background()

	due := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	require.NoError(t, f.service.AssignmentUpserted(ctx, publishPayload(due)))

	stored, err := f.assignments.GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, stored.Published)
	require.Equal(t, models.LatePolicyAccept, stored.LatePolicy)

	reminders, err := f.reminders.ListByAssignment(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reminders, 3)
}

func TestAssignmentUpsertedUnpublishedCancels(t *testing.T) {
	f := newLifecycleFixture([]string{"s-1"})
	ctx := context.Background()

	due := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	require.NoError(t, f.service.AssignmentUpserted(ctx, publishPayload(due)))

	payload := publishPayload(due)
	payload.Published = false
	require.NoError(t, f.service.AssignmentUpserted(ctx, payload))

	reminders, err := f.reminders.ListByAssignment(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, reminders)
}

func TestAssignmentUpsertedAnnouncesToRoster(t *testing.T) {
	f := newLifecycleFixture([]string{"s-1", "s-2"})
	ctx := context.Background()

	payload := publishPayload(time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second))
	payload.Announce = true
	require.NoError(t, f.service.AssignmentUpserted(ctx, payload))

	require.ElementsMatch(t, []string{"s-1", "s-2"}, f.inApp.sentTo())
}

func TestAssignmentUpsertedRejectsInvalidPayload(t *testing.T) {
	f := newLifecycleFixture(nil)

	payload := publishPayload(time.Now().Add(time.Hour))
	payload.Title = ""
	require.Error(t, f.service.AssignmentUpserted(context.Background(), payload))
}

func TestAssignmentRemovedDropsStateAndReminders(t *testing.T) {
	f := newLifecycleFixture([]string{"s-1"})
	ctx := context.Background()

	due := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	require.NoError(t, f.service.AssignmentUpserted(ctx, publishPayload(due)))
	require.NoError(t, f.extensions.Upsert(ctx, &models.Extension{AssignmentID: 1, RecipientID: "s-1", NewDueDate: due.Add(time.Hour)}))

	require.NoError(t, f.service.AssignmentRemoved(ctx, dto.AssignmentRemovedRequest{AssignmentID: 1}))

	reminders, err := f.reminders.ListByAssignment(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, reminders)

	extensions, err := f.extensions.MapByRecipient(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, extensions)

	_, err = f.assignments.GetByID(ctx, 1)
	require.Error(t, err)
}

func TestSubmissionReceivedRecordsAndNotifies(t *testing.T) {
	f := newLifecycleFixture([]string{"s-1"})
	ctx := context.Background()

	due := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	require.NoError(t, f.service.AssignmentUpserted(ctx, publishPayload(due)))
	f.inApp.calls = nil

	require.NoError(t, f.service.SubmissionReceived(ctx, dto.SubmissionEventRequest{
		AssignmentID: 1,
		RecipientID:  "s-1",
		Completed:    true,
	}))

	done, err := f.submissions.HasCompleted(ctx, 1, "s-1")
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, []string{"s-1"}, f.inApp.sentTo())
}

func TestSubmissionGradedUnknownAssignment(t *testing.T) {
	f := newLifecycleFixture(nil)

	err := f.service.SubmissionGraded(context.Background(), dto.SubmissionEventRequest{
		AssignmentID: 42,
		RecipientID:  "s-1",
		Grade:        "88/100",
	})
	require.Error(t, err)
}

func TestExtensionGrantedStoresOverrideAndNotifies(t *testing.T) {
	f := newLifecycleFixture([]string{"s-1"})
	ctx := context.Background()

	due := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	require.NoError(t, f.service.AssignmentUpserted(ctx, publishPayload(due)))
	f.inApp.calls = nil

	newDue := due.Add(48 * time.Hour)
	require.NoError(t, f.service.ExtensionGranted(ctx, dto.ExtensionGrantedRequest{
		AssignmentID: 1,
		RecipientID:  "s-1",
		NewDueDate:   newDue.Format(time.RFC3339),
		Reason:       "illness",
	}))

	stored, err := f.extensions.FindForRecipient(ctx, 1, "s-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.True(t, newDue.Equal(stored.NewDueDate))
	require.Equal(t, []string{"s-1"}, f.inApp.sentTo())
}

func TestExtensionRequestedNotifiesStaff(t *testing.T) {
	f := newLifecycleFixture([]string{"s-1"})
	ctx := context.Background()

	due := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	require.NoError(t, f.service.AssignmentUpserted(ctx, publishPayload(due)))
	f.inApp.calls = nil

	require.NoError(t, f.service.ExtensionRequested(ctx, dto.ExtensionRequestedRequest{
		AssignmentID:  1,
		RequesterID:   "s-1",
		RequesterName: "Dana",
		Reason:        "illness",
		NotifyIDs:     []string{"t-1", "t-2"},
	}))

	require.ElementsMatch(t, []string{"t-1", "t-2"}, f.inApp.sentTo())
}
