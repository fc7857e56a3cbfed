package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type reminderKey struct {
	assignmentID uint
	kind         models.ReminderKind
}

// fakeReminderRepo mirrors the keyed-upsert and atomic-claim semantics of
// the real store so scheduler and sweep tests exercise the same contract.
type fakeReminderRepo struct {
	mu        sync.Mutex
	nextID    uint
	reminders map[reminderKey]*models.Reminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[reminderKey]*models.Reminder)}
}

func (f *fakeReminderRepo) Upsert(ctx context.Context, reminder *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := reminderKey{assignmentID: reminder.AssignmentID, kind: reminder.Kind}
	if existing, ok := f.reminders[key]; ok {
		existing.ScheduledFor = reminder.ScheduledFor
		existing.Processed = false
		reminder.ID = existing.ID
		return nil
	}

	f.nextID++
	reminder.ID = f.nextID
	stored := *reminder
	f.reminders[key] = &stored
	return nil
}

func (f *fakeReminderRepo) DeleteUnprocessed(ctx context.Context, assignmentID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key, reminder := range f.reminders {
		if reminder.AssignmentID == assignmentID && !reminder.Processed {
			delete(f.reminders, key)
		}
	}
	return nil
}

func (f *fakeReminderRepo) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var due []models.Reminder
	for _, reminder := range f.reminders {
		if reminder.Due(now) {
			due = append(due, *reminder)
		}
	}
	return due, nil
}

func (f *fakeReminderRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Reminder
	for _, reminder := range f.reminders {
		if reminder.AssignmentID == assignmentID {
			out = append(out, *reminder)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) Claim(ctx context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, reminder := range f.reminders {
		if reminder.ID == id {
			if reminder.Processed {
				return false, nil
			}
			reminder.Processed = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReminderRepo) get(assignmentID uint, kind models.ReminderKind) (models.Reminder, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reminder, ok := f.reminders[reminderKey{assignmentID: assignmentID, kind: kind}]
	if !ok {
		return models.Reminder{}, false
	}
	return *reminder, true
}

type fakeAssignmentRepo struct {
	assignments map[uint]models.Assignment
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, errors.New("assignment not found")
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) Upsert(ctx context.Context, assignment *models.Assignment) error {
	if f.assignments == nil {
		f.assignments = make(map[uint]models.Assignment)
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id uint) error {
	delete(f.assignments, id)
	return nil
}

type fakeExtensionRepo struct {
	extensions map[string]models.Extension
}

func (f *fakeExtensionRepo) Upsert(ctx context.Context, extension *models.Extension) error {
	if f.extensions == nil {
		f.extensions = make(map[string]models.Extension)
	}
	f.extensions[extension.RecipientID] = *extension
	return nil
}

func (f *fakeExtensionRepo) FindForRecipient(ctx context.Context, assignmentID uint, recipientID string) (*models.Extension, error) {
	if ext, ok := f.extensions[recipientID]; ok && ext.AssignmentID == assignmentID {
		return &ext, nil
	}
	return nil, nil
}

func (f *fakeExtensionRepo) MapByRecipient(ctx context.Context, assignmentID uint) (map[string]models.Extension, error) {
	out := make(map[string]models.Extension)
	for recipientID, ext := range f.extensions {
		if ext.AssignmentID == assignmentID {
			out[recipientID] = ext
		}
	}
	return out, nil
}

func (f *fakeExtensionRepo) DeleteByAssignment(ctx context.Context, assignmentID uint) error {
	for recipientID, ext := range f.extensions {
		if ext.AssignmentID == assignmentID {
			delete(f.extensions, recipientID)
		}
	}
	return nil
}

type fakeEnrollmentRepo struct {
	roster map[uint][]string
}

func (f *fakeEnrollmentRepo) ListRecipients(ctx context.Context, courseID uint) ([]string, error) {
	return f.roster[courseID], nil
}

func (f *fakeEnrollmentRepo) Add(ctx context.Context, enrollment *models.Enrollment) error {
	if f.roster == nil {
		f.roster = make(map[uint][]string)
	}
	f.roster[enrollment.CourseID] = append(f.roster[enrollment.CourseID], enrollment.RecipientID)
	return nil
}

type fakeSubmissionRepo struct {
	completed map[uint]map[string]struct{}
	records   int
}

func (f *fakeSubmissionRepo) Record(ctx context.Context, submission *models.Submission) error {
	f.records++
	if submission.Completed {
		if f.completed == nil {
			f.completed = make(map[uint]map[string]struct{})
		}
		if f.completed[submission.AssignmentID] == nil {
			f.completed[submission.AssignmentID] = make(map[string]struct{})
		}
		f.completed[submission.AssignmentID][submission.RecipientID] = struct{}{}
	}
	return nil
}

func (f *fakeSubmissionRepo) HasCompleted(ctx context.Context, assignmentID uint, recipientID string) (bool, error) {
	_, ok := f.completed[assignmentID][recipientID]
	return ok, nil
}

func (f *fakeSubmissionRepo) CompletedSet(ctx context.Context, assignmentID uint) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for recipientID := range f.completed[assignmentID] {
		set[recipientID] = struct{}{}
	}
	return set, nil
}

type fakePreferenceRepo struct {
	preferences map[string]models.NotificationPreference
	err         error
}

func (f *fakePreferenceRepo) Get(ctx context.Context, recipientID string) (models.NotificationPreference, error) {
	if f.err != nil {
		return models.NotificationPreference{}, f.err
	}
	if preference, ok := f.preferences[recipientID]; ok {
		return preference, nil
	}
	return models.DefaultPreference(recipientID), nil
}

func (f *fakePreferenceRepo) Put(ctx context.Context, preference *models.NotificationPreference) error {
	if f.preferences == nil {
		f.preferences = make(map[string]models.NotificationPreference)
	}
	f.preferences[preference.RecipientID] = *preference
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	nextID  uint
	records []models.NotificationRecord
}

func (f *fakeRecordRepo) Create(ctx context.Context, record *models.NotificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeRecordRepo) Finalize(ctx context.Context, id uint, status models.RecordStatus, sendErr string, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Status = status
			f.records[i].Error = sendErr
			f.records[i].CompletedAt = &completedAt
			return nil
		}
	}
	return errors.New("record not found")
}

func (f *fakeRecordRepo) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.NotificationRecord
	for _, record := range f.records {
		if record.RecipientID == recipientID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.NotificationRecord
	for _, record := range f.records {
		if record.AssignmentID == assignmentID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) byStatus(status models.RecordStatus) []models.NotificationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.NotificationRecord
	for _, record := range f.records {
		if record.Status == status {
			out = append(out, record)
		}
	}
	return out
}

type sentCall struct {
	recipientID string
	msg         message.Message
}

// fakeSender records sends and can fail for chosen recipients or block
// until the context expires.
type fakeSender struct {
	mu      sync.Mutex
	channel models.Channel
	failFor map[string]error
	block   bool
	calls   []sentCall
}

func (f *fakeSender) Channel() models.Channel {
	return f.channel
}

func (f *fakeSender) Send(ctx context.Context, recipientID string, msg message.Message) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err, ok := f.failFor[recipientID]; ok {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCall{recipientID: recipientID, msg: msg})
	return nil
}

func (f *fakeSender) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		out = append(out, call.recipientID)
	}
	return out
}
