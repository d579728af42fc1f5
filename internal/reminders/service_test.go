package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// fakeSnoozer is an in-memory reminder backend.
type fakeSnoozer struct {
	records   map[string]mailbox.ReminderRecord
	createErr error
	listCalls int
}

func newFakeSnoozer() *fakeSnoozer {
	return &fakeSnoozer{records: make(map[string]mailbox.ReminderRecord)}
}

func (f *fakeSnoozer) CreateReminder(ctx context.Context, tok *mailbox.Token, reminderID, threadID string, messageIDs []string, triggerAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records[reminderID] = mailbox.ReminderRecord{
		ReminderID: reminderID,
		ThreadID:   threadID,
		MessageIDs: messageIDs,
		TriggerAt:  triggerAt,
	}
	return nil
}

func (f *fakeSnoozer) CancelReminder(ctx context.Context, tok *mailbox.Token, reminderID string) error {
	if _, ok := f.records[reminderID]; !ok {
		return mailbox.NewProviderError(tok.Provider, "cancelReminder", 404, "reminder not found")
	}
	delete(f.records, reminderID)
	return nil
}

func (f *fakeSnoozer) ListReminders(ctx context.Context, tok *mailbox.Token, limit int) ([]mailbox.ReminderRecord, error) {
	f.listCalls++
	var out []mailbox.ReminderRecord
	for _, r := range f.records {
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// readOnlyProvider stubs the one provider method the snooze flow uses.
// Calling anything else panics, which is the point: snooze must not
// mutate the mailbox.
type readOnlyProvider struct {
	mailbox.Provider
	threads map[string]*mailbox.ThreadDetail
	reads   int
}

func (p *readOnlyProvider) ReadThread(ctx context.Context, tok *mailbox.Token, threadID string) (*mailbox.ThreadDetail, error) {
	p.reads++
	detail, ok := p.threads[threadID]
	if !ok {
		return nil, mailbox.NewProviderError(mailbox.ProviderGmail, "readThread", 404, "thread not found")
	}
	return detail, nil
}

func threadWithMessages(id string, msgIDs ...string) *mailbox.ThreadDetail {
	detail := &mailbox.ThreadDetail{Thread: mailbox.Thread{ID: id, Subject: "Subject " + id}}
	for _, m := range msgIDs {
		detail.Messages = append(detail.Messages, mailbox.Message{ID: m, ThreadID: id})
	}
	return detail
}

func testToken() *mailbox.Token {
	return &mailbox.Token{AccessToken: "tok", Provider: mailbox.ProviderGmail, Email: "user@example.com"}
}

func TestSnoozeResolvesMessageSet(t *testing.T) {
	snoozer := newFakeSnoozer()
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{
		"t1": threadWithMessages("t1", "m1", "m2"),
	}}
	svc := NewService(snoozer, nil, WithIDGenerator(func() string { return "rem-fixed" }))

	trigger := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	id, err := svc.Snooze(context.Background(), testToken(), provider, "t1", trigger)
	require.NoError(t, err)
	assert.Equal(t, "rem-fixed", id)

	rec, ok := snoozer.records["rem-fixed"]
	require.True(t, ok)
	assert.Equal(t, "t1", rec.ThreadID)
	assert.Equal(t, []string{"m1", "m2"}, rec.MessageIDs)
	assert.Equal(t, trigger, rec.TriggerAt)
}

func TestSnoozeMissingThread(t *testing.T) {
	svc := NewService(newFakeSnoozer(), nil)
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{}}

	_, err := svc.Snooze(context.Background(), testToken(), provider, "gone", time.Now())
	require.Error(t, err)
	assert.True(t, mailbox.IsKind(err, mailbox.KindNotFound))
}

func TestSnoozeDoesNotDeduplicate(t *testing.T) {
	snoozer := newFakeSnoozer()
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{
		"t1": threadWithMessages("t1", "m1"),
	}}
	n := 0
	svc := NewService(snoozer, nil, WithIDGenerator(func() string {
		n++
		return map[int]string{1: "rem-1", 2: "rem-2"}[n]
	}))

	ctx := context.Background()
	_, err := svc.Snooze(ctx, testToken(), provider, "t1", time.Now())
	require.NoError(t, err)
	_, err = svc.Snooze(ctx, testToken(), provider, "t1", time.Now())
	require.NoError(t, err)

	assert.Len(t, snoozer.records, 2, "racing snoozes both create reminders")
}

func TestUnsnoozeWithExplicitID(t *testing.T) {
	snoozer := newFakeSnoozer()
	snoozer.records["rem-1"] = mailbox.ReminderRecord{ReminderID: "rem-1", ThreadID: "t1"}
	provider := &readOnlyProvider{}
	svc := NewService(snoozer, nil)

	require.NoError(t, svc.Unsnooze(context.Background(), testToken(), provider, "t1", "rem-1"))
	assert.Empty(t, snoozer.records)
	assert.Zero(t, provider.reads, "explicit ID skips recovery entirely")
}

func TestUnsnoozeRecoversFromThreadSummary(t *testing.T) {
	snoozer := newFakeSnoozer()
	snoozer.records["rem-1"] = mailbox.ReminderRecord{ReminderID: "rem-1", ThreadID: "t1"}

	detail := threadWithMessages("t1", "m1")
	detail.ReminderID = "rem-1"
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{"t1": detail}}
	svc := NewService(snoozer, nil)

	require.NoError(t, svc.Unsnooze(context.Background(), testToken(), provider, "t1", ""))
	assert.Empty(t, snoozer.records)
	assert.Zero(t, snoozer.listCalls, "summary recovery runs before listing")
}

func TestUnsnoozeRecoversFromActiveList(t *testing.T) {
	snoozer := newFakeSnoozer()
	snoozer.records["rem-1"] = mailbox.ReminderRecord{ReminderID: "rem-1", ThreadID: "t1"}

	// Thread exists but carries no reminder ID in its summary.
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{
		"t1": threadWithMessages("t1", "m1"),
	}}
	svc := NewService(snoozer, nil)

	require.NoError(t, svc.Unsnooze(context.Background(), testToken(), provider, "t1", ""))
	assert.Empty(t, snoozer.records)
	assert.Equal(t, 1, snoozer.listCalls)
}

func TestUnsnoozeRecoveryExhausted(t *testing.T) {
	snoozer := newFakeSnoozer()
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{
		"t1": threadWithMessages("t1", "m1"),
	}}
	svc := NewService(snoozer, nil)

	err := svc.Unsnooze(context.Background(), testToken(), provider, "t1", "")
	require.Error(t, err)
	assert.True(t, mailbox.IsKind(err, mailbox.KindReminderNotFound))
}

func TestUnsnoozeRecoverySurvivesMissingThread(t *testing.T) {
	snoozer := newFakeSnoozer()
	snoozer.records["rem-1"] = mailbox.ReminderRecord{ReminderID: "rem-1", ThreadID: "t1"}

	// The thread itself is gone; the list strategy must still find the
	// reminder.
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{}}
	svc := NewService(snoozer, nil)

	require.NoError(t, svc.Unsnooze(context.Background(), testToken(), provider, "t1", ""))
	assert.Empty(t, snoozer.records)
}

func TestListSnoozedJoinsThreads(t *testing.T) {
	snoozer := newFakeSnoozer()
	snoozer.records["rem-1"] = mailbox.ReminderRecord{ReminderID: "rem-1", ThreadID: "t1"}
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{
		"t1": threadWithMessages("t1", "m1"),
	}}
	svc := NewService(snoozer, nil)

	snoozed, err := svc.ListSnoozed(context.Background(), testToken(), provider, 10)
	require.NoError(t, err)
	require.Len(t, snoozed, 1)
	require.NotNil(t, snoozed[0].Thread)
	assert.Equal(t, "Subject t1", snoozed[0].Thread.Subject)
}

func TestListSnoozedKeepsOrphans(t *testing.T) {
	snoozer := newFakeSnoozer()
	snoozer.records["rem-1"] = mailbox.ReminderRecord{ReminderID: "rem-1", ThreadID: "t-gone"}
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{}}
	svc := NewService(snoozer, nil)

	snoozed, err := svc.ListSnoozed(context.Background(), testToken(), provider, 10)
	require.NoError(t, err)
	require.Len(t, snoozed, 1)
	assert.Nil(t, snoozed[0].Thread, "orphaned reminder is surfaced, not omitted")
	assert.Equal(t, "rem-1", snoozed[0].Reminder.ReminderID)
}

func TestSnoozeUnsnoozeRoundTrip(t *testing.T) {
	snoozer := newFakeSnoozer()
	provider := &readOnlyProvider{threads: map[string]*mailbox.ThreadDetail{
		"t1": threadWithMessages("t1", "m1"),
	}}
	svc := NewService(snoozer, nil)
	ctx := context.Background()

	_, err := svc.Snooze(ctx, testToken(), provider, "t1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.Unsnooze(ctx, testToken(), provider, "t1", ""))

	snoozed, err := svc.ListSnoozed(ctx, testToken(), provider, 10)
	require.NoError(t, err)
	assert.Empty(t, snoozed)
}
