package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/logging"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// SnoozedThread is one active reminder joined with minimal thread
// identity. Thread is nil when the thread no longer exists, so callers
// can detect orphaned reminders instead of silently losing them.
type SnoozedThread struct {
	Reminder mailbox.ReminderRecord `json:"reminder"`
	Thread   *mailbox.Thread        `json:"thread,omitempty"`
}

// Service drives the snooze state machine: none -> active on snooze,
// active -> none on unsnooze. The reminder ID handed back by Snooze is the
// caller's only durable handle; Unsnooze runs an ordered recovery chain
// when the caller lost it.
type Service struct {
	snoozer mailbox.Snoozer
	logger  *slog.Logger
	newID   func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIDGenerator overrides reminder ID synthesis. Tests pin IDs with it.
func WithIDGenerator(gen func() string) ServiceOption {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a snooze service on top of a reminder backend.
func NewService(snoozer mailbox.Snoozer, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		snoozer: snoozer,
		logger:  logger,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snooze creates a reminder for a thread. The thread's message set is
// resolved first so the backend can restore the exact messages when the
// reminder fires. Two snoozes racing on the same thread both create a
// reminder; the backend does not deduplicate.
func (s *Service) Snooze(ctx context.Context, tok *mailbox.Token, provider mailbox.Provider, threadID string, triggerAt time.Time) (string, error) {
	detail, err := provider.ReadThread(ctx, tok, threadID)
	if err != nil {
		return "", err
	}
	messageIDs := make([]string, 0, len(detail.Messages))
	for _, m := range detail.Messages {
		messageIDs = append(messageIDs, m.ID)
	}

	reminderID := s.newID()
	if err := s.snoozer.CreateReminder(ctx, tok, reminderID, threadID, messageIDs, triggerAt); err != nil {
		return "", err
	}

	s.logger.Info("thread snoozed",
		logging.Operation("snooze"),
		logging.Thread(threadID),
		slog.String("reminder", reminderID),
		slog.Time("triggerAt", triggerAt))
	return reminderID, nil
}

// recoveryStrategy attempts to recover a lost reminder ID for a thread.
// It returns ok=false when the strategy simply found nothing; an error
// aborts the chain.
type recoveryStrategy func(ctx context.Context, tok *mailbox.Token, provider mailbox.Provider, threadID string) (id string, ok bool, err error)

// fromThreadSummary reads the reminder ID the backend may attach to the
// thread's own summary data.
func (s *Service) fromThreadSummary(ctx context.Context, tok *mailbox.Token, provider mailbox.Provider, threadID string) (string, bool, error) {
	detail, err := provider.ReadThread(ctx, tok, threadID)
	if err != nil {
		// A vanished thread does not abort recovery; the reminder may
		// still be found by listing.
		if mailbox.IsKind(err, mailbox.KindNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if detail.ReminderID == "" {
		return "", false, nil
	}
	return detail.ReminderID, true, nil
}

// fromActiveList lists active reminders and matches on thread ID.
func (s *Service) fromActiveList(ctx context.Context, tok *mailbox.Token, provider mailbox.Provider, threadID string) (string, bool, error) {
	records, err := s.snoozer.ListReminders(ctx, tok, 0)
	if err != nil {
		return "", false, err
	}
	for _, r := range records {
		if r.ThreadID == threadID {
			return r.ReminderID, true, nil
		}
	}
	return "", false, nil
}

// Unsnooze cancels a thread's reminder. When reminderID is empty the
// recovery chain runs in order: the thread's own summary data first, then
// the active reminder list. Only after both strategies come up empty does
// the call fail.
func (s *Service) Unsnooze(ctx context.Context, tok *mailbox.Token, provider mailbox.Provider, threadID, reminderID string) error {
	if reminderID == "" {
		strategies := []recoveryStrategy{
			s.fromThreadSummary,
			s.fromActiveList,
		}
		for _, strategy := range strategies {
			id, ok, err := strategy(ctx, tok, provider, threadID)
			if err != nil {
				return err
			}
			if ok {
				reminderID = id
				break
			}
		}
		if reminderID == "" {
			return &mailbox.Error{
				Kind:     mailbox.KindReminderNotFound,
				Provider: tok.Provider,
				Op:       "unsnooze",
				Detail:   fmt.Sprintf("no active reminder for thread %s", threadID),
			}
		}
	}

	if err := s.snoozer.CancelReminder(ctx, tok, reminderID); err != nil {
		return err
	}
	s.logger.Info("thread unsnoozed",
		logging.Operation("unsnooze"),
		logging.Thread(threadID),
		slog.String("reminder", reminderID))
	return nil
}

// ListSnoozed returns active reminders joined with thread summaries. A
// reminder whose thread cannot be read is returned with a nil thread
// rather than omitted.
func (s *Service) ListSnoozed(ctx context.Context, tok *mailbox.Token, provider mailbox.Provider, limit int) ([]SnoozedThread, error) {
	records, err := s.snoozer.ListReminders(ctx, tok, limit)
	if err != nil {
		return nil, err
	}

	snoozed := make([]SnoozedThread, 0, len(records))
	for _, r := range records {
		item := SnoozedThread{Reminder: r}
		detail, err := provider.ReadThread(ctx, tok, r.ThreadID)
		switch {
		case err == nil:
			item.Thread = &detail.Thread
		case mailbox.IsKind(err, mailbox.KindNotFound):
			s.logger.Warn("reminder references a missing thread",
				logging.Operation("listSnoozed"),
				logging.Thread(r.ThreadID),
				slog.String("reminder", r.ReminderID))
		default:
			return nil, err
		}
		snoozed = append(snoozed, item)
	}
	return snoozed, nil
}
