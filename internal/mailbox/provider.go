package mailbox

import (
	"context"
	"time"
)

// Provider is the uniform set of mailbox operations. Each adapter
// translates these into one provider's wire calls. Every method takes the
// live Token for the current logical operation; an operation may span
// several HTTP calls but reuses that one Token. All failures come back as
// *Error: adapters never panic across this boundary and never leak
// provider exception types.
//
// Translation rules the adapters must honor:
//   - Gmail: archive = remove INBOX label; star = add/remove STARRED;
//     read state = remove/add UNREAD; all via one modify-labels call.
//   - Outlook: archive = move the thread's messages to the folder named
//     "Archive" (resolved by display name, the ID is account-specific);
//     star = patch the flag status; read state = patch a boolean; all
//     messages of a thread are updated together.
type Provider interface {
	Kind() ProviderKind

	ListInbox(ctx context.Context, tok *Token, limit int) ([]Thread, error)
	Search(ctx context.Context, tok *Token, opts SearchOptions) ([]Thread, error)
	ReadThread(ctx context.Context, tok *Token, threadID string) (*ThreadDetail, error)

	ArchiveThread(ctx context.Context, tok *Token, threadID string) error
	DeleteThread(ctx context.Context, tok *Token, threadID string) error
	MarkRead(ctx context.Context, tok *Token, threadID string) error
	MarkUnread(ctx context.Context, tok *Token, threadID string) error

	ListLabels(ctx context.Context, tok *Token) ([]Label, error)
	GetThreadLabels(ctx context.Context, tok *Token, threadID string) ([]string, error)
	AddLabel(ctx context.Context, tok *Token, threadID, labelID string) error
	RemoveLabel(ctx context.Context, tok *Token, threadID, labelID string) error

	Star(ctx context.Context, tok *Token, threadID string) error
	Unstar(ctx context.Context, tok *Token, threadID string) error
	ListStarred(ctx context.Context, tok *Token, limit int) ([]Thread, error)

	CreateDraft(ctx context.Context, tok *Token, req SendRequest) (string, error)
	SendEmail(ctx context.Context, tok *Token, req SendRequest) (string, error)
	Reply(ctx context.Context, tok *Token, req ReplyRequest) (string, error)
}

// Snoozer is the reminder backend surface the snooze state machine talks
// to. It is provider-neutral: reminders live in their own backend keyed by
// the account's token.
type Snoozer interface {
	CreateReminder(ctx context.Context, tok *Token, reminderID, threadID string, messageIDs []string, triggerAt time.Time) error
	CancelReminder(ctx context.Context, tok *Token, reminderID string) error
	ListReminders(ctx context.Context, tok *Token, limit int) ([]ReminderRecord, error)
}

// ReminderRecord is an active reminder as the backend reports it.
type ReminderRecord struct {
	ReminderID      string    `json:"reminderId"`
	ThreadID        string    `json:"threadId"`
	MessageIDs      []string  `json:"messageIds"`
	TriggerAt       time.Time `json:"triggerAt"`
	ClientCreatedAt time.Time `json:"clientCreatedAt"`
}
