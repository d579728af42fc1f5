package mailbox

import "time"

// ProviderKind identifies which backing mail service an account uses.
type ProviderKind string

const (
	// ProviderGmail is the label-based service with native thread objects.
	ProviderGmail ProviderKind = "gmail"

	// ProviderOutlook is the folder/flag-based service with a flat message
	// stream, reached through the Microsoft Graph API.
	ProviderOutlook ProviderKind = "outlook"
)

// Valid reports whether k names a known provider.
func (k ProviderKind) Valid() bool {
	return k == ProviderGmail || k == ProviderOutlook
}

// Account is one linked mail account. A process may hold credentials for
// several accounts; exactly one is current for ambient operations.
type Account struct {
	Email    string       `json:"email"`
	Provider ProviderKind `json:"provider"`
	Current  bool         `json:"current"`
}

// Token is a live access token handed to adapters for the duration of one
// logical operation. Refresh material never leaves the credential store.
type Token struct {
	AccessToken string       `json:"-"`
	Provider    ProviderKind `json:"provider"`
	Email       string       `json:"email"`
	Expiry      time.Time    `json:"expiry"`
}

// Address is a mail participant.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Thread is a read-only conversation snapshot. For Gmail the ID is the
// provider's native thread identifier; for Outlook it is the conversation
// key and the summary fields are derived from the flat message scan rather
// than native. Every read re-fetches; nothing here is a cached mutable
// object.
type Thread struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	From         Address   `json:"from"`
	Date         time.Time `json:"date"`
	Snippet      string    `json:"snippet"`
	LabelIDs     []string  `json:"labelIds,omitempty"`
	MessageCount int       `json:"messageCount"`

	// ReminderID is set when the backend attaches an active reminder to
	// the thread's summary data. It feeds the snooze recovery chain.
	ReminderID string `json:"reminderId,omitempty"`
}

// Message is one mail message inside a thread. Message.ThreadID always
// resolves via the same provider that produced the message.
type Message struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"threadId"`
	Subject  string    `json:"subject"`
	From     Address   `json:"from"`
	To       []Address `json:"to,omitempty"`
	Cc       []Address `json:"cc,omitempty"`
	Date     time.Time `json:"date"`
	Snippet  string    `json:"snippet"`
}

// ThreadDetail is a thread summary plus its messages, newest first.
type ThreadDetail struct {
	Thread
	Messages []Message `json:"messages"`
}

// Label is a Gmail label or, for Outlook, a mail folder standing in for
// one. Type distinguishes system labels from user labels where the
// provider makes that distinction.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// SearchOptions scopes a mailbox search. IncludeDone=false restricts the
// query to the inbox container; true removes that restriction. The scoping
// is a query rewrite performed by the adapter (query-term injection for
// Gmail, folder selection for Outlook), not a server-side flag.
type SearchOptions struct {
	Query       string `json:"query"`
	Limit       int    `json:"limit"`
	IncludeDone bool   `json:"includeDone"`
}

// SendRequest describes an outbound message for SendEmail or CreateDraft.
type SendRequest struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	HTML    bool     `json:"html,omitempty"`
}

// ReplyRequest describes a reply to an existing thread. Adapters propagate
// the original message's threading headers so the reply lands in the same
// conversation on the provider side.
type ReplyRequest struct {
	ThreadID string   `json:"threadId"`
	Body     string   `json:"body"`
	Cc       []string `json:"cc,omitempty"`
	Bcc      []string `json:"bcc,omitempty"`
	HTML     bool     `json:"html,omitempty"`
}

// ItemFailure is one failed item of a batch operation.
type ItemFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchResult reports a batch operation per item. Mixed outcomes are never
// collapsed into a single boolean.
type BatchResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
}

// OK reports whether every item succeeded.
func (r BatchResult) OK() bool { return len(r.Failed) == 0 }
