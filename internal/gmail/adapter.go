package gmail

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/logging"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// Gmail system labels used by the translation rules.
const (
	labelInbox   = "INBOX"
	labelStarred = "STARRED"
	labelUnread  = "UNREAD"
)

// Gmail caps thread list pages at 100 items.
const maxPageSize = 100

const defaultListLimit = 20

// Adapter translates uniform mailbox operations into Gmail API calls.
type Adapter struct {
	logger      *slog.Logger
	scanCeiling int
	clientOpts  []option.ClientOption
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithScanCeiling sets the hard cap on items paginated through per call.
func WithScanCeiling(n int) Option {
	return func(a *Adapter) { a.scanCeiling = n }
}

// WithClientOptions appends Google API client options. Tests use this to
// point the adapter at a fake endpoint.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(a *Adapter) { a.clientOpts = append(a.clientOpts, opts...) }
}

// New creates a Gmail adapter.
func New(logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		logger:      logging.WithProvider(logger, string(mailbox.ProviderGmail)),
		scanCeiling: mailbox.DefaultScanCeiling,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kind implements mailbox.Provider.
func (a *Adapter) Kind() mailbox.ProviderKind { return mailbox.ProviderGmail }

// users binds a Gmail service to the operation's token. The service is
// built per logical operation so every call under it reuses that one token.
func (a *Adapter) users(ctx context.Context, tok *mailbox.Token) (*gmail.UsersService, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok.AccessToken})),
	}, a.clientOpts...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderGmail, "newService", err)
	}
	return svc.Users, nil
}

// wrapErr normalizes a Gmail API failure, preserving the original status
// and body text for diagnostics.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		detail := gerr.Message
		if detail == "" {
			detail = strings.TrimSpace(gerr.Body)
		}
		return mailbox.NewProviderError(mailbox.ProviderGmail, op, gerr.Code, detail)
	}
	return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderGmail, op, err)
}

// ListInbox implements mailbox.Provider.
func (a *Adapter) ListInbox(ctx context.Context, tok *mailbox.Token, limit int) ([]mailbox.Thread, error) {
	return a.listThreads(ctx, tok, "listInbox", "in:inbox", limit)
}

// Search implements mailbox.Provider. includeDone=false scopes the query
// to the inbox by injecting the in:inbox search term; true drops the term,
// making the result a superset.
func (a *Adapter) Search(ctx context.Context, tok *mailbox.Token, opts mailbox.SearchOptions) ([]mailbox.Thread, error) {
	q := strings.TrimSpace(opts.Query)
	if !opts.IncludeDone {
		q = strings.TrimSpace("in:inbox " + q)
	}
	return a.listThreads(ctx, tok, "search", q, opts.Limit)
}

// ListStarred implements mailbox.Provider.
func (a *Adapter) ListStarred(ctx context.Context, tok *mailbox.Token, limit int) ([]mailbox.Thread, error) {
	return a.listThreads(ctx, tok, "listStarred", "is:starred", limit)
}

// listThreads pages through thread stubs matching q, then hydrates the
// first limit of them into summaries. Gmail's list call returns only IDs
// and snippets; summary fields need a metadata get per thread.
func (a *Adapter) listThreads(ctx context.Context, tok *mailbox.Token, op, q string, limit int) ([]mailbox.Thread, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	users, err := a.users(ctx, tok)
	if err != nil {
		return nil, err
	}

	ceiling := limit
	if ceiling > a.scanCeiling {
		ceiling = a.scanCeiling
	}

	fetched := 0
	stubs, err := mailbox.Scan(ctx, func(ctx context.Context, cursor string) (mailbox.Page[*gmail.Thread], error) {
		pageSize := int64(ceiling - fetched)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		call := users.Threads.List("me").Q(q).MaxResults(pageSize).Context(ctx)
		if cursor != "" {
			call = call.PageToken(cursor)
		}
		res, err := call.Do()
		if err != nil {
			return mailbox.Page[*gmail.Thread]{}, wrapErr(op, err)
		}
		fetched += len(res.Threads)
		return mailbox.Page[*gmail.Thread]{Items: res.Threads, Next: res.NextPageToken}, nil
	}, ceiling)
	if err != nil {
		return nil, err
	}

	if len(stubs) > limit {
		stubs = stubs[:limit]
	}

	threads := make([]mailbox.Thread, 0, len(stubs))
	for _, stub := range stubs {
		full, err := users.Threads.Get("me", stub.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "Date").
			Context(ctx).Do()
		if err != nil {
			return nil, wrapErr(op, err)
		}
		threads = append(threads, threadSummary(full))
	}

	a.logger.Debug("listed threads",
		logging.Operation(op),
		slog.Int("count", len(threads)))
	return threads, nil
}

// ReadThread implements mailbox.Provider.
func (a *Adapter) ReadThread(ctx context.Context, tok *mailbox.Token, threadID string) (*mailbox.ThreadDetail, error) {
	users, err := a.users(ctx, tok)
	if err != nil {
		return nil, err
	}

	t, err := users.Threads.Get("me", threadID).
		Format("metadata").
		MetadataHeaders("Subject", "From", "To", "Cc", "Date").
		Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("readThread", err)
	}

	detail := &mailbox.ThreadDetail{Thread: threadSummary(t)}
	for _, m := range t.Messages {
		detail.Messages = append(detail.Messages, messageOf(t.Id, m))
	}
	sort.SliceStable(detail.Messages, func(i, j int) bool {
		return detail.Messages[i].Date.After(detail.Messages[j].Date)
	})
	return detail, nil
}

// modify issues the single modify-labels call all label-shaped operations
// share: archive, star, read state, and explicit label changes.
func (a *Adapter) modify(ctx context.Context, tok *mailbox.Token, op, threadID string, add, remove []string) error {
	users, err := a.users(ctx, tok)
	if err != nil {
		return err
	}
	_, err = users.Threads.Modify("me", threadID, &gmail.ModifyThreadRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	return wrapErr(op, err)
}

// ArchiveThread implements mailbox.Provider: archive = remove INBOX, other
// labels untouched.
func (a *Adapter) ArchiveThread(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.modify(ctx, tok, "archiveThread", threadID, nil, []string{labelInbox})
}

// DeleteThread implements mailbox.Provider.
func (a *Adapter) DeleteThread(ctx context.Context, tok *mailbox.Token, threadID string) error {
	users, err := a.users(ctx, tok)
	if err != nil {
		return err
	}
	_, err = users.Threads.Trash("me", threadID).Context(ctx).Do()
	return wrapErr("deleteThread", err)
}

// MarkRead implements mailbox.Provider.
func (a *Adapter) MarkRead(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.modify(ctx, tok, "markRead", threadID, nil, []string{labelUnread})
}

// MarkUnread implements mailbox.Provider.
func (a *Adapter) MarkUnread(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.modify(ctx, tok, "markUnread", threadID, []string{labelUnread}, nil)
}

// Star implements mailbox.Provider. Adding an already-present label is a
// no-op on the Gmail side, so repeated stars are idempotent.
func (a *Adapter) Star(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.modify(ctx, tok, "star", threadID, []string{labelStarred}, nil)
}

// Unstar implements mailbox.Provider.
func (a *Adapter) Unstar(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.modify(ctx, tok, "unstar", threadID, nil, []string{labelStarred})
}

// AddLabel implements mailbox.Provider.
func (a *Adapter) AddLabel(ctx context.Context, tok *mailbox.Token, threadID, labelID string) error {
	return a.modify(ctx, tok, "addLabel", threadID, []string{labelID}, nil)
}

// RemoveLabel implements mailbox.Provider.
func (a *Adapter) RemoveLabel(ctx context.Context, tok *mailbox.Token, threadID, labelID string) error {
	return a.modify(ctx, tok, "removeLabel", threadID, nil, []string{labelID})
}

// ListLabels implements mailbox.Provider. System labels (INBOX, STARRED,
// UNREAD, ...) are included.
func (a *Adapter) ListLabels(ctx context.Context, tok *mailbox.Token) ([]mailbox.Label, error) {
	users, err := a.users(ctx, tok)
	if err != nil {
		return nil, err
	}
	res, err := users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("listLabels", err)
	}

	labels := make([]mailbox.Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, mailbox.Label{ID: l.Id, Name: l.Name, Type: l.Type})
	}
	return labels, nil
}

// GetThreadLabels implements mailbox.Provider. A thread's labels are the
// union of its messages' label IDs.
func (a *Adapter) GetThreadLabels(ctx context.Context, tok *mailbox.Token, threadID string) ([]string, error) {
	users, err := a.users(ctx, tok)
	if err != nil {
		return nil, err
	}
	t, err := users.Threads.Get("me", threadID).Format("minimal").Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("getThreadLabels", err)
	}
	return labelUnion(t), nil
}

// labelUnion collects the distinct label IDs across a thread's messages in
// first-seen order.
func labelUnion(t *gmail.Thread) []string {
	var union []string
	seen := make(map[string]bool)
	for _, m := range t.Messages {
		for _, id := range m.LabelIds {
			if !seen[id] {
				seen[id] = true
				union = append(union, id)
			}
		}
	}
	return union
}

// threadSummary derives the uniform thread snapshot from a Gmail thread.
// The newest message supplies the summary fields.
func threadSummary(t *gmail.Thread) mailbox.Thread {
	summary := mailbox.Thread{
		ID:           t.Id,
		MessageCount: len(t.Messages),
		LabelIDs:     labelUnion(t),
	}
	if len(t.Messages) == 0 {
		return summary
	}

	// Gmail orders thread messages oldest first.
	newest := t.Messages[len(t.Messages)-1]
	summary.Subject = headerValue(newest, "Subject")
	summary.From = parseAddress(headerValue(newest, "From"))
	summary.Date = messageDate(newest)
	summary.Snippet = newest.Snippet
	return summary
}

func messageOf(threadID string, m *gmail.Message) mailbox.Message {
	return mailbox.Message{
		ID:       m.Id,
		ThreadID: threadID,
		Subject:  headerValue(m, "Subject"),
		From:     parseAddress(headerValue(m, "From")),
		To:       parseAddressList(headerValue(m, "To")),
		Cc:       parseAddressList(headerValue(m, "Cc")),
		Date:     messageDate(m),
		Snippet:  m.Snippet,
	}
}

// headerValue extracts a header value from a Gmail message payload.
func headerValue(m *gmail.Message, header string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

func messageDate(m *gmail.Message) time.Time {
	if m.InternalDate > 0 {
		return time.UnixMilli(m.InternalDate).UTC()
	}
	if t, err := mail.ParseDate(headerValue(m, "Date")); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func parseAddress(raw string) mailbox.Address {
	if raw == "" {
		return mailbox.Address{}
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return mailbox.Address{Email: raw}
	}
	return mailbox.Address{Email: addr.Address, Name: addr.Name}
}

func parseAddressList(raw string) []mailbox.Address {
	if raw == "" {
		return nil
	}
	addrs, err := mail.ParseAddressList(raw)
	if err != nil {
		return []mailbox.Address{{Email: raw}}
	}
	out := make([]mailbox.Address, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, mailbox.Address{Email: a.Address, Name: a.Name})
	}
	return out
}
