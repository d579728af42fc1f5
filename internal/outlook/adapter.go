package outlook

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/logging"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

const (
	archiveFolderName = "Archive"

	flagStatusFlagged    = "flagged"
	flagStatusNotFlagged = "notFlagged"

	// Graph accepts well-known folder names in place of IDs.
	wellKnownInbox = "inbox"
)

const defaultListLimit = 20

// Adapter translates uniform mailbox operations into Microsoft Graph
// calls.
type Adapter struct {
	logger      *slog.Logger
	baseURL     string
	httpClient  *http.Client
	scanCeiling int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBaseURL overrides the Graph endpoint. Tests point this at a fake
// server.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.httpClient = c }
}

// WithScanCeiling sets the hard cap on items paginated through per call.
func WithScanCeiling(n int) Option {
	return func(a *Adapter) { a.scanCeiling = n }
}

// New creates a Graph-backed adapter.
func New(logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		logger:      logging.WithProvider(logger, string(mailbox.ProviderOutlook)),
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		scanCeiling: mailbox.DefaultScanCeiling,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kind implements mailbox.Provider.
func (a *Adapter) Kind() mailbox.ProviderKind { return mailbox.ProviderOutlook }

// ListInbox implements mailbox.Provider. The inbox's flat message stream
// is scanned up to the ceiling and grouped into threads; limit caps the
// number of threads returned, not the number of messages scanned.
func (a *Adapter) ListInbox(ctx context.Context, tok *mailbox.Token, limit int) ([]mailbox.Thread, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := url.Values{
		"$top":     {"100"},
		"$select":  {messageSelect},
		"$orderby": {"receivedDateTime desc"},
	}
	msgs, err := a.scanMessages(ctx, tok, "listInbox", a.url("/me/mailFolders/inbox/messages", q), a.scanCeiling)
	if err != nil {
		return nil, err
	}
	threads := assembleThreads(msgs, limit)
	a.logger.Debug("listed threads",
		logging.Operation("listInbox"),
		slog.Int("messages", len(msgs)),
		slog.Int("threads", len(threads)))
	return threads, nil
}

// Search implements mailbox.Provider. includeDone=false scopes the scan to
// the inbox folder; true scans the whole message store. The scoping is a
// folder selection, not a query term.
func (a *Adapter) Search(ctx context.Context, tok *mailbox.Token, opts mailbox.SearchOptions) ([]mailbox.Thread, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	path := "/me/messages"
	if !opts.IncludeDone {
		path = "/me/mailFolders/inbox/messages"
	}
	q := url.Values{
		"$top":    {"100"},
		"$select": {messageSelect},
	}
	if query := strings.TrimSpace(opts.Query); query != "" {
		// $search cannot be combined with $orderby on this endpoint.
		q.Set("$search", fmt.Sprintf("%q", query))
	} else {
		q.Set("$orderby", "receivedDateTime desc")
	}

	msgs, err := a.scanMessages(ctx, tok, "search", a.url(path, q), a.scanCeiling)
	if err != nil {
		return nil, err
	}
	return assembleThreads(msgs, limit), nil
}

// ListStarred implements mailbox.Provider: starred means a flagged flag
// status.
func (a *Adapter) ListStarred(ctx context.Context, tok *mailbox.Token, limit int) ([]mailbox.Thread, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := url.Values{
		"$top":    {"100"},
		"$select": {messageSelect},
		"$filter": {"flag/flagStatus eq 'flagged'"},
	}
	msgs, err := a.scanMessages(ctx, tok, "listStarred", a.url("/me/messages", q), a.scanCeiling)
	if err != nil {
		return nil, err
	}
	return assembleThreads(msgs, limit), nil
}

// threadMessages fetches every message of a conversation, newest first.
func (a *Adapter) threadMessages(ctx context.Context, tok *mailbox.Token, op, threadID string) ([]graphMessage, error) {
	q := url.Values{
		"$top":    {"100"},
		"$select": {messageSelect},
		"$filter": {fmt.Sprintf("conversationId eq '%s'", strings.ReplaceAll(threadID, "'", "''"))},
	}
	msgs, err := a.scanMessages(ctx, tok, op, a.url("/me/messages", q), a.scanCeiling)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, mailbox.NewProviderError(mailbox.ProviderOutlook, op, 404,
			fmt.Sprintf("conversation %s has no messages", threadID))
	}
	sortNewestFirst(msgs)
	return msgs, nil
}

// ReadThread implements mailbox.Provider.
func (a *Adapter) ReadThread(ctx context.Context, tok *mailbox.Token, threadID string) (*mailbox.ThreadDetail, error) {
	msgs, err := a.threadMessages(ctx, tok, "readThread", threadID)
	if err != nil {
		return nil, err
	}
	detail := &mailbox.ThreadDetail{Thread: threadSummary(threadID, msgs)}
	for _, m := range msgs {
		detail.Messages = append(detail.Messages, messageOf(m))
	}
	return detail, nil
}

// forEachMessage applies one call per message of a thread and reports
// mixed outcomes per message. The thread's state must change as a unit,
// so a partial outcome is an error, not a silent success.
func (a *Adapter) forEachMessage(ctx context.Context, tok *mailbox.Token, op, threadID string, apply func(ctx context.Context, msgID string) error) error {
	msgs, err := a.threadMessages(ctx, tok, op, threadID)
	if err != nil {
		return err
	}

	var failed []string
	var first error
	for _, m := range msgs {
		if err := apply(ctx, m.ID); err != nil {
			failed = append(failed, m.ID)
			if first == nil {
				first = err
			}
		}
	}
	switch {
	case len(failed) == 0:
		return nil
	case len(failed) == len(msgs):
		return first
	default:
		return &mailbox.Error{
			Kind:     mailbox.KindPartialFailure,
			Provider: mailbox.ProviderOutlook,
			Op:       op,
			Detail:   fmt.Sprintf("%d of %d messages failed (%s)", len(failed), len(msgs), strings.Join(failed, ", ")),
			Err:      first,
		}
	}
}

// patchThread applies one PATCH document to every message of a thread.
func (a *Adapter) patchThread(ctx context.Context, tok *mailbox.Token, op, threadID string, patch any) error {
	return a.forEachMessage(ctx, tok, op, threadID, func(ctx context.Context, msgID string) error {
		return a.do(ctx, tok, op, http.MethodPatch, a.url("/me/messages/"+msgID, nil), patch, nil)
	})
}

// moveThread moves every message of a thread to the destination folder.
func (a *Adapter) moveThread(ctx context.Context, tok *mailbox.Token, op, threadID, destinationID string) error {
	body := map[string]string{"destinationId": destinationID}
	return a.forEachMessage(ctx, tok, op, threadID, func(ctx context.Context, msgID string) error {
		return a.do(ctx, tok, op, http.MethodPost, a.url("/me/messages/"+msgID+"/move", nil), body, nil)
	})
}

// ArchiveThread implements mailbox.Provider: every message of the
// conversation is moved to the account's "Archive" folder, resolved by
// display name because its ID is account-specific.
func (a *Adapter) ArchiveThread(ctx context.Context, tok *mailbox.Token, threadID string) error {
	archiveID, err := a.folderByName(ctx, tok, "archiveThread", archiveFolderName)
	if err != nil {
		return err
	}
	return a.moveThread(ctx, tok, "archiveThread", threadID, archiveID)
}

// DeleteThread implements mailbox.Provider. Graph's message delete moves
// the item to Deleted Items.
func (a *Adapter) DeleteThread(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.forEachMessage(ctx, tok, "deleteThread", threadID, func(ctx context.Context, msgID string) error {
		return a.do(ctx, tok, "deleteThread", http.MethodDelete, a.url("/me/messages/"+msgID, nil), nil, nil)
	})
}

// MarkRead implements mailbox.Provider.
func (a *Adapter) MarkRead(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.patchThread(ctx, tok, "markRead", threadID, map[string]bool{"isRead": true})
}

// MarkUnread implements mailbox.Provider.
func (a *Adapter) MarkUnread(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.patchThread(ctx, tok, "markUnread", threadID, map[string]bool{"isRead": false})
}

// Star implements mailbox.Provider. Setting an already-set flag status is
// idempotent on the Graph side.
func (a *Adapter) Star(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.patchThread(ctx, tok, "star", threadID,
		map[string]any{"flag": map[string]string{"flagStatus": flagStatusFlagged}})
}

// Unstar implements mailbox.Provider.
func (a *Adapter) Unstar(ctx context.Context, tok *mailbox.Token, threadID string) error {
	return a.patchThread(ctx, tok, "unstar", threadID,
		map[string]any{"flag": map[string]string{"flagStatus": flagStatusNotFlagged}})
}

// ListLabels implements mailbox.Provider. There is no label concept here;
// the mail folder list stands in for it.
func (a *Adapter) ListLabels(ctx context.Context, tok *mailbox.Token) ([]mailbox.Label, error) {
	folders, err := a.listFolders(ctx, tok, "listLabels")
	if err != nil {
		return nil, err
	}
	labels := make([]mailbox.Label, 0, len(folders))
	for _, f := range folders {
		labels = append(labels, mailbox.Label{ID: f.ID, Name: f.DisplayName, Type: "folder"})
	}
	return labels, nil
}

// GetThreadLabels implements mailbox.Provider: the distinct parent folder
// IDs of the conversation's messages.
func (a *Adapter) GetThreadLabels(ctx context.Context, tok *mailbox.Token, threadID string) ([]string, error) {
	msgs, err := a.threadMessages(ctx, tok, "getThreadLabels", threadID)
	if err != nil {
		return nil, err
	}
	return folderUnion(msgs), nil
}

// AddLabel implements mailbox.Provider as a folder move: the thread's
// messages move into the folder identified by labelID.
func (a *Adapter) AddLabel(ctx context.Context, tok *mailbox.Token, threadID, labelID string) error {
	return a.moveThread(ctx, tok, "addLabel", threadID, labelID)
}

// RemoveLabel implements mailbox.Provider: messages currently in the
// folder move back to the inbox. Messages in other folders are untouched.
func (a *Adapter) RemoveLabel(ctx context.Context, tok *mailbox.Token, threadID, labelID string) error {
	msgs, err := a.threadMessages(ctx, tok, "removeLabel", threadID)
	if err != nil {
		return err
	}
	body := map[string]string{"destinationId": wellKnownInbox}
	var failed []string
	var first error
	total := 0
	for _, m := range msgs {
		if m.ParentFolderID != labelID {
			continue
		}
		total++
		if err := a.do(ctx, tok, "removeLabel", http.MethodPost, a.url("/me/messages/"+m.ID+"/move", nil), body, nil); err != nil {
			failed = append(failed, m.ID)
			if first == nil {
				first = err
			}
		}
	}
	switch {
	case len(failed) == 0:
		return nil
	case len(failed) == total:
		return first
	default:
		return &mailbox.Error{
			Kind:     mailbox.KindPartialFailure,
			Provider: mailbox.ProviderOutlook,
			Op:       "removeLabel",
			Detail:   fmt.Sprintf("%d of %d messages failed (%s)", len(failed), total, strings.Join(failed, ", ")),
			Err:      first,
		}
	}
}
