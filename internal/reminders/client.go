// Package reminders implements the snooze lifecycle: create, list, and
// cancel reminders against the reminder backend, with identifier recovery
// when the caller lost the reminder handle.
package reminders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// DefaultBaseURL is the production reminder backend.
const DefaultBaseURL = "https://reminders.superhuman.com/v1"

const requestTimeout = 30 * time.Second

const listPageSize = 100

// Client talks to the reminder backend. It satisfies mailbox.Snoozer.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	scanCeiling int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the backend endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithScanCeiling caps how many reminders one list call pages through.
func WithScanCeiling(n int) ClientOption {
	return func(c *Client) { c.scanCeiling = n }
}

// NewClient creates a reminder backend client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		scanCeiling: mailbox.DefaultScanCeiling,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createRequest struct {
	ReminderID      string    `json:"reminderId"`
	ThreadID        string    `json:"threadId"`
	MessageIDs      []string  `json:"messageIds"`
	TriggerAt       time.Time `json:"triggerAt"`
	ClientCreatedAt time.Time `json:"clientCreatedAt"`
}

type listResponse struct {
	Reminders []mailbox.ReminderRecord `json:"reminders"`
	NextToken string                   `json:"nextToken"`
}

func (c *Client) do(ctx context.Context, tok *mailbox.Token, op, method, rawURL string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return mailbox.NewError(mailbox.KindProviderError, tok.Provider, op, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return mailbox.NewError(mailbox.KindProviderError, tok.Provider, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return mailbox.NewError(mailbox.KindProviderError, tok.Provider, op,
			fmt.Errorf("%s %s: %w", method, rawURL, err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		return mailbox.NewProviderError(tok.Provider, op, res.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return mailbox.NewError(mailbox.KindProviderError, tok.Provider, op, err)
	}
	return nil
}

// CreateReminder implements mailbox.Snoozer. The reminder ID is synthesized
// by the caller before the call and is the only durable handle returned to
// users, so it is submitted rather than assigned by the backend.
func (c *Client) CreateReminder(ctx context.Context, tok *mailbox.Token, reminderID, threadID string, messageIDs []string, triggerAt time.Time) error {
	req := createRequest{
		ReminderID:      reminderID,
		ThreadID:        threadID,
		MessageIDs:      messageIDs,
		TriggerAt:       triggerAt,
		ClientCreatedAt: time.Now().UTC(),
	}
	return c.do(ctx, tok, "createReminder", http.MethodPost, c.baseURL+"/reminders", req, nil)
}

// CancelReminder implements mailbox.Snoozer.
func (c *Client) CancelReminder(ctx context.Context, tok *mailbox.Token, reminderID string) error {
	return c.do(ctx, tok, "cancelReminder", http.MethodDelete, c.baseURL+"/reminders/"+url.PathEscape(reminderID), nil, nil)
}

// ListReminders implements mailbox.Snoozer, following the backend's opaque
// continuation token until it is absent or limit reminders are collected.
func (c *Client) ListReminders(ctx context.Context, tok *mailbox.Token, limit int) ([]mailbox.ReminderRecord, error) {
	ceiling := c.scanCeiling
	if limit > 0 && limit < ceiling {
		ceiling = limit
	}

	records, err := mailbox.Scan(ctx, func(ctx context.Context, cursor string) (mailbox.Page[mailbox.ReminderRecord], error) {
		q := url.Values{"limit": {strconv.Itoa(listPageSize)}}
		if cursor != "" {
			q.Set("pageToken", cursor)
		}
		var list listResponse
		if err := c.do(ctx, tok, "listReminders", http.MethodGet, c.baseURL+"/reminders?"+q.Encode(), nil, &list); err != nil {
			return mailbox.Page[mailbox.ReminderRecord]{}, err
		}
		return mailbox.Page[mailbox.ReminderRecord]{Items: list.Reminders, Next: list.NextToken}, nil
	}, ceiling)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
