package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// DefaultBaseURL is the production Graph endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const requestTimeout = 30 * time.Second

// messageSelect lists the fields every message fetch asks for. Keeping the
// projection fixed bounds response size and keeps the wire shape uniform.
const messageSelect = "id,conversationId,subject,bodyPreview,receivedDateTime,isRead,parentFolderId,from,toRecipients,ccRecipients,flag"

// Graph wire shapes. Only the fields this adapter reads are declared.

type graphMessage struct {
	ID               string           `json:"id"`
	ConversationID   string           `json:"conversationId"`
	Subject          string           `json:"subject"`
	BodyPreview      string           `json:"bodyPreview"`
	ReceivedDateTime time.Time        `json:"receivedDateTime"`
	IsRead           bool             `json:"isRead"`
	ParentFolderID   string           `json:"parentFolderId"`
	From             *graphRecipient  `json:"from,omitempty"`
	ToRecipients     []graphRecipient `json:"toRecipients,omitempty"`
	CcRecipients     []graphRecipient `json:"ccRecipients,omitempty"`
	Flag             *graphFlag       `json:"flag,omitempty"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphEmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

type graphFlag struct {
	FlagStatus string `json:"flagStatus"`
}

type graphFolder struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type messageList struct {
	Value    []graphMessage `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

type folderList struct {
	Value    []graphFolder `json:"value"`
	NextLink string        `json:"@odata.nextLink"`
}

type graphErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// url builds an absolute Graph URL under the configured base.
func (a *Adapter) url(path string, query url.Values) string {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do issues one Graph call. rawURL must be absolute: either built by url()
// or taken verbatim from a response's next-link. A non-2xx status is
// normalized into *mailbox.Error with the Graph error message, or the raw
// body when the error envelope does not parse. out may be nil for calls
// whose response body is irrelevant.
func (a *Adapter) do(ctx context.Context, tok *mailbox.Token, op, method, rawURL string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := a.httpClient.Do(req)
	if err != nil {
		return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op,
			fmt.Errorf("%s %s: %w", method, rawURL, err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		detail := strings.TrimSpace(string(raw))
		var ge graphErrorBody
		if json.Unmarshal(raw, &ge) == nil && ge.Error.Message != "" {
			detail = ge.Error.Message
		}
		return mailbox.NewProviderError(mailbox.ProviderOutlook, op, res.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op, err)
	}
	return nil
}

// scanMessages pages a message listing starting from first (an absolute
// URL), following next-links up to ceiling items.
func (a *Adapter) scanMessages(ctx context.Context, tok *mailbox.Token, op, first string, ceiling int) ([]graphMessage, error) {
	return mailbox.Scan(ctx, func(ctx context.Context, cursor string) (mailbox.Page[graphMessage], error) {
		u := first
		if cursor != "" {
			u = cursor
		}
		var list messageList
		if err := a.do(ctx, tok, op, http.MethodGet, u, nil, &list); err != nil {
			return mailbox.Page[graphMessage]{}, err
		}
		return mailbox.Page[graphMessage]{Items: list.Value, Next: list.NextLink}, nil
	}, ceiling)
}

// listFolders fetches all mail folders, following next-links.
func (a *Adapter) listFolders(ctx context.Context, tok *mailbox.Token, op string) ([]graphFolder, error) {
	q := url.Values{"$top": {"100"}}
	first := a.url("/me/mailFolders", q)
	return mailbox.Scan(ctx, func(ctx context.Context, cursor string) (mailbox.Page[graphFolder], error) {
		u := first
		if cursor != "" {
			u = cursor
		}
		var list folderList
		if err := a.do(ctx, tok, op, http.MethodGet, u, nil, &list); err != nil {
			return mailbox.Page[graphFolder]{}, err
		}
		return mailbox.Page[graphFolder]{Items: list.Value, Next: list.NextLink}, nil
	}, a.scanCeiling)
}

// folderByName resolves a folder ID from its display name,
// case-insensitively. Folder IDs are account-specific so callers must not
// hard-code them.
func (a *Adapter) folderByName(ctx context.Context, tok *mailbox.Token, op, name string) (string, error) {
	folders, err := a.listFolders(ctx, tok, op)
	if err != nil {
		return "", err
	}
	for _, f := range folders {
		if strings.EqualFold(f.DisplayName, name) {
			return f.ID, nil
		}
	}
	return "", mailbox.NewProviderError(mailbox.ProviderOutlook, op, 404,
		fmt.Sprintf("mail folder %q not found", name))
}
