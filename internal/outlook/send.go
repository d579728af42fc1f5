package outlook

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/logging"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

type graphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphDraft struct {
	ID            string           `json:"id,omitempty"`
	Subject       string           `json:"subject,omitempty"`
	Body          *graphItemBody   `json:"body,omitempty"`
	ToRecipients  []graphRecipient `json:"toRecipients,omitempty"`
	CcRecipients  []graphRecipient `json:"ccRecipients,omitempty"`
	BccRecipients []graphRecipient `json:"bccRecipients,omitempty"`
}

func recipientsOf(emails []string) []graphRecipient {
	if len(emails) == 0 {
		return nil
	}
	out := make([]graphRecipient, 0, len(emails))
	for _, e := range emails {
		out = append(out, graphRecipient{EmailAddress: graphEmailAddress{Address: e}})
	}
	return out
}

func bodyOf(content string, html bool) *graphItemBody {
	contentType := "text"
	if html {
		contentType = "html"
	}
	return &graphItemBody{ContentType: contentType, Content: content}
}

func draftOf(req mailbox.SendRequest) graphDraft {
	return graphDraft{
		Subject:       req.Subject,
		Body:          bodyOf(req.Body, req.HTML),
		ToRecipients:  recipientsOf(req.To),
		CcRecipients:  recipientsOf(req.Cc),
		BccRecipients: recipientsOf(req.Bcc),
	}
}

// CreateDraft implements mailbox.Provider.
func (a *Adapter) CreateDraft(ctx context.Context, tok *mailbox.Token, req mailbox.SendRequest) (string, error) {
	var created graphDraft
	if err := a.do(ctx, tok, "createDraft", http.MethodPost, a.url("/me/messages", nil), draftOf(req), &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// SendEmail implements mailbox.Provider. The message is created as a draft
// and then submitted, so the caller gets a durable message ID; the
// one-shot send endpoint returns nothing.
func (a *Adapter) SendEmail(ctx context.Context, tok *mailbox.Token, req mailbox.SendRequest) (string, error) {
	var created graphDraft
	if err := a.do(ctx, tok, "sendEmail", http.MethodPost, a.url("/me/messages", nil), draftOf(req), &created); err != nil {
		return "", err
	}
	if err := a.do(ctx, tok, "sendEmail", http.MethodPost, a.url("/me/messages/"+created.ID+"/send", nil), nil, nil); err != nil {
		return "", err
	}

	a.logger.Info("email sent",
		logging.Operation("sendEmail"),
		logging.Account(logging.AnonymizeEmail(tok.Email)),
		slog.String("message", created.ID))
	return created.ID, nil
}

// Reply implements mailbox.Provider. The provider-side createReply call
// pre-populates the recipient list and threading metadata from the newest
// message of the conversation, so replies land in the same conversation
// without assembling headers by hand.
func (a *Adapter) Reply(ctx context.Context, tok *mailbox.Token, req mailbox.ReplyRequest) (string, error) {
	msgs, err := a.threadMessages(ctx, tok, "reply", req.ThreadID)
	if err != nil {
		return "", err
	}
	newest := msgs[0]

	var draft graphDraft
	if err := a.do(ctx, tok, "reply", http.MethodPost, a.url("/me/messages/"+newest.ID+"/createReply", nil), nil, &draft); err != nil {
		return "", err
	}

	patch := graphDraft{Body: bodyOf(req.Body, req.HTML)}
	if len(req.Cc) > 0 {
		patch.CcRecipients = recipientsOf(req.Cc)
	}
	if len(req.Bcc) > 0 {
		patch.BccRecipients = recipientsOf(req.Bcc)
	}
	if err := a.do(ctx, tok, "reply", http.MethodPatch, a.url("/me/messages/"+draft.ID, nil), patch, nil); err != nil {
		return "", err
	}
	if err := a.do(ctx, tok, "reply", http.MethodPost, a.url("/me/messages/"+draft.ID+"/send", nil), nil, nil); err != nil {
		return "", err
	}

	a.logger.Info("reply sent",
		logging.Operation("reply"),
		logging.Thread(req.ThreadID),
		slog.String("message", draft.ID))
	return draft.ID, nil
}
