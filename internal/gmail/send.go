package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/logging"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// SendEmail implements mailbox.Provider. The message is assembled as
// RFC 2822 text and base64url-encoded into the raw field; Gmail derives
// the From address from the authenticated account.
func (a *Adapter) SendEmail(ctx context.Context, tok *mailbox.Token, req mailbox.SendRequest) (string, error) {
	users, err := a.users(ctx, tok)
	if err != nil {
		return "", err
	}

	raw := buildRFC2822(tok.Email, req, threadHeaders{})
	sent, err := users.Messages.Send("me", &gmail.Message{Raw: encodeRaw(raw)}).Context(ctx).Do()
	if err != nil {
		return "", wrapErr("sendEmail", err)
	}

	a.logger.Info("email sent",
		logging.Operation("sendEmail"),
		logging.Account(logging.AnonymizeEmail(tok.Email)),
		slog.String("message", sent.Id))
	return sent.Id, nil
}

// CreateDraft implements mailbox.Provider.
func (a *Adapter) CreateDraft(ctx context.Context, tok *mailbox.Token, req mailbox.SendRequest) (string, error) {
	users, err := a.users(ctx, tok)
	if err != nil {
		return "", err
	}

	raw := buildRFC2822(tok.Email, req, threadHeaders{})
	draft, err := users.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: encodeRaw(raw)},
	}).Context(ctx).Do()
	if err != nil {
		return "", wrapErr("createDraft", err)
	}
	return draft.Id, nil
}

// Reply implements mailbox.Provider. The reply is addressed to the newest
// message's sender and carries its In-Reply-To/References chain plus the
// thread ID so Gmail files it into the same conversation.
func (a *Adapter) Reply(ctx context.Context, tok *mailbox.Token, req mailbox.ReplyRequest) (string, error) {
	users, err := a.users(ctx, tok)
	if err != nil {
		return "", err
	}

	t, err := users.Threads.Get("me", req.ThreadID).
		Format("metadata").
		MetadataHeaders("Subject", "From", "Reply-To", "Message-ID", "References").
		Context(ctx).Do()
	if err != nil {
		return "", wrapErr("reply", err)
	}
	if len(t.Messages) == 0 {
		return "", mailbox.NewProviderError(mailbox.ProviderGmail, "reply", 404, "thread has no messages")
	}

	newest := t.Messages[len(t.Messages)-1]
	to := headerValue(newest, "Reply-To")
	if to == "" {
		to = headerValue(newest, "From")
	}
	subject := headerValue(newest, "Subject")
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	msgID := headerValue(newest, "Message-ID")
	refs := headerValue(newest, "References")
	if msgID != "" {
		refs = strings.TrimSpace(refs + " " + msgID)
	}

	raw := buildRFC2822(tok.Email, mailbox.SendRequest{
		To:      []string{to},
		Cc:      req.Cc,
		Bcc:     req.Bcc,
		Subject: subject,
		Body:    req.Body,
		HTML:    req.HTML,
	}, threadHeaders{inReplyTo: msgID, references: refs})

	sent, err := users.Messages.Send("me", &gmail.Message{
		Raw:      encodeRaw(raw),
		ThreadId: req.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return "", wrapErr("reply", err)
	}

	a.logger.Info("reply sent",
		logging.Operation("reply"),
		logging.Thread(req.ThreadID),
		slog.String("message", sent.Id))
	return sent.Id, nil
}

// threadHeaders carries the conversation-threading headers for a reply.
type threadHeaders struct {
	inReplyTo  string
	references string
}

// buildRFC2822 assembles raw message text. Header values that may carry
// non-ASCII text are RFC 2047 encoded.
func buildRFC2822(from string, req mailbox.SendRequest, th threadHeaders) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(req.To, ", "))
	if len(req.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(req.Cc, ", "))
	}
	if len(req.Bcc) > 0 {
		fmt.Fprintf(&b, "Bcc: %s\r\n", strings.Join(req.Bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", req.Subject))
	if th.inReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", th.inReplyTo)
	}
	if th.references != "" {
		fmt.Fprintf(&b, "References: %s\r\n", th.references)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	if req.HTML {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(req.Body)

	return b.String()
}

func encodeRaw(msg string) string {
	return base64.URLEncoding.EncodeToString([]byte(msg))
}
