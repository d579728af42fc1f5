package mailbox

import (
	"context"
	"time"
)

// fakeProvider implements Provider with overridable function fields so
// tests can observe calls without a wire server.
type fakeProvider struct {
	kind ProviderKind

	archiveFn func(ctx context.Context, tok *Token, threadID string) error
	readFn    func(ctx context.Context, tok *Token, threadID string) (*ThreadDetail, error)
	searchFn  func(ctx context.Context, tok *Token, opts SearchOptions) ([]Thread, error)

	archived []string
}

func (f *fakeProvider) Kind() ProviderKind {
	if f.kind == "" {
		return ProviderGmail
	}
	return f.kind
}

func (f *fakeProvider) ListInbox(ctx context.Context, tok *Token, limit int) ([]Thread, error) {
	return f.Search(ctx, tok, SearchOptions{Limit: limit})
}

func (f *fakeProvider) Search(ctx context.Context, tok *Token, opts SearchOptions) ([]Thread, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, tok, opts)
	}
	return nil, nil
}

func (f *fakeProvider) ReadThread(ctx context.Context, tok *Token, threadID string) (*ThreadDetail, error) {
	if f.readFn != nil {
		return f.readFn(ctx, tok, threadID)
	}
	return nil, NewProviderError(f.Kind(), "readThread", 404, "not found")
}

func (f *fakeProvider) ArchiveThread(ctx context.Context, tok *Token, threadID string) error {
	if f.archiveFn != nil {
		if err := f.archiveFn(ctx, tok, threadID); err != nil {
			return err
		}
	}
	f.archived = append(f.archived, threadID)
	return nil
}

func (f *fakeProvider) DeleteThread(context.Context, *Token, string) error  { return nil }
func (f *fakeProvider) MarkRead(context.Context, *Token, string) error     { return nil }
func (f *fakeProvider) MarkUnread(context.Context, *Token, string) error   { return nil }
func (f *fakeProvider) ListLabels(context.Context, *Token) ([]Label, error) {
	return nil, nil
}
func (f *fakeProvider) GetThreadLabels(context.Context, *Token, string) ([]string, error) {
	return nil, nil
}
func (f *fakeProvider) AddLabel(context.Context, *Token, string, string) error    { return nil }
func (f *fakeProvider) RemoveLabel(context.Context, *Token, string, string) error { return nil }
func (f *fakeProvider) Star(context.Context, *Token, string) error                { return nil }
func (f *fakeProvider) Unstar(context.Context, *Token, string) error              { return nil }
func (f *fakeProvider) ListStarred(context.Context, *Token, int) ([]Thread, error) {
	return nil, nil
}
func (f *fakeProvider) CreateDraft(context.Context, *Token, SendRequest) (string, error) {
	return "draft-1", nil
}
func (f *fakeProvider) SendEmail(context.Context, *Token, SendRequest) (string, error) {
	return "msg-1", nil
}
func (f *fakeProvider) Reply(context.Context, *Token, ReplyRequest) (string, error) {
	return "msg-2", nil
}

// fakeTokenSource issues a fixed token or an error.
type fakeTokenSource struct {
	tok  *Token
	err  error
	gets int
}

func (s *fakeTokenSource) GetToken(ctx context.Context, hint string) (*Token, error) {
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	return s.tok, nil
}

// fakeBridge is a stand-in live-application collaborator.
type fakeBridge struct {
	available bool
	provider  Provider
	closed    bool
}

func (b *fakeBridge) Available() bool   { return b.available }
func (b *fakeBridge) Mailbox() Provider { return b.provider }
func (b *fakeBridge) Token(ctx context.Context) (*Token, error) {
	return &Token{AccessToken: "bridge-token", Provider: ProviderGmail, Expiry: time.Now().Add(time.Hour)}, nil
}
func (b *fakeBridge) Close() error {
	b.closed = true
	return nil
}
