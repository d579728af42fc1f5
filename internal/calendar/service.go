package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/option"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// DefaultGraphBaseURL is the production Graph endpoint.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

const requestTimeout = 30 * time.Second

const defaultListLimit = 25

// Service dispatches calendar calls by the token's provider.
type Service struct {
	logger       *slog.Logger
	graphBaseURL string
	httpClient   *http.Client
	googleOpts   []option.ClientOption
}

// Option configures a Service.
type Option func(*Service)

// WithGraphBaseURL overrides the Graph endpoint.
func WithGraphBaseURL(u string) Option {
	return func(s *Service) { s.graphBaseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client used for Graph calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.httpClient = c }
}

// WithGoogleClientOptions appends Google API client options.
func WithGoogleClientOptions(opts ...option.ClientOption) Option {
	return func(s *Service) { s.googleOpts = append(s.googleOpts, opts...) }
}

// New creates a calendar service.
func New(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		logger:       logger,
		graphBaseURL: DefaultGraphBaseURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func unknownProvider(op string, tok *mailbox.Token) error {
	return mailbox.NewError(mailbox.KindProviderError, tok.Provider, op,
		fmt.Errorf("no calendar backend for provider %q", tok.Provider))
}

// ListEvents lists events on the account's primary calendar within
// [from, to).
func (s *Service) ListEvents(ctx context.Context, tok *mailbox.Token, from, to time.Time, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	switch tok.Provider {
	case mailbox.ProviderGmail:
		return s.googleListEvents(ctx, tok, from, to, limit)
	case mailbox.ProviderOutlook:
		return s.graphListEvents(ctx, tok, from, to, limit)
	default:
		return nil, unknownProvider("listEvents", tok)
	}
}

// CreateEvent creates an event on the account's primary calendar.
func (s *Service) CreateEvent(ctx context.Context, tok *mailbox.Token, input EventInput) (*Event, error) {
	switch tok.Provider {
	case mailbox.ProviderGmail:
		return s.googleCreateEvent(ctx, tok, input)
	case mailbox.ProviderOutlook:
		return s.graphCreateEvent(ctx, tok, input)
	default:
		return nil, unknownProvider("createEvent", tok)
	}
}

// DeleteEvent removes an event from the account's primary calendar.
func (s *Service) DeleteEvent(ctx context.Context, tok *mailbox.Token, eventID string) error {
	switch tok.Provider {
	case mailbox.ProviderGmail:
		return s.googleDeleteEvent(ctx, tok, eventID)
	case mailbox.ProviderOutlook:
		return s.graphDeleteEvent(ctx, tok, eventID)
	default:
		return unknownProvider("deleteEvent", tok)
	}
}
