package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// Clients holds the OAuth client credentials for both providers.
type Clients struct {
	GoogleClientID     string
	GoogleClientSecret string
	MicrosoftClientID  string
	MicrosoftTenant    string
}

// oobRedirect is the out-of-band redirect for code-paste authorization.
const oobRedirect = "urn:ietf:wg:oauth:2.0:oob"

var googleScopes = []string{
	"https://mail.google.com/",
	"https://www.googleapis.com/auth/calendar",
}

var microsoftScopes = []string{
	"offline_access",
	"https://graph.microsoft.com/Mail.ReadWrite",
	"https://graph.microsoft.com/Mail.Send",
	"https://graph.microsoft.com/Calendars.ReadWrite",
}

// oauthConfig returns the OAuth2 configuration for one provider kind.
func (s *Store) oauthConfig(kind mailbox.ProviderKind) (*oauth2.Config, error) {
	switch kind {
	case mailbox.ProviderGmail:
		return &oauth2.Config{
			ClientID:     s.clients.GoogleClientID,
			ClientSecret: s.clients.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  oobRedirect,
			Scopes:       googleScopes,
		}, nil
	case mailbox.ProviderOutlook:
		tenant := s.clients.MicrosoftTenant
		if tenant == "" {
			tenant = "common"
		}
		return &oauth2.Config{
			ClientID:    s.clients.MicrosoftClientID,
			Endpoint:    microsoft.AzureADEndpoint(tenant),
			RedirectURL: oobRedirect,
			Scopes:      microsoftScopes,
		}, nil
	}
	return nil, fmt.Errorf("unknown provider kind %q", kind)
}

// refreshWithOAuth exchanges an entry's refresh token for a fresh access
// token at the provider's token endpoint.
func (s *Store) refreshWithOAuth(ctx context.Context, e entry) (*oauth2.Token, error) {
	conf, err := s.oauthConfig(e.Provider)
	if err != nil {
		return nil, err
	}

	// An expiry in the distant past forces the token source to refresh
	// rather than reuse the stale access token.
	ts := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: e.RefreshToken,
		Expiry:       time.Unix(1, 0),
	})
	return ts.Token()
}

// AuthURL returns the provider's authorization URL for linking an account.
func (s *Store) AuthURL(kind mailbox.ProviderKind) (string, error) {
	conf, err := s.oauthConfig(kind)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline), nil
}

// Authorize exchanges an authorization code and links the account. The
// first linked account becomes current.
func (s *Store) Authorize(ctx context.Context, kind mailbox.ProviderKind, email, authCode string) error {
	conf, err := s.oauthConfig(kind)
	if err != nil {
		return err
	}

	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return s.putEntry(entry{
		Email:        email,
		Provider:     kind,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	})
}
