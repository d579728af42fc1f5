package auth

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "accounts.json"), Clients{}, nil)
	require.NoError(t, s.Load())
	return s
}

func seed(t *testing.T, s *Store, e entry) {
	t.Helper()
	require.NoError(t, s.putEntry(e))
}

func TestGetTokenNoCredentials(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetToken(context.Background(), "")
	assert.True(t, mailbox.IsKind(err, mailbox.KindNoCredentials))

	_, err = s.GetToken(context.Background(), "ghost@example.com")
	assert.True(t, mailbox.IsKind(err, mailbox.KindNoCredentials))
}

func TestGetTokenReturnsValidCachedToken(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{
		Email:       "a@example.com",
		Provider:    mailbox.ProviderGmail,
		AccessToken: "live",
		Expiry:      time.Now().Add(time.Hour),
	})

	tok, err := s.GetToken(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "live", tok.AccessToken)
	assert.Equal(t, mailbox.ProviderGmail, tok.Provider)
	assert.Equal(t, "a@example.com", tok.Email)
}

func TestGetTokenRefreshesExpired(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{
		Email:        "a@example.com",
		Provider:     mailbox.ProviderGmail,
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	})

	refreshes := 0
	s.refreshFn = func(_ context.Context, e entry) (*oauth2.Token, error) {
		refreshes++
		assert.Equal(t, "refresh-1", e.RefreshToken)
		return &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}, nil
	}

	tok, err := s.GetToken(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, 1, refreshes)

	// The rewrite landed on disk: a rehydrated store sees the new token.
	s2 := NewStore(s.path, Clients{}, nil)
	require.NoError(t, s2.Load())
	tok2, err := s2.GetToken(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok2.AccessToken)
}

func TestGetTokenRetriesRefreshOnce(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{
		Email:        "a@example.com",
		Provider:     mailbox.ProviderGmail,
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Minute),
	})

	attempts := 0
	s.refreshFn = func(context.Context, entry) (*oauth2.Token, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient")
		}
		return &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}, nil
	}

	tok, err := s.GetToken(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, 2, attempts)
}

func TestGetTokenAuthFailureAfterRetry(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{
		Email:        "a@example.com",
		Provider:     mailbox.ProviderOutlook,
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Minute),
	})

	attempts := 0
	s.refreshFn = func(context.Context, entry) (*oauth2.Token, error) {
		attempts++
		return nil, errors.New("invalid_grant")
	}

	_, err := s.GetToken(context.Background(), "")
	assert.True(t, mailbox.IsKind(err, mailbox.KindAuthFailure))
	assert.Equal(t, 2, attempts)
}

func TestGetTokenExpiredWithoutRefreshMaterial(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{
		Email:       "a@example.com",
		Provider:    mailbox.ProviderGmail,
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	})

	_, err := s.GetToken(context.Background(), "")
	assert.True(t, mailbox.IsKind(err, mailbox.KindNoCredentials))
}

func TestMultipleAccountsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{
		Email:       "current@example.com",
		Provider:    mailbox.ProviderGmail,
		AccessToken: "g-token",
		Expiry:      time.Now().Add(time.Hour),
	})
	seed(t, s, entry{
		Email:        "other@example.com",
		Provider:     mailbox.ProviderOutlook,
		RefreshToken: "refresh-o",
		Expiry:       time.Now().Add(-time.Hour),
	})

	s.refreshFn = func(_ context.Context, e entry) (*oauth2.Token, error) {
		require.Equal(t, "other@example.com", e.Email, "refreshing one account must not touch the other")
		return &oauth2.Token{AccessToken: "o-token", Expiry: time.Now().Add(time.Hour)}, nil
	}

	// Hinted account refreshes; ambient (current) account is untouched.
	tok, err := s.GetToken(context.Background(), "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, "o-token", tok.AccessToken)

	tok, err = s.GetToken(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "g-token", tok.AccessToken)
}

func TestSaveIsAtomicOnDisk(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{Email: "a@example.com", Provider: mailbox.ProviderGmail})

	// No temp droppings left behind, and the file parses.
	dir := filepath.Dir(s.path)
	matches, err := filepath.Glob(filepath.Join(dir, ".accounts-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	var f cacheFile
	require.NoError(t, json.Unmarshal(data, &f))
	require.Len(t, f.Accounts, 1)

	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.json"), Clients{}, nil)
	require.NoError(t, s.Load())
	assert.Empty(t, s.ListAccounts())
}

func TestLoadRejectsCorruptCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte("{torn"), 0o600))

	s := NewStore(path, Clients{}, nil)
	assert.Error(t, s.Load())
}

func TestCurrentAccountManagement(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, entry{Email: "first@example.com", Provider: mailbox.ProviderGmail})
	seed(t, s, entry{Email: "second@example.com", Provider: mailbox.ProviderOutlook})

	accounts := s.ListAccounts()
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].Current, "first linked account becomes current")
	assert.False(t, accounts[1].Current)

	require.NoError(t, s.SetCurrent("second@example.com"))
	accounts = s.ListAccounts()
	assert.False(t, accounts[0].Current)
	assert.True(t, accounts[1].Current)

	assert.Error(t, s.SetCurrent("ghost@example.com"))

	require.NoError(t, s.RemoveAccount("second@example.com"))
	accounts = s.ListAccounts()
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Current, "current falls back after removal")

	assert.Error(t, s.RemoveAccount("ghost@example.com"))
}
