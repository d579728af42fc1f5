package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/logging"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// expirySkew refreshes tokens slightly before their reported expiry so an
// operation spanning several HTTP calls does not straddle the boundary.
const expirySkew = 2 * time.Minute

// entry is one account's cached credential material. The refresh token
// never leaves this package.
type entry struct {
	Email        string               `json:"email"`
	Provider     mailbox.ProviderKind `json:"provider"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken,omitempty"`
	Expiry       time.Time            `json:"expiry"`
	Current      bool                 `json:"current"`
}

// cacheFile is the on-disk shape of the credential cache.
type cacheFile struct {
	Accounts []entry `json:"accounts"`
}

// Store is the process-wide credential store with an explicit load/save
// lifecycle. Writes are serialized by the mutex and performed atomically.
type Store struct {
	path    string
	clients Clients
	logger  *slog.Logger

	mu      sync.Mutex
	entries []entry

	// refreshFn exchanges an entry's refresh token for a fresh token.
	// Overridable in tests.
	refreshFn func(ctx context.Context, e entry) (*oauth2.Token, error)
	now       func() time.Time
}

// NewStore creates a store backed by the cache file at path. Call Load
// before use.
func NewStore(path string, clients Clients, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:    path,
		clients: clients,
		logger:  logger,
		now:     time.Now,
	}
	s.refreshFn = s.refreshWithOAuth
	return s
}

// Load rehydrates the store from disk. A missing cache file is not an
// error; the store starts empty.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.entries = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credential cache: %w", err)
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse credential cache %s: %w", s.path, err)
	}
	s.entries = f.Accounts
	return nil
}

// Save writes the cache atomically: marshal to a temp file in the same
// directory, then rename over the old file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(cacheFile{Accounts: s.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".accounts-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write credential cache: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set cache permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace credential cache: %w", err)
	}
	return nil
}

// GetToken returns a live token for the hinted account, refreshing first
// when the cached token is expired. The hint may be an account email or
// empty for the current account. It fails with NoCredentials when no
// account has usable cached material and with AuthFailure when the
// provider rejects the refresh.
func (s *Store) GetToken(ctx context.Context, hint string) (*mailbox.Token, error) {
	s.mu.Lock()
	idx := s.findLocked(hint)
	if idx < 0 {
		s.mu.Unlock()
		return nil, mailbox.NewError(mailbox.KindNoCredentials, "", "getToken",
			fmt.Errorf("no cached credentials for account %q", hint))
	}
	e := s.entries[idx]
	s.mu.Unlock()

	if e.AccessToken != "" && e.Expiry.After(s.now().Add(expirySkew)) {
		return tokenOf(e), nil
	}

	if e.RefreshToken == "" {
		return nil, mailbox.NewError(mailbox.KindNoCredentials, e.Provider, "getToken",
			fmt.Errorf("cached token for %s expired and no refresh material", e.Email))
	}

	// One silent retry before surfacing AuthFailure.
	fresh, err := s.refreshFn(ctx, e)
	if err != nil {
		s.logger.Debug("token refresh failed, retrying once",
			logging.Provider(string(e.Provider)),
			logging.Account(logging.AnonymizeEmail(e.Email)),
			logging.Err(err))
		fresh, err = s.refreshFn(ctx, e)
	}
	if err != nil {
		return nil, mailbox.NewError(mailbox.KindAuthFailure, e.Provider, "getToken",
			fmt.Errorf("refresh rejected for %s: %w", e.Email, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-locate by email: the slice may have shifted while unlocked.
	idx = s.findLocked(e.Email)
	if idx >= 0 {
		s.entries[idx].AccessToken = fresh.AccessToken
		s.entries[idx].Expiry = fresh.Expiry
		if fresh.RefreshToken != "" {
			s.entries[idx].RefreshToken = fresh.RefreshToken
		}
		e = s.entries[idx]
		if err := s.saveLocked(); err != nil {
			// The token is valid either way; losing the rewrite only
			// costs a refresh on the next run.
			s.logger.Warn("failed to persist refreshed token",
				logging.Account(logging.AnonymizeEmail(e.Email)),
				logging.Err(err))
		}
	}
	return tokenOf(e), nil
}

// findLocked resolves a hint to an entry index: exact email match first,
// then the current account, then a sole linked account.
func (s *Store) findLocked(hint string) int {
	if hint != "" {
		for i, e := range s.entries {
			if e.Email == hint {
				return i
			}
		}
		return -1
	}
	for i, e := range s.entries {
		if e.Current {
			return i
		}
	}
	if len(s.entries) == 1 {
		return 0
	}
	return -1
}

func tokenOf(e entry) *mailbox.Token {
	return &mailbox.Token{
		AccessToken: e.AccessToken,
		Provider:    e.Provider,
		Email:       e.Email,
		Expiry:      e.Expiry,
	}
}

// ListAccounts returns the linked accounts without credential material.
func (s *Store) ListAccounts() []mailbox.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]mailbox.Account, 0, len(s.entries))
	for _, e := range s.entries {
		accounts = append(accounts, mailbox.Account{
			Email:    e.Email,
			Provider: e.Provider,
			Current:  e.Current,
		})
	}
	return accounts
}

// SetCurrent marks the given account as current for ambient operations.
func (s *Store) SetCurrent(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.entries {
		if s.entries[i].Email == email {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no linked account %q", email)
	}
	for i := range s.entries {
		s.entries[i].Current = s.entries[i].Email == email
	}
	return s.saveLocked()
}

// RemoveAccount drops one account's cache entry. Other accounts are
// untouched.
func (s *Store) RemoveAccount(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	removed := false
	wasCurrent := false
	for _, e := range s.entries {
		if e.Email == email {
			removed = true
			wasCurrent = e.Current
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return fmt.Errorf("no linked account %q", email)
	}
	s.entries = kept
	if wasCurrent && len(s.entries) > 0 {
		s.entries[0].Current = true
	}
	return s.saveLocked()
}

// putEntry inserts or replaces an account entry. The first linked account
// becomes current.
func (s *Store) putEntry(e entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Email == e.Email {
			e.Current = s.entries[i].Current
			s.entries[i] = e
			return s.saveLocked()
		}
	}
	if len(s.entries) == 0 {
		e.Current = true
	}
	s.entries = append(s.entries, e)
	return s.saveLocked()
}
