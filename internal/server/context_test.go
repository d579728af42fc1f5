package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/config"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		HomeDir:   t.TempDir(),
		Graph:     config.GraphConfig{BaseURL: "https://graph.example.com/v1.0"},
		Reminders: config.RemindersConfig{BaseURL: "https://reminders.example.com/v1"},
		Scan:      config.ScanConfig{Ceiling: 100},
	}
}

func seedAccount(t *testing.T, cfg *config.Config, email string, provider mailbox.ProviderKind) {
	t.Helper()
	expiry := time.Now().Add(time.Hour).Format(time.RFC3339)
	data := fmt.Sprintf(`{"accounts":[{"email":%q,"provider":%q,"accessToken":"live-token","expiry":%q,"current":true}]}`,
		email, provider, expiry)
	require.NoError(t, os.MkdirAll(cfg.HomeDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.HomeDir, "accounts.json"), []byte(data), 0o600))
}

func TestServerContextConnectionCaching(t *testing.T) {
	cfg := testConfig(t)
	seedAccount(t, cfg, "jane@example.com", mailbox.ProviderGmail)

	sc, err := NewServerContext(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = sc.Shutdown() }()

	first, err := sc.Connection(context.Background(), "jane@example.com")
	require.NoError(t, err)
	second, err := sc.Connection(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Same(t, first, second)

	tok, err := first.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mailbox.ProviderGmail, tok.Provider)
	assert.Equal(t, "jane@example.com", tok.Email)
}

func TestServerContextEmptyHintResolvesCurrentAccount(t *testing.T) {
	cfg := testConfig(t)
	seedAccount(t, cfg, "jane@example.com", mailbox.ProviderOutlook)

	sc, err := NewServerContext(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = sc.Shutdown() }()

	conn, err := sc.Connection(context.Background(), "")
	require.NoError(t, err)

	tok, err := conn.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mailbox.ProviderOutlook, tok.Provider)
}

func TestServerContextUnknownAccount(t *testing.T) {
	cfg := testConfig(t)

	sc, err := NewServerContext(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = sc.Shutdown() }()

	_, err = sc.Connection(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, mailbox.IsKind(err, mailbox.KindNoCredentials))
}

func TestServerContextShutdown(t *testing.T) {
	cfg := testConfig(t)
	seedAccount(t, cfg, "jane@example.com", mailbox.ProviderGmail)

	sc, err := NewServerContext(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = sc.Connection(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// Shutdown is idempotent.
	require.NoError(t, sc.Shutdown())
}
