package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validToken() *Token {
	return &Token{
		AccessToken: "tok",
		Provider:    ProviderGmail,
		Email:       "user@example.com",
		Expiry:      time.Now().Add(time.Hour),
	}
}

func TestConnectPrefersTokenPath(t *testing.T) {
	adapter := &fakeProvider{kind: ProviderGmail}
	ts := &fakeTokenSource{tok: validToken()}
	bridge := &fakeBridge{available: true, provider: &fakeProvider{kind: ProviderGmail}}

	conn, err := Connect(context.Background(), ts, Registry{ProviderGmail: adapter}, bridge, "")
	require.NoError(t, err)
	defer conn.Close()

	assert.Same(t, Provider(adapter), conn.Mailbox(), "token path wins when credentials exist")
}

func TestConnectFallsBackToBridge(t *testing.T) {
	noCreds := NewError(KindNoCredentials, "", "getToken", nil)
	ts := &fakeTokenSource{err: noCreds}
	bridgeAdapter := &fakeProvider{kind: ProviderGmail}
	bridge := &fakeBridge{available: true, provider: bridgeAdapter}

	conn, err := Connect(context.Background(), ts, Registry{}, bridge, "")
	require.NoError(t, err)

	assert.Same(t, Provider(bridgeAdapter), conn.Mailbox())

	tok, err := conn.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bridge-token", tok.AccessToken)

	require.NoError(t, conn.Close())
	assert.True(t, bridge.closed)
}

func TestConnectAuthFailureSkipsBridge(t *testing.T) {
	refreshErr := NewError(KindAuthFailure, ProviderGmail, "getToken", nil)
	ts := &fakeTokenSource{err: refreshErr}
	bridge := &fakeBridge{available: true, provider: &fakeProvider{kind: ProviderGmail}}

	// A rejected refresh is not "no credentials"; the bridge must not
	// silently serve in its place.
	_, err := Connect(context.Background(), ts, Registry{}, bridge, "")
	assert.True(t, IsKind(err, KindAuthFailure))
}

func TestConnectNoCredentialsNoBridge(t *testing.T) {
	noCreds := NewError(KindNoCredentials, "", "getToken", nil)
	ts := &fakeTokenSource{err: noCreds}

	_, err := Connect(context.Background(), ts, Registry{}, nil, "")
	assert.True(t, IsKind(err, KindNoCredentials))

	// An unreachable bridge does not mask the credential error either.
	_, err = Connect(context.Background(), ts, Registry{}, &fakeBridge{available: false}, "")
	assert.True(t, IsKind(err, KindNoCredentials))
}

func TestConnectUnknownProviderKind(t *testing.T) {
	tok := validToken()
	tok.Provider = ProviderKind("imap")
	ts := &fakeTokenSource{tok: tok}

	_, err := Connect(context.Background(), ts, Registry{ProviderGmail: &fakeProvider{}}, nil, "")
	assert.True(t, IsKind(err, KindProviderError))
}

func TestTokenConnectionRefetchesPerOperation(t *testing.T) {
	ts := &fakeTokenSource{tok: validToken()}
	conn, err := Connect(context.Background(), ts, Registry{ProviderGmail: &fakeProvider{}}, nil, "a@example.com")
	require.NoError(t, err)

	_, err = conn.GetToken(context.Background())
	require.NoError(t, err)
	_, err = conn.GetToken(context.Background())
	require.NoError(t, err)

	// One fetch during Connect plus one per operation.
	assert.Equal(t, 3, ts.gets)
}
