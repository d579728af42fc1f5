package mailbox

import "context"

// TokenSource issues live tokens for linked accounts. Implemented by the
// credential store. The hint may be an account email or empty for the
// current account.
type TokenSource interface {
	GetToken(ctx context.Context, hint string) (*Token, error)
}

// AppBridge reaches into a running desktop mail client to perform the
// equivalent operations when no cached token exists. The implementation is
// an external collaborator; this layer only requires that the bridge's
// Provider returns the same uniform result shapes as the token-backed
// adapters.
type AppBridge interface {
	// Available reports whether the live application is reachable.
	Available() bool

	// Mailbox returns a Provider backed by application introspection.
	Mailbox() Provider

	// Token returns the token the running application holds, if it
	// exposes one. Callers of the facade's GetToken cannot tell which
	// path produced the token.
	Token(ctx context.Context) (*Token, error)

	// Close releases any introspection resources.
	Close() error
}

// ConnectionProvider is the facade callers hold for one account. The same
// contract is served whether the connection is token-backed or delegated
// to the live application.
type ConnectionProvider interface {
	Mailbox() Provider
	GetToken(ctx context.Context) (*Token, error)
	Close() error
}

// Registry maps provider kinds to their token-backed adapters.
type Registry map[ProviderKind]Provider

// Connect selects the connection path for the hinted account: the
// token-backed adapter for the account's provider kind when the credential
// store has usable material, otherwise the live-application bridge. It
// fails with the store's NoCredentials error when neither path can serve.
func Connect(ctx context.Context, ts TokenSource, adapters Registry, bridge AppBridge, hint string) (ConnectionProvider, error) {
	tok, err := ts.GetToken(ctx, hint)
	if err == nil {
		adapter, ok := adapters[tok.Provider]
		if !ok {
			return nil, NewError(KindProviderError, tok.Provider, "connect", nil)
		}
		return &tokenConnection{provider: adapter, source: ts, hint: hint}, nil
	}

	// Only a missing credential delegates to the live application; a
	// failed refresh must surface to the caller.
	if IsKind(err, KindNoCredentials) && bridge != nil && bridge.Available() {
		return &bridgeConnection{bridge: bridge}, nil
	}
	return nil, err
}

// tokenConnection re-fetches from the token source per operation so each
// logical operation gets a freshly refreshed token while the store keeps
// ownership of the refresh material.
type tokenConnection struct {
	provider Provider
	source   TokenSource
	hint     string
}

func (c *tokenConnection) Mailbox() Provider { return c.provider }

func (c *tokenConnection) GetToken(ctx context.Context) (*Token, error) {
	return c.source.GetToken(ctx, c.hint)
}

func (c *tokenConnection) Close() error { return nil }

type bridgeConnection struct {
	bridge AppBridge
}

func (c *bridgeConnection) Mailbox() Provider { return c.bridge.Mailbox() }

func (c *bridgeConnection) GetToken(ctx context.Context) (*Token, error) {
	return c.bridge.Token(ctx)
}

func (c *bridgeConnection) Close() error { return c.bridge.Close() }
