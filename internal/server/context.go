package server

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/auth"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/calendar"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/config"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/gmail"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/instrumentation"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/outlook"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/reminders"
)

// ServerContext wires the credential store, the provider adapters and the
// supporting services together and hands out per-account connections. Tool
// handlers and CLI commands go through it instead of touching adapters
// directly.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	store    *auth.Store
	adapters mailbox.Registry
	bridge   mailbox.AppBridge
	snooze   *reminders.Service
	calendar *calendar.Service

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu          sync.RWMutex
	connections map[string]mailbox.ConnectionProvider
	shutdown    bool
}

// NewServerContext builds the full service graph from the loaded
// configuration. The credential cache is read eagerly; connections are
// established lazily on first use per account.
func NewServerContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ServerContext, error) {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	store := auth.NewStore(cfg.CachePath(), auth.Clients{
		GoogleClientID:     cfg.OAuth.GoogleClientID,
		GoogleClientSecret: cfg.OAuth.GoogleClientSecret,
		MicrosoftClientID:  cfg.OAuth.MicrosoftClientID,
		MicrosoftTenant:    cfg.OAuth.MicrosoftTenant,
	}, logger)
	if err := store.Load(); err != nil {
		cancel()
		return nil, err
	}

	adapters := mailbox.Registry{
		mailbox.ProviderGmail: gmail.New(logger,
			gmail.WithScanCeiling(cfg.Scan.Ceiling)),
		mailbox.ProviderOutlook: outlook.New(logger,
			outlook.WithBaseURL(cfg.Graph.BaseURL),
			outlook.WithScanCeiling(cfg.Scan.Ceiling)),
	}

	snoozer := reminders.NewClient(
		reminders.WithBaseURL(cfg.Reminders.BaseURL),
		reminders.WithScanCeiling(cfg.Scan.Ceiling))

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		store:       store,
		adapters:    adapters,
		snooze:      reminders.NewService(snoozer, logger),
		calendar:    calendar.New(logger, calendar.WithGraphBaseURL(cfg.Graph.BaseURL)),
		connections: make(map[string]mailbox.ConnectionProvider),
	}, nil
}

// Context returns the server's shutdown-scoped context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the credential store.
func (sc *ServerContext) Store() *auth.Store {
	return sc.store
}

// Snooze returns the snooze state machine.
func (sc *ServerContext) Snooze() *reminders.Service {
	return sc.snooze
}

// Calendar returns the calendar pass-through service.
func (sc *ServerContext) Calendar() *calendar.Service {
	return sc.calendar
}

// ProviderKinds returns the provider kinds with a registered adapter,
// sorted for stable output.
func (sc *ServerContext) ProviderKinds() []string {
	kinds := make([]string, 0, len(sc.adapters))
	for k := range sc.adapters {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// SetBridge installs the live-application fallback used when an account
// has no cached credentials. Cached connections are dropped so the next
// lookup re-selects the path.
func (sc *ServerContext) SetBridge(bridge mailbox.AppBridge) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.bridge = bridge
	sc.connections = make(map[string]mailbox.ConnectionProvider)
}

// Connection returns the connection for the hinted account, establishing
// and caching it on first use. The hint may be an account email or empty
// for the current account.
func (sc *ServerContext) Connection(ctx context.Context, account string) (mailbox.ConnectionProvider, error) {
	sc.mu.RLock()
	conn, ok := sc.connections[account]
	bridge := sc.bridge
	sc.mu.RUnlock()
	if ok {
		return conn, nil
	}

	conn, err := mailbox.Connect(ctx, sc.store, sc.adapters, bridge, account)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	// Another caller may have connected while we were unlocked; prefer the
	// cached one so there is a single connection per account.
	if existing, ok := sc.connections[account]; ok {
		_ = conn.Close()
		return existing, nil
	}
	sc.connections[account] = conn
	return conn, nil
}

// SetMetrics installs the metrics recorder used by instrumented handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger installs the audit logger used by instrumented handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil when not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown closes all connections and cancels the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true

	for account, conn := range sc.connections {
		_ = conn.Close()
		delete(sc.connections, account)
	}
	sc.cancel()
	return nil
}
