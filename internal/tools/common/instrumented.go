package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/instrumentation"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and audit logging.
// It records tool invocation metrics and logs the invocation for audit purposes.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return instrumented(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithProvider is like InstrumentedToolHandler but
// also records the mailbox provider and operation type, feeding the
// provider-level operation metrics alongside the tool-level ones. Pass an
// empty provider when the serving provider is only known once the account
// connects; the handler then reports it with ResolveProvider.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithProvider("my_tool", "gmail", "list", sc, handler))
func InstrumentedToolHandlerWithProvider(
	toolName string,
	provider string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return instrumented(toolName, provider, operation, sc, handler)
}

type providerCaptureKey struct{}

type providerCapture struct {
	kind string
}

// ResolveProvider reports which mail provider ended up serving the
// request. Handlers call it once the account's connection is made so the
// wrapping instrumented handler attributes the operation to the right
// provider. A no-op outside an instrumented handler.
func ResolveProvider(ctx context.Context, kind string) {
	if c, ok := ctx.Value(providerCaptureKey{}).(*providerCapture); ok && kind != "" {
		c.kind = kind
	}
}

func instrumented(
	toolName, provider, operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// No instrumentation configured: call straight through.
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)

		if account := GetAccountFromArgs(request.GetArguments()); account != "" {
			invocation.WithAccount(account)
		}

		capture := &providerCapture{kind: provider}
		if operation != "" {
			ctx = context.WithValue(ctx, providerCaptureKey{}, capture)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		if capture.kind != "" {
			invocation.WithProvider(capture.kind, operation)
		}

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
			if capture.kind != "" {
				metrics.RecordProviderOperation(ctx, capture.kind, operation, status, duration)
			}
		}

		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
