package mail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/tools/common"
)

// RegisterMailTools registers all mailbox tools with the MCP server. Write
// operations are skipped in read-only mode.
func RegisterMailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerThreadTools(s, sc)

	if !readOnly {
		registerActionTools(s, sc)
		registerSendTools(s, sc)
	}

	return nil
}

// connect resolves the account hint from the request arguments into a
// connection plus a live token. The second return is a ready error result
// when the account cannot be served; handlers return it as-is.
func connect(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (mailbox.ConnectionProvider, *mailbox.Token, *mcp.CallToolResult) {
	account := common.GetAccountFromArgs(args)

	conn, err := sc.Connection(ctx, account)
	if err != nil {
		if mailbox.IsKind(err, mailbox.KindNoCredentials) {
			return nil, nil, mcp.NewToolResultError(fmt.Sprintf(
				"No credentials for account %q. Link the account first with `superhuman-cli login`.", account))
		}
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("Failed to connect account %q: %v", account, err))
	}

	tok, err := conn.GetToken(ctx)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("Failed to obtain token for account %q: %v", account, err))
	}
	common.ResolveProvider(ctx, string(tok.Provider))
	return conn, tok, nil
}

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// intArg reads an optional numeric argument, falling back to def. MCP
// arguments arrive as float64 through JSON.
func intArg(args map[string]interface{}, name string, def int) int {
	if v, ok := args[name].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}
