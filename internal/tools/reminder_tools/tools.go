package reminder_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/instrumentation"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/tools/common"
)

const defaultSnoozedLimit = 50

// RegisterReminderTools registers the snooze tools with the MCP server.
// Snooze and unsnooze mutate reminder state and are skipped in read-only
// mode; listing snoozed threads is always available.
func RegisterReminderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("mail_list_snoozed",
		mcp.WithDescription("List threads currently snoozed, with their wake times"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of snoozed threads to return (default: %d)", defaultSnoozedLimit)),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandlerWithProvider("mail_list_snoozed", "", "list_snoozed", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSnoozed(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	snoozeTool := mcp.NewTool("mail_snooze",
		mcp.WithDescription("Snooze a thread until a given time. The thread leaves the inbox and returns when the reminder fires."),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to snooze"),
		),
		mcp.WithString("until",
			mcp.Required(),
			mcp.Description("Wake time in RFC 3339 format, e.g. 2026-09-01T09:00:00Z"),
		),
	)
	s.AddTool(snoozeTool, common.InstrumentedToolHandlerWithProvider("mail_snooze", "", "snooze", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSnooze(ctx, request, sc)
		}))

	unsnoozeTool := mcp.NewTool("mail_unsnooze",
		mcp.WithDescription("Cancel a snooze and return the thread to the inbox immediately"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the snoozed thread"),
		),
		mcp.WithString("reminderId",
			mcp.Description("The reminder ID returned by mail_snooze. When omitted, the reminder is recovered from the thread itself."),
		),
	)
	s.AddTool(unsnoozeTool, common.InstrumentedToolHandlerWithProvider("mail_unsnooze", "", "unsnooze", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUnsnooze(ctx, request, sc)
		}))

	return nil
}

func handleSnooze(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}
	untilRaw, ok := args["until"].(string)
	if !ok || untilRaw == "" {
		return mcp.NewToolResultError("until is required"), nil
	}
	until, err := time.Parse(time.RFC3339, untilRaw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid until time %q: must be RFC 3339, e.g. 2026-09-01T09:00:00Z", untilRaw)), nil
	}
	if !until.After(time.Now()) {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid until time %q: wake time must be in the future", untilRaw)), nil
	}

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	reminderID, err := sc.Snooze().Snooze(ctx, tok, conn.Mailbox(), threadID, until)
	recordReminder(ctx, sc, "snooze", err)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to snooze thread: %v", err)), nil
	}

	return jsonResult(map[string]string{
		"threadId":   threadID,
		"reminderId": reminderID,
		"until":      until.Format(time.RFC3339),
	}), nil
}

func handleUnsnooze(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}
	reminderID, _ := args["reminderId"].(string)

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	err := sc.Snooze().Unsnooze(ctx, tok, conn.Mailbox(), threadID, reminderID)
	recordReminder(ctx, sc, "unsnooze", err)
	if err != nil {
		if mailbox.IsKind(err, mailbox.KindReminderNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("No active reminder found for thread %s", threadID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to unsnooze thread: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Thread %s returned to the inbox", threadID)), nil
}

func handleListSnoozed(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	limit := defaultSnoozedLimit
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	snoozed, err := sc.Snooze().ListSnoozed(ctx, tok, conn.Mailbox(), limit)
	recordReminder(ctx, sc, "list", err)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list snoozed threads: %v", err)), nil
	}
	return jsonResult(snoozed), nil
}

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

// recordReminder feeds the reminder operation counter, if metrics are
// configured.
func recordReminder(ctx context.Context, sc *server.ServerContext, operation string, err error) {
	m := sc.Metrics()
	if m == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	m.RecordReminderOperation(ctx, operation, status)
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
