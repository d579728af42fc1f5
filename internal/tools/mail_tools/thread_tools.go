package mail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/tools/common"
)

const defaultListLimit = 20

// registerThreadTools registers the read-only mailbox tools.
func registerThreadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listInboxTool := mcp.NewTool("mail_list_inbox",
		mcp.WithDescription("List threads currently in the inbox, newest first"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of threads to return (default: 20)"),
		),
	)
	s.AddTool(listInboxTool, common.InstrumentedToolHandlerWithProvider("mail_list_inbox", "", "list_inbox", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListInbox(ctx, request, sc)
		}))

	searchTool := mcp.NewTool("mail_search",
		mcp.WithDescription("Search mail threads. By default only the inbox is searched; set includeDone to search everything."),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query in the account provider's syntax"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of threads to return (default: 20)"),
		),
		mcp.WithBoolean("includeDone",
			mcp.Description("Include threads outside the inbox (default: false)"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandlerWithProvider("mail_search", "", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearch(ctx, request, sc)
		}))

	readThreadTool := mcp.NewTool("mail_read_thread",
		mcp.WithDescription("Read a thread with all of its messages, newest first"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to read"),
		),
	)
	s.AddTool(readThreadTool, common.InstrumentedToolHandlerWithProvider("mail_read_thread", "", "read_thread", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadThread(ctx, request, sc)
		}))

	listStarredTool := mcp.NewTool("mail_list_starred",
		mcp.WithDescription("List starred (flagged) threads"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of threads to return (default: 20)"),
		),
	)
	s.AddTool(listStarredTool, common.InstrumentedToolHandlerWithProvider("mail_list_starred", "", "list_starred", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListStarred(ctx, request, sc)
		}))

	listLabelsTool := mcp.NewTool("mail_list_labels",
		mcp.WithDescription("List the labels (or mail folders) available on the account"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
	)
	s.AddTool(listLabelsTool, common.InstrumentedToolHandlerWithProvider("mail_list_labels", "", "list_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	threadLabelsTool := mcp.NewTool("mail_thread_labels",
		mcp.WithDescription("List the labels (or folders) attached to a thread"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread"),
		),
	)
	s.AddTool(threadLabelsTool, common.InstrumentedToolHandlerWithProvider("mail_thread_labels", "", "thread_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleThreadLabels(ctx, request, sc)
		}))
}

func handleListInbox(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	threads, err := conn.Mailbox().ListInbox(ctx, tok, intArg(args, "limit", defaultListLimit))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list inbox: %v", err)), nil
	}
	return jsonResult(threads), nil
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	includeDone, _ := args["includeDone"].(bool)

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	threads, err := conn.Mailbox().Search(ctx, tok, mailbox.SearchOptions{
		Query:       query,
		Limit:       intArg(args, "limit", defaultListLimit),
		IncludeDone: includeDone,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search: %v", err)), nil
	}
	return jsonResult(threads), nil
}

func handleReadThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	detail, err := conn.Mailbox().ReadThread(ctx, tok, threadID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read thread: %v", err)), nil
	}
	return jsonResult(detail), nil
}

func handleListStarred(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	threads, err := conn.Mailbox().ListStarred(ctx, tok, intArg(args, "limit", defaultListLimit))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list starred threads: %v", err)), nil
	}
	return jsonResult(threads), nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	labels, err := conn.Mailbox().ListLabels(ctx, tok)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}
	return jsonResult(labels), nil
}

func handleThreadLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	labelIDs, err := conn.Mailbox().GetThreadLabels(ctx, tok, threadID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get thread labels: %v", err)), nil
	}
	return jsonResult(labelIDs), nil
}
