package mail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/tools/batch"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/tools/common"
)

// batchFunc is one batch mailbox operation over a set of thread IDs.
type batchFunc func(ctx context.Context, conn mailbox.ConnectionProvider, threadIDs []string) (mailbox.BatchResult, error)

// registerActionTools registers the state-changing mailbox tools.
func registerActionTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	addBatchTool(s, sc, "mail_archive_threads", "archive",
		"Archive one or more threads, removing them from the inbox",
		mailbox.ArchiveThreads)
	addBatchTool(s, sc, "mail_delete_threads", "delete",
		"Move one or more threads to the trash",
		mailbox.DeleteThreads)
	addBatchTool(s, sc, "mail_mark_read", "mark_read",
		"Mark one or more threads as read",
		mailbox.MarkThreadsRead)
	addBatchTool(s, sc, "mail_mark_unread", "mark_unread",
		"Mark one or more threads as unread",
		mailbox.MarkThreadsUnread)

	starTool := mcp.NewTool("mail_star_thread",
		mcp.WithDescription("Star (flag) a thread"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to star"),
		),
	)
	s.AddTool(starTool, common.InstrumentedToolHandlerWithProvider("mail_star_thread", "", "star", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleStarUnstar(ctx, request, sc, true)
		}))

	unstarTool := mcp.NewTool("mail_unstar_thread",
		mcp.WithDescription("Remove the star (flag) from a thread"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to unstar"),
		),
	)
	s.AddTool(unstarTool, common.InstrumentedToolHandlerWithProvider("mail_unstar_thread", "", "unstar", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleStarUnstar(ctx, request, sc, false)
		}))

	addLabelTool := mcp.NewTool("mail_add_label",
		mcp.WithDescription("Apply a label to one or more threads. For folder-based accounts this moves the threads into the folder."),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadIds",
			mcp.Required(),
			mcp.Description("Thread ID (string) or array of thread IDs"),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label or folder to apply"),
		),
	)
	s.AddTool(addLabelTool, common.InstrumentedToolHandlerWithProvider("mail_add_label", "", "add_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLabelBatch(ctx, request, sc, mailbox.AddLabelToThreads)
		}))

	removeLabelTool := mcp.NewTool("mail_remove_label",
		mcp.WithDescription("Remove a label from one or more threads. For folder-based accounts this moves the affected messages back to the inbox."),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadIds",
			mcp.Required(),
			mcp.Description("Thread ID (string) or array of thread IDs"),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label or folder to remove"),
		),
	)
	s.AddTool(removeLabelTool, common.InstrumentedToolHandlerWithProvider("mail_remove_label", "", "remove_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLabelBatch(ctx, request, sc, mailbox.RemoveLabelFromThreads)
		}))
}

// addBatchTool registers one thread-ID batch tool. Every batch tool shares
// the same argument shape and the same per-item result rendering.
func addBatchTool(s *mcpserver.MCPServer, sc *server.ServerContext, name, operation, description string, fn batchFunc) {
	tool := mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadIds",
			mcp.Required(),
			mcp.Description("Thread ID (string) or array of thread IDs"),
		),
	)
	s.AddTool(tool, common.InstrumentedToolHandlerWithProvider(name, "", operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			threadIDs, err := batch.ParseStringOrArray(args["threadIds"], "threadIds")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			conn, _, errResult := connect(ctx, sc, args)
			if errResult != nil {
				return errResult, nil
			}

			res, err := fn(ctx, conn, threadIDs)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Batch operation failed: %v", err)), nil
			}
			return mcp.NewToolResultText(batch.FormatResult(res)), nil
		}))
}

func handleStarUnstar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, star bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	var err error
	if star {
		err = conn.Mailbox().Star(ctx, tok, threadID)
	} else {
		err = conn.Mailbox().Unstar(ctx, tok, threadID)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update star state: %v", err)), nil
	}

	if star {
		return mcp.NewToolResultText(fmt.Sprintf("Thread %s starred", threadID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Thread %s unstarred", threadID)), nil
}

func handleLabelBatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext,
	fn func(ctx context.Context, conn mailbox.ConnectionProvider, threadIDs []string, labelID string) (mailbox.BatchResult, error),
) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	labelID, ok := args["labelId"].(string)
	if !ok || labelID == "" {
		return mcp.NewToolResultError("labelId is required"), nil
	}
	threadIDs, err := batch.ParseStringOrArray(args["threadIds"], "threadIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	conn, _, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	res, err := fn(ctx, conn, threadIDs, labelID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Batch operation failed: %v", err)), nil
	}
	return mcp.NewToolResultText(batch.FormatResult(res)), nil
}
