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

// registerSendTools registers the message composition tools.
func registerSendTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	sendTool := mcp.NewTool("mail_send",
		mcp.WithDescription("Send an email from the linked account"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address (string) or array of addresses"),
		),
		mcp.WithString("cc",
			mcp.Description("CC address (string) or array of addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC address (string) or array of addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Treat the body as HTML instead of plain text (default: false)"),
		),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandlerWithProvider("mail_send", "", "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCompose(ctx, request, sc, false)
		}))

	draftTool := mcp.NewTool("mail_create_draft",
		mcp.WithDescription("Create a draft email without sending it"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address (string) or array of addresses"),
		),
		mcp.WithString("cc",
			mcp.Description("CC address (string) or array of addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC address (string) or array of addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Treat the body as HTML instead of plain text (default: false)"),
		),
	)
	s.AddTool(draftTool, common.InstrumentedToolHandlerWithProvider("mail_create_draft", "", "create_draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCompose(ctx, request, sc, true)
		}))

	replyTool := mcp.NewTool("mail_reply",
		mcp.WithDescription("Reply to an existing thread. The reply goes to the participants of the last message and stays in the same conversation."),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to reply to"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Reply body content"),
		),
		mcp.WithString("cc",
			mcp.Description("Additional CC address (string) or array of addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("Additional BCC address (string) or array of addresses"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Treat the body as HTML instead of plain text (default: false)"),
		),
	)
	s.AddTool(replyTool, common.InstrumentedToolHandlerWithProvider("mail_reply", "", "reply", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleReply(ctx, request, sc)
	}))
}

func handleCompose(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, draft bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, errResult := buildSendRequest(args)
	if errResult != nil {
		return errResult, nil
	}

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if draft {
		id, err := conn.Mailbox().CreateDraft(ctx, tok, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Draft created with ID %s", id)), nil
	}

	id, err := conn.Mailbox().SendEmail(ctx, tok, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email sent with ID %s", id)), nil
}

func handleReply(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}
	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}

	req := mailbox.ReplyRequest{
		ThreadID: threadID,
		Body:     body,
		HTML:     boolArg(args, "html"),
	}
	var err error
	if req.Cc, err = optionalAddressList(args, "cc"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.Bcc, err = optionalAddressList(args, "bcc"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	conn, tok, errResult := connect(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	id, err := conn.Mailbox().Reply(ctx, tok, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to reply: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reply sent with ID %s", id)), nil
}

// buildSendRequest assembles a SendRequest from tool arguments, returning an
// error result when required fields are missing or malformed.
func buildSendRequest(args map[string]interface{}) (mailbox.SendRequest, *mcp.CallToolResult) {
	var req mailbox.SendRequest

	to, err := batch.ParseStringOrArray(args["to"], "to")
	if err != nil {
		return req, mcp.NewToolResultError(err.Error())
	}
	req.To = to

	subject, ok := args["subject"].(string)
	if !ok || subject == "" {
		return req, mcp.NewToolResultError("subject is required")
	}
	req.Subject = subject

	body, ok := args["body"].(string)
	if !ok || body == "" {
		return req, mcp.NewToolResultError("body is required")
	}
	req.Body = body
	req.HTML = boolArg(args, "html")

	if req.Cc, err = optionalAddressList(args, "cc"); err != nil {
		return req, mcp.NewToolResultError(err.Error())
	}
	if req.Bcc, err = optionalAddressList(args, "bcc"); err != nil {
		return req, mcp.NewToolResultError(err.Error())
	}
	return req, nil
}

// optionalAddressList parses an optional string-or-array address argument.
func optionalAddressList(args map[string]interface{}, name string) ([]string, error) {
	if _, present := args[name]; !present {
		return nil, nil
	}
	return batch.ParseStringOrArray(args[name], name)
}

func boolArg(args map[string]interface{}, name string) bool {
	v, _ := args[name].(bool)
	return v
}
