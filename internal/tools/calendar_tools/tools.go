package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/calendar"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/tools/common"
)

const defaultEventLimit = 25

// RegisterCalendarTools registers the calendar tools with the MCP server.
// Event creation and deletion are skipped in read-only mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List calendar events in a time range for the account's attached calendar"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("from",
			mcp.Description("Range start in RFC 3339 format (default: now)"),
		),
		mcp.WithString("to",
			mcp.Description("Range end in RFC 3339 format (default: seven days after from)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of events to return (default: %d)", defaultEventLimit)),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandlerWithProvider("calendar_list_events", "gmail", "list_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event on the account's attached calendar"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Event start in RFC 3339 format"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Event end in RFC 3339 format"),
		),
		mcp.WithString("description",
			mcp.Description("Event body text"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone for the event times, e.g. Europe/Berlin"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Create an all-day event (default: false)"),
		),
		mcp.WithString("attendees",
			mcp.Description("Attendee email (string) or array of emails"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithProvider("calendar_create_event", "gmail", "create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("account",
			mcp.Description("Account email (default: the current account)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to delete"),
		),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithProvider("calendar_delete_event", "gmail", "delete_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	from := time.Now()
	if raw, ok := args["from"].(string); ok && raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid from time %q: must be RFC 3339", raw)), nil
		}
		from = parsed
	}
	to := from.Add(7 * 24 * time.Hour)
	if raw, ok := args["to"].(string); ok && raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid to time %q: must be RFC 3339", raw)), nil
		}
		to = parsed
	}
	if !to.After(from) {
		return mcp.NewToolResultError("to must be after from"), nil
	}
	limit := defaultEventLimit
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	tok, errResult := token(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	events, err := sc.Calendar().ListEvents(ctx, tok, from, to, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}
	return jsonResult(events), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	input, errResult := buildEventInput(args)
	if errResult != nil {
		return errResult, nil
	}

	tok, errResult := token(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	event, err := sc.Calendar().CreateEvent(ctx, tok, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}
	return jsonResult(event), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	tok, errResult := token(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if err := sc.Calendar().DeleteEvent(ctx, tok, eventID); err != nil {
		if mailbox.IsKind(err, mailbox.KindNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Event %s not found", eventID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted", eventID)), nil
}

// buildEventInput assembles an EventInput from tool arguments.
func buildEventInput(args map[string]interface{}) (calendar.EventInput, *mcp.CallToolResult) {
	var input calendar.EventInput

	subject, ok := args["subject"].(string)
	if !ok || subject == "" {
		return input, mcp.NewToolResultError("subject is required")
	}
	input.Subject = subject

	startRaw, ok := args["start"].(string)
	if !ok || startRaw == "" {
		return input, mcp.NewToolResultError("start is required")
	}
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return input, mcp.NewToolResultError(fmt.Sprintf("Invalid start time %q: must be RFC 3339", startRaw))
	}
	input.Start = start

	endRaw, ok := args["end"].(string)
	if !ok || endRaw == "" {
		return input, mcp.NewToolResultError("end is required")
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return input, mcp.NewToolResultError(fmt.Sprintf("Invalid end time %q: must be RFC 3339", endRaw))
	}
	input.End = end

	if !input.End.After(input.Start) {
		return input, mcp.NewToolResultError("end must be after start")
	}

	input.Description, _ = args["description"].(string)
	input.Location, _ = args["location"].(string)
	input.TimeZone, _ = args["timeZone"].(string)
	input.AllDay, _ = args["allDay"].(bool)

	switch v := args["attendees"].(type) {
	case string:
		if v != "" {
			input.Attendees = []string{v}
		}
	case []interface{}:
		for _, item := range v {
			addr, ok := item.(string)
			if !ok {
				return input, mcp.NewToolResultError("attendees must be strings")
			}
			input.Attendees = append(input.Attendees, addr)
		}
	}

	return input, nil
}

// token resolves the account hint into a live token. Calendar calls go
// straight through the credential store; no mailbox connection is needed.
func token(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (*mailbox.Token, *mcp.CallToolResult) {
	account := common.GetAccountFromArgs(args)

	tok, err := sc.Store().GetToken(ctx, account)
	if err != nil {
		if mailbox.IsKind(err, mailbox.KindNoCredentials) {
			return nil, mcp.NewToolResultError(fmt.Sprintf(
				"No credentials for account %q. Link the account first with `superhuman-cli login`.", account))
		}
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to obtain token for account %q: %v", account, err))
	}
	return tok, nil
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
