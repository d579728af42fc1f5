// Package calendar_tools provides MCP tools for the calendar attached to a
// mail account.
//
//   - calendar_list_events: List events in a time range
//   - calendar_create_event: Create an event
//   - calendar_delete_event: Delete an event
//
// The tools dispatch on the account's provider: Gmail accounts talk to the
// Google Calendar API, Outlook accounts to the Microsoft Graph events API.
package calendar_tools
